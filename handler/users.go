package handler

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/od-kfujiwara/tosho-kanri-system/data"
	"github.com/od-kfujiwara/tosho-kanri-system/data/dto"
	"github.com/od-kfujiwara/tosho-kanri-system/service"
)

func (h *Handler) userCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "利用者管理",
	}
	cmd.AddCommand(
		h.userAddCommand(),
		h.userListCommand(),
		h.userSearchCommand(),
		h.userShowCommand(),
		h.userEditCommand(),
		h.userDeleteCommand(),
	)
	return cmd
}

func (h *Handler) userAddCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "利用者を登録する",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			email, _ := cmd.Flags().GetString("email")
			if name == "" || email == "" {
				return errors.New("必要なパラメータが不足しています: --name, --email")
			}
			user, err := h.service.AddUser(name, email)
			if err != nil {
				return err
			}
			fmt.Fprintf(h.stdout, "利用者を登録しました: %s (ID: %s)\n", user.Name, user.UserID)
			return nil
		},
	}
	cmd.Flags().String("name", "", "氏名")
	cmd.Flags().String("email", "", "メールアドレス")
	return cmd
}

func (h *Handler) userListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "利用者一覧を表示する",
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := h.service.ListUsers()
			if err != nil {
				return err
			}
			if len(users) == 0 {
				fmt.Fprintln(h.stdout, "登録されている利用者がありません")
				return nil
			}
			fmt.Fprintln(h.stdout, "=== 利用者一覧 ===")
			for _, user := range users {
				h.displayUser(user)
				fmt.Fprintln(h.stdout)
			}
			return nil
		},
	}
}

func (h *Handler) userSearchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "利用者を検索する",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			if name == "" {
				return errors.New("検索条件を指定してください: --name")
			}
			users, err := h.service.SearchUsersByName(name)
			if err != nil {
				if errors.Is(err, service.ErrRecordNotFound) {
					return fmt.Errorf("氏名に %q を含む利用者が見つかりません", name)
				}
				return err
			}
			fmt.Fprintln(h.stdout, "=== 検索結果 ===")
			for _, user := range users {
				h.displayUser(user)
				fmt.Fprintln(h.stdout)
			}
			return nil
		},
	}
	cmd.Flags().String("name", "", "氏名")
	return cmd
}

func (h *Handler) userShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "利用者の詳細を表示する",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, _ := cmd.Flags().GetString("id")
			if id == "" {
				return errors.New("利用者IDを指定してください: --id")
			}
			user, err := h.getUser(id)
			if err != nil {
				return err
			}
			fmt.Fprintln(h.stdout, "=== 利用者詳細 ===")
			h.displayUser(user)
			return nil
		},
	}
	cmd.Flags().String("id", "", "利用者ID")
	return cmd
}

func (h *Handler) userEditCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "利用者の情報を更新する",
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			id, _ := flags.GetString("id")
			if id == "" {
				return errors.New("利用者IDを指定してください: --id")
			}
			var requestBody dto.UpdateUserRequestBody
			if flags.Changed("name") {
				name, _ := flags.GetString("name")
				requestBody.Name = &name
			}
			if flags.Changed("email") {
				email, _ := flags.GetString("email")
				requestBody.Email = &email
			}
			if requestBody == (dto.UpdateUserRequestBody{}) {
				return errors.New("更新する項目を指定してください: --name, --email")
			}
			user, err := h.service.UpdateUser(id, requestBody)
			if err != nil {
				if errors.Is(err, service.ErrRecordNotFound) {
					return fmt.Errorf("利用者ID %s が見つかりません", id)
				}
				return err
			}
			fmt.Fprintf(h.stdout, "利用者を更新しました: %s (ID: %s)\n", user.Name, user.UserID)
			return nil
		},
	}
	cmd.Flags().String("id", "", "利用者ID")
	cmd.Flags().String("name", "", "氏名")
	cmd.Flags().String("email", "", "メールアドレス")
	return cmd
}

func (h *Handler) userDeleteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "利用者を削除する",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, _ := cmd.Flags().GetString("id")
			if id == "" {
				return errors.New("利用者IDを指定してください: --id")
			}
			user, err := h.getUser(id)
			if err != nil {
				return err
			}
			if err := h.service.DeleteUser(id); err != nil {
				if errors.Is(err, service.ErrDeleteConflict) {
					return errors.New("貸出中の書籍がある利用者は削除できません")
				}
				return err
			}
			fmt.Fprintf(h.stdout, "利用者を削除しました: %s (ID: %s)\n", user.Name, user.UserID)
			return nil
		},
	}
	cmd.Flags().String("id", "", "利用者ID")
	return cmd
}

func (h *Handler) getUser(userID string) (*data.User, error) {
	user, err := h.service.GetUser(userID)
	if errors.Is(err, service.ErrRecordNotFound) {
		return nil, fmt.Errorf("利用者ID %s が見つかりません", userID)
	}
	return user, err
}

func (h *Handler) displayUser(user *data.User) {
	fmt.Fprintf(h.stdout, "利用者ID: %s\n", user.UserID)
	fmt.Fprintf(h.stdout, "氏名: %s\n", user.Name)
	fmt.Fprintf(h.stdout, "メールアドレス: %s\n", user.Email)
	fmt.Fprintf(h.stdout, "登録日: %s\n", user.RegistrationDate)
}
