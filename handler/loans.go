package handler

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/od-kfujiwara/tosho-kanri-system/data"
	"github.com/od-kfujiwara/tosho-kanri-system/service"
)

func (h *Handler) loanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "loan",
		Short: "貸出・返却管理",
	}
	cmd.AddCommand(
		h.loanCheckoutCommand(),
		h.loanReturnCommand(),
		h.loanListCommand(),
		h.loanOverdueCommand(),
		h.loanHistoryCommand(),
		h.loanSummaryCommand(),
	)
	return cmd
}

func (h *Handler) loanCheckoutCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "書籍を貸し出す",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, _ := cmd.Flags().GetString("user-id")
			isbn, _ := cmd.Flags().GetString("isbn")
			if userID == "" || isbn == "" {
				return errors.New("必要なパラメータが不足しています: --user-id, --isbn")
			}
			user, err := h.getUser(userID)
			if err != nil {
				return err
			}
			book, err := h.getBook(isbn)
			if err != nil {
				return err
			}
			loan, err := h.service.CheckoutBook(userID, isbn)
			if err != nil {
				switch {
				case errors.Is(err, service.ErrBookUnavailable):
					return errors.New("この書籍は現在貸出中で利用できません")
				case errors.Is(err, service.ErrDuplicateLoan):
					return errors.New("この利用者は既にこの書籍を借りています")
				default:
					return err
				}
			}
			fmt.Fprintf(h.stdout, "貸出処理が完了しました: %s -> %s (貸出ID: %s)\n", book.Title, user.Name, loan.LoanID)
			return nil
		},
	}
	cmd.Flags().String("user-id", "", "利用者ID")
	cmd.Flags().String("isbn", "", "ISBN")
	return cmd
}

func (h *Handler) loanReturnCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "return",
		Short: "書籍を返却する",
		RunE: func(cmd *cobra.Command, args []string) error {
			loanID, _ := cmd.Flags().GetString("loan-id")
			if loanID == "" {
				return errors.New("貸出IDを指定してください: --loan-id")
			}
			loan, err := h.service.ReturnBook(loanID)
			if err != nil {
				switch {
				case errors.Is(err, service.ErrRecordNotFound):
					return fmt.Errorf("貸出ID %s が見つかりません", loanID)
				case errors.Is(err, service.ErrAlreadyReturned):
					return errors.New("この貸出は既に返却済みです")
				default:
					return err
				}
			}
			title := loan.ISBN
			if book, err := h.service.GetBook(loan.ISBN); err == nil {
				title = book.Title
			}
			fmt.Fprintf(h.stdout, "返却処理が完了しました: %s\n", title)
			return nil
		},
	}
	cmd.Flags().String("loan-id", "", "貸出ID")
	return cmd
}

func (h *Handler) loanListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "貸出中の書籍一覧を表示する",
		RunE: func(cmd *cobra.Command, args []string) error {
			all, _ := cmd.Flags().GetBool("all")
			if all {
				loans, err := h.service.ListLoans()
				if err != nil {
					return err
				}
				if len(loans) == 0 {
					fmt.Fprintln(h.stdout, "貸出記録がありません")
					return nil
				}
				fmt.Fprintln(h.stdout, "=== 貸出一覧 ===")
				h.displayLoans(loans, false)
				return nil
			}
			loans, err := h.service.ActiveLoans()
			if err != nil {
				return err
			}
			if len(loans) == 0 {
				fmt.Fprintln(h.stdout, "現在貸出中の書籍がありません")
				return nil
			}
			fmt.Fprintln(h.stdout, "=== 貸出中書籍一覧 ===")
			h.displayLoans(loans, false)
			return nil
		},
	}
	cmd.Flags().Bool("all", false, "返却済みも含めて表示する")
	return cmd
}

func (h *Handler) loanOverdueCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "overdue",
		Short: "延滞中の書籍一覧を表示する",
		RunE: func(cmd *cobra.Command, args []string) error {
			loans, err := h.service.OverdueLoans()
			if err != nil {
				return err
			}
			if len(loans) == 0 {
				fmt.Fprintln(h.stdout, "延滞している書籍がありません")
				return nil
			}
			fmt.Fprintln(h.stdout, "=== 延滞書籍一覧 ===")
			h.displayLoans(loans, true)
			return nil
		},
	}
}

func (h *Handler) loanHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "貸出履歴を表示する",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, _ := cmd.Flags().GetString("user-id")
			isbn, _ := cmd.Flags().GetString("isbn")
			switch {
			case userID != "" && isbn != "":
				return errors.New("--user-id と --isbn は同時に指定できません")
			case userID != "":
				user, err := h.getUser(userID)
				if err != nil {
					return err
				}
				loans, err := h.service.UserLoanHistory(userID)
				if err != nil {
					return err
				}
				if len(loans) == 0 {
					return errors.New("この利用者の貸出履歴がありません")
				}
				fmt.Fprintf(h.stdout, "=== %s の貸出履歴 ===\n", user.Name)
				h.displayLoans(loans, false)
				return nil
			case isbn != "":
				book, err := h.getBook(isbn)
				if err != nil {
					return err
				}
				loans, err := h.service.BookLoanHistory(isbn)
				if err != nil {
					return err
				}
				if len(loans) == 0 {
					return errors.New("この書籍の貸出履歴がありません")
				}
				fmt.Fprintf(h.stdout, "=== %s の貸出履歴 ===\n", book.Title)
				h.displayLoans(loans, false)
				return nil
			default:
				return errors.New("利用者IDまたはISBNを指定してください: --user-id, --isbn")
			}
		},
	}
	cmd.Flags().String("user-id", "", "利用者ID")
	cmd.Flags().String("isbn", "", "ISBN")
	return cmd
}

func (h *Handler) loanSummaryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "貸出状況のサマリーを表示する",
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := h.service.LoanSummary()
			if err != nil {
				return err
			}
			fmt.Fprintln(h.stdout, "=== 貸出状況サマリー ===")
			fmt.Fprintf(h.stdout, "総貸出件数: %d\n", summary.Total)
			fmt.Fprintf(h.stdout, "貸出中: %d\n", summary.Active)
			fmt.Fprintf(h.stdout, "延滞: %d\n", summary.Overdue)
			fmt.Fprintf(h.stdout, "返却済: %d\n", summary.Returned)
			return nil
		},
	}
}

func (h *Handler) displayLoans(loans []*data.Loan, showOverdueDays bool) {
	for _, loan := range loans {
		h.displayLoan(loan, showOverdueDays)
		fmt.Fprintln(h.stdout)
	}
}

func (h *Handler) displayLoan(loan *data.Loan, showOverdueDays bool) {
	book, err := h.service.GetBook(loan.ISBN)
	if err != nil {
		fmt.Fprintf(h.stdout, "データ取得エラー: ISBN %s の書籍が見つかりません\n", loan.ISBN)
		return
	}
	user, err := h.service.GetUser(loan.UserID)
	if err != nil {
		fmt.Fprintf(h.stdout, "データ取得エラー: 利用者ID %s が見つかりません\n", loan.UserID)
		return
	}
	fmt.Fprintf(h.stdout, "貸出ID: %s\n", loan.LoanID)
	fmt.Fprintf(h.stdout, "書籍: %s (%s)\n", book.Title, loan.ISBN)
	fmt.Fprintf(h.stdout, "利用者: %s (%s)\n", user.Name, loan.UserID)
	fmt.Fprintf(h.stdout, "貸出日: %s\n", loan.CheckoutDate)
	fmt.Fprintf(h.stdout, "返却予定日: %s\n", loan.DueDate)
	if loan.ReturnDate != "" {
		fmt.Fprintf(h.stdout, "返却日: %s\n", loan.ReturnDate)
	}
	fmt.Fprintf(h.stdout, "状態: %s", statusLabel(loan))
	if today := h.today(); showOverdueDays && loan.IsOverdue(today) {
		fmt.Fprintf(h.stdout, " (延滞%d日)", loan.DaysOverdue(today))
	}
	fmt.Fprintln(h.stdout)
}

func statusLabel(loan *data.Loan) string {
	if loan.IsLoaned() {
		return "貸出中"
	}
	return "返却済"
}
