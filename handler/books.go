package handler

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/od-kfujiwara/tosho-kanri-system/data"
	"github.com/od-kfujiwara/tosho-kanri-system/data/dto"
	"github.com/od-kfujiwara/tosho-kanri-system/service"
)

func (h *Handler) bookCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "book",
		Short: "書籍管理",
	}
	cmd.AddCommand(
		h.bookAddCommand(),
		h.bookListCommand(),
		h.bookSearchCommand(),
		h.bookShowCommand(),
		h.bookEditCommand(),
		h.bookDeleteCommand(),
	)
	return cmd
}

func (h *Handler) bookAddCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "書籍を登録する",
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			isbn, _ := flags.GetString("isbn")
			title, _ := flags.GetString("title")
			author, _ := flags.GetString("author")
			publisher, _ := flags.GetString("publisher")
			year, _ := flags.GetString("year")
			category, _ := flags.GetString("category")
			copies, _ := flags.GetString("copies")
			if isbn == "" || title == "" || author == "" || publisher == "" || year == "" || category == "" {
				return errors.New("必要なパラメータが不足しています: --isbn, --title, --author, --publisher, --year, --category")
			}
			book, err := h.service.AddBook(isbn, title, author, publisher, intOption(year), category, intOption(copies))
			if err != nil {
				if errors.Is(err, service.ErrDuplicateRecord) {
					return fmt.Errorf("ISBN %s の書籍は既に登録されています", isbn)
				}
				return err
			}
			fmt.Fprintf(h.stdout, "書籍を登録しました: %s\n", book.Title)
			return nil
		},
	}
	cmd.Flags().String("isbn", "", "ISBN")
	cmd.Flags().String("title", "", "タイトル")
	cmd.Flags().String("author", "", "著者")
	cmd.Flags().String("publisher", "", "出版社")
	cmd.Flags().String("year", "", "出版年")
	cmd.Flags().String("category", "", "カテゴリ")
	cmd.Flags().String("copies", "1", "冊数")
	return cmd
}

func (h *Handler) bookListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "書籍一覧を表示する",
		RunE: func(cmd *cobra.Command, args []string) error {
			available, _ := cmd.Flags().GetBool("available")
			loaned, _ := cmd.Flags().GetBool("loaned")
			if available && loaned {
				return errors.New("--available と --loaned は同時に指定できません")
			}
			var (
				books []*data.Book
				err   error
			)
			switch {
			case available:
				books, err = h.service.ListAvailableBooks()
			case loaned:
				books, err = h.service.ListLoanedBooks()
			default:
				books, err = h.service.ListBooks()
			}
			if err != nil {
				return err
			}
			if len(books) == 0 {
				fmt.Fprintln(h.stdout, "登録されている書籍がありません")
				return nil
			}
			fmt.Fprintln(h.stdout, "=== 書籍一覧 ===")
			for _, book := range books {
				h.displayBook(book)
				fmt.Fprintln(h.stdout)
			}
			return nil
		},
	}
	cmd.Flags().Bool("available", false, "貸出可能な書籍のみ表示する")
	cmd.Flags().Bool("loaned", false, "貸出中の書籍のみ表示する")
	return cmd
}

func (h *Handler) bookSearchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "書籍を検索する",
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			title, _ := flags.GetString("title")
			author, _ := flags.GetString("author")
			category, _ := flags.GetString("category")
			var (
				books []*data.Book
				err   error
			)
			switch {
			case title != "":
				books, err = h.service.SearchBooksByTitle(title)
				if errors.Is(err, service.ErrRecordNotFound) {
					return fmt.Errorf("タイトルに %q を含む書籍が見つかりません", title)
				}
			case author != "":
				books, err = h.service.SearchBooksByAuthor(author)
				if errors.Is(err, service.ErrRecordNotFound) {
					return fmt.Errorf("著者に %q を含む書籍が見つかりません", author)
				}
			case category != "":
				books, err = h.service.SearchBooksByCategory(category)
				if errors.Is(err, service.ErrRecordNotFound) {
					return fmt.Errorf("カテゴリに %q を含む書籍が見つかりません", category)
				}
			default:
				return errors.New("検索条件を指定してください: --title, --author, --category のいずれか")
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(h.stdout, "=== 検索結果 ===")
			for _, book := range books {
				h.displayBook(book)
				fmt.Fprintln(h.stdout)
			}
			return nil
		},
	}
	cmd.Flags().String("title", "", "タイトル")
	cmd.Flags().String("author", "", "著者")
	cmd.Flags().String("category", "", "カテゴリ")
	return cmd
}

func (h *Handler) bookShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "書籍の詳細を表示する",
		RunE: func(cmd *cobra.Command, args []string) error {
			isbn, _ := cmd.Flags().GetString("isbn")
			if isbn == "" {
				return errors.New("ISBNを指定してください: --isbn")
			}
			book, err := h.getBook(isbn)
			if err != nil {
				return err
			}
			fmt.Fprintln(h.stdout, "=== 書籍詳細 ===")
			h.displayBook(book)
			return nil
		},
	}
	cmd.Flags().String("isbn", "", "ISBN")
	return cmd
}

func (h *Handler) bookEditCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "書籍の情報を更新する",
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			isbn, _ := flags.GetString("isbn")
			if isbn == "" {
				return errors.New("ISBNを指定してください: --isbn")
			}
			var requestBody dto.UpdateBookRequestBody
			if flags.Changed("title") {
				title, _ := flags.GetString("title")
				requestBody.Title = &title
			}
			if flags.Changed("author") {
				author, _ := flags.GetString("author")
				requestBody.Author = &author
			}
			if flags.Changed("publisher") {
				publisher, _ := flags.GetString("publisher")
				requestBody.Publisher = &publisher
			}
			if flags.Changed("year") {
				value, _ := flags.GetString("year")
				year := intOption(value)
				requestBody.Year = &year
			}
			if flags.Changed("category") {
				category, _ := flags.GetString("category")
				requestBody.Category = &category
			}
			if flags.Changed("copies") {
				value, _ := flags.GetString("copies")
				copies := intOption(value)
				requestBody.Copies = &copies
			}
			if requestBody == (dto.UpdateBookRequestBody{}) {
				return errors.New("更新する項目を指定してください: --title, --author, --publisher, --year, --category, --copies")
			}
			book, err := h.service.UpdateBook(isbn, requestBody)
			if err != nil {
				if errors.Is(err, service.ErrRecordNotFound) {
					return fmt.Errorf("ISBN %s の書籍が見つかりません", isbn)
				}
				return err
			}
			fmt.Fprintf(h.stdout, "書籍を更新しました: %s\n", book.Title)
			return nil
		},
	}
	cmd.Flags().String("isbn", "", "ISBN")
	cmd.Flags().String("title", "", "タイトル")
	cmd.Flags().String("author", "", "著者")
	cmd.Flags().String("publisher", "", "出版社")
	cmd.Flags().String("year", "", "出版年")
	cmd.Flags().String("category", "", "カテゴリ")
	cmd.Flags().String("copies", "", "冊数")
	return cmd
}

func (h *Handler) bookDeleteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "書籍を削除する",
		RunE: func(cmd *cobra.Command, args []string) error {
			isbn, _ := cmd.Flags().GetString("isbn")
			if isbn == "" {
				return errors.New("ISBNを指定してください: --isbn")
			}
			book, err := h.getBook(isbn)
			if err != nil {
				return err
			}
			if err := h.service.DeleteBook(isbn); err != nil {
				if errors.Is(err, service.ErrDeleteConflict) {
					return errors.New("貸出中の書籍は削除できません")
				}
				return err
			}
			fmt.Fprintf(h.stdout, "書籍を削除しました: %s\n", book.Title)
			return nil
		},
	}
	cmd.Flags().String("isbn", "", "ISBN")
	return cmd
}

func (h *Handler) getBook(isbn string) (*data.Book, error) {
	book, err := h.service.GetBook(isbn)
	if errors.Is(err, service.ErrRecordNotFound) {
		return nil, fmt.Errorf("ISBN %s の書籍が見つかりません", isbn)
	}
	return book, err
}

func (h *Handler) displayBook(book *data.Book) {
	fmt.Fprintf(h.stdout, "ISBN: %s\n", book.ISBN)
	fmt.Fprintf(h.stdout, "タイトル: %s\n", book.Title)
	fmt.Fprintf(h.stdout, "著者: %s\n", book.Author)
	fmt.Fprintf(h.stdout, "出版社: %s\n", book.Publisher)
	fmt.Fprintf(h.stdout, "出版年: %d\n", book.Year)
	fmt.Fprintf(h.stdout, "カテゴリ: %s\n", book.Category)
	if book.IsAvailable() {
		fmt.Fprintf(h.stdout, "状況: 利用可能 (%d冊中%d冊利用可能)\n", book.TotalCopies, book.AvailableCopies())
	} else {
		fmt.Fprintf(h.stdout, "状況: 貸出中 (%d冊すべて貸出中)\n", book.TotalCopies)
	}
}
