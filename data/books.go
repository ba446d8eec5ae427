package data

import (
	"time"

	"github.com/od-kfujiwara/tosho-kanri-system/internal/validator"
)

// The Book struct contains the data fields for a book.
// LoanedCopies is mutated only through the loan checkout/return
// workflow so that it stays equal to the number of active loans.
type Book struct {
	ISBN         string
	Title        string
	Author       string
	Publisher    string
	Year         int
	Category     string
	TotalCopies  int
	LoanedCopies int
}

// AvailableCopies returns the number of copies not currently on loan.
func (b *Book) AvailableCopies() int {
	return b.TotalCopies - b.LoanedCopies
}

// IsAvailable returns true if at least one copy can be checked out.
func (b *Book) IsAvailable() bool {
	return b.AvailableCopies() > 0
}

func ValidateBook(v *validator.Validator, book *Book) {
	v.Check(validator.ValidISBN(book.ISBN), "isbn", "ISBNは13桁の数字で入力してください")
	v.Check(book.Title != "", "title", "タイトルは必須です")
	v.Check(book.Author != "", "author", "著者は必須です")
	v.Check(book.Publisher != "", "publisher", "出版社は必須です")
	v.Check(book.Category != "", "category", "カテゴリは必須です")
	v.Check(book.Year >= 1000 && book.Year <= time.Now().Year()+10, "year", "有効な出版年を入力してください (1000-現在+10)")
	v.Check(book.TotalCopies >= 1, "copies", "冊数は1以上で入力してください")
	v.Check(book.LoanedCopies >= 0, "loaned", "貸出中数が不正です")
	v.Check(book.LoanedCopies <= book.TotalCopies, "loaned", "貸出中数が総冊数を超えています")
}
