package service

import (
	"errors"

	"github.com/od-kfujiwara/tosho-kanri-system/data"
	"github.com/od-kfujiwara/tosho-kanri-system/data/dto"
	"github.com/od-kfujiwara/tosho-kanri-system/internal/validator"
	"github.com/od-kfujiwara/tosho-kanri-system/repository"
)

type books interface {
	AddBook(isbn, title, author, publisher string, year int, category string, copies int) (*data.Book, error)
	GetBook(isbn string) (*data.Book, error)
	ListBooks() ([]*data.Book, error)
	ListAvailableBooks() ([]*data.Book, error)
	ListLoanedBooks() ([]*data.Book, error)
	SearchBooksByTitle(title string) ([]*data.Book, error)
	SearchBooksByAuthor(author string) ([]*data.Book, error)
	SearchBooksByCategory(category string) ([]*data.Book, error)
	UpdateBook(isbn string, requestBody dto.UpdateBookRequestBody) (*data.Book, error)
	DeleteBook(isbn string) error
}

// AddBook service registers a new book.
func (s *service) AddBook(isbn, title, author, publisher string, year int, category string, copies int) (*data.Book, error) {
	book := &data.Book{
		ISBN:        validator.NormalizeISBN(isbn),
		Title:       title,
		Author:      author,
		Publisher:   publisher,
		Year:        year,
		Category:    category,
		TotalCopies: copies,
	}
	v := validator.New()
	if data.ValidateBook(v, book); !v.Valid() {
		return nil, s.failedValidation(v.Errors)
	}
	err := s.repo.CreateBook(book)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateRecord):
			return nil, ErrDuplicateRecord
		default:
			return nil, err
		}
	}
	s.logger.PrintInfo("book registered", map[string]string{"isbn": book.ISBN})
	return book, nil
}

// GetBook service retrieves the details of a book by its ISBN.
func (s *service) GetBook(isbn string) (*data.Book, error) {
	isbn = validator.NormalizeISBN(isbn)
	v := validator.New()
	if v.Check(validator.ValidISBN(isbn), "isbn", "ISBNは13桁の数字で入力してください"); !v.Valid() {
		return nil, s.failedValidation(v.Errors)
	}
	book, err := s.repo.GetBook(isbn)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return book, nil
}

// ListBooks service retrieves every registered book.
func (s *service) ListBooks() ([]*data.Book, error) {
	return s.repo.GetAllBooks()
}

// ListAvailableBooks service retrieves books with at least one loanable copy.
func (s *service) ListAvailableBooks() ([]*data.Book, error) {
	return s.filterBooks(func(b *data.Book) bool { return b.IsAvailable() })
}

// ListLoanedBooks service retrieves books with at least one copy on loan.
func (s *service) ListLoanedBooks() ([]*data.Book, error) {
	return s.filterBooks(func(b *data.Book) bool { return b.LoanedCopies > 0 })
}

func (s *service) filterBooks(keep func(*data.Book) bool) ([]*data.Book, error) {
	all, err := s.repo.GetAllBooks()
	if err != nil {
		return nil, err
	}
	results := []*data.Book{}
	for _, book := range all {
		if keep(book) {
			results = append(results, book)
		}
	}
	return results, nil
}

// SearchBooksByTitle service retrieves books matching a title substring.
// No match is an error, uniformly across all search operations.
func (s *service) SearchBooksByTitle(title string) ([]*data.Book, error) {
	return s.searchBooks(s.repo.FindBooksByTitle, title)
}

// SearchBooksByAuthor service retrieves books matching an author substring.
func (s *service) SearchBooksByAuthor(author string) ([]*data.Book, error) {
	return s.searchBooks(s.repo.FindBooksByAuthor, author)
}

// SearchBooksByCategory service retrieves books matching a category substring.
func (s *service) SearchBooksByCategory(category string) ([]*data.Book, error) {
	return s.searchBooks(s.repo.FindBooksByCategory, category)
}

func (s *service) searchBooks(find func(string) ([]*data.Book, error), substr string) ([]*data.Book, error) {
	results, err := find(substr)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, ErrRecordNotFound
	}
	return results, nil
}

// UpdateBook service updates the details of a specific book.
// Only fields set in the request body change.
func (s *service) UpdateBook(isbn string, requestBody dto.UpdateBookRequestBody) (*data.Book, error) {
	book, err := s.GetBook(isbn)
	if err != nil {
		return nil, err
	}
	if requestBody.Title != nil {
		book.Title = *requestBody.Title
	}
	if requestBody.Author != nil {
		book.Author = *requestBody.Author
	}
	if requestBody.Publisher != nil {
		book.Publisher = *requestBody.Publisher
	}
	if requestBody.Year != nil {
		book.Year = *requestBody.Year
	}
	if requestBody.Category != nil {
		book.Category = *requestBody.Category
	}
	if requestBody.Copies != nil {
		book.TotalCopies = *requestBody.Copies
	}
	v := validator.New()
	if data.ValidateBook(v, book); !v.Valid() {
		return nil, s.failedValidation(v.Errors)
	}
	if err := s.repo.SaveBook(book); err != nil {
		return nil, err
	}
	s.logger.PrintInfo("book updated", map[string]string{"isbn": book.ISBN})
	return book, nil
}

// DeleteBook service removes a book. Books with copies on loan cannot
// be deleted.
func (s *service) DeleteBook(isbn string) error {
	book, err := s.GetBook(isbn)
	if err != nil {
		return err
	}
	if book.LoanedCopies > 0 {
		return ErrDeleteConflict
	}
	if err := s.repo.DeleteBook(book.ISBN); err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return ErrRecordNotFound
		default:
			return err
		}
	}
	s.logger.PrintInfo("book deleted", map[string]string{"isbn": book.ISBN})
	return nil
}

// loanBookCopy increments a book's loaned-copy count as part of the
// checkout workflow. LoanedCopies never moves except through this and
// returnBookCopy, keeping it equal to the number of active loans.
func (s *service) loanBookCopy(isbn string) (*data.Book, error) {
	book, err := s.GetBook(isbn)
	if err != nil {
		return nil, err
	}
	if !book.IsAvailable() {
		return nil, ErrBookUnavailable
	}
	book.LoanedCopies++
	if err := s.repo.SaveBook(book); err != nil {
		return nil, err
	}
	return book, nil
}

// returnBookCopy decrements a book's loaned-copy count as part of the
// return workflow. A zero count here means the stores have drifted;
// surfaced as ErrEditConflict rather than written through.
func (s *service) returnBookCopy(isbn string) (*data.Book, error) {
	book, err := s.GetBook(isbn)
	if err != nil {
		return nil, err
	}
	if book.LoanedCopies <= 0 {
		return nil, ErrEditConflict
	}
	book.LoanedCopies--
	if err := s.repo.SaveBook(book); err != nil {
		return nil, err
	}
	return book, nil
}
