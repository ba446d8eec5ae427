package repository

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/od-kfujiwara/tosho-kanri-system/data"
	"github.com/od-kfujiwara/tosho-kanri-system/repository/csvdb"
)

// Stored schema for books.csv. Field identifiers are language-neutral;
// localized labels live in the handler layer.
var bookHeader = []string{"ISBN", "Title", "Author", "Publisher", "Year", "Category", "TotalCopies", "LoanedCopies"}

type books interface {
	GetAllBooks() ([]*data.Book, error)
	GetBook(isbn string) (*data.Book, error)
	FindBooksByTitle(title string) ([]*data.Book, error)
	FindBooksByAuthor(author string) ([]*data.Book, error)
	FindBooksByCategory(category string) ([]*data.Book, error)
	CreateBook(book *data.Book) error
	SaveBook(book *data.Book) error
	DeleteBook(isbn string) error
}

// GetAllBooks retrieves every book record.
func (r *repository) GetAllBooks() ([]*data.Book, error) {
	records, err := r.booksTable.ReadAll()
	if err != nil {
		return nil, err
	}
	books := make([]*data.Book, 0, len(records))
	for _, rec := range records {
		book, err := bookFromRecord(rec)
		if err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	return books, nil
}

// GetBook retrieves a book record by its ISBN.
func (r *repository) GetBook(isbn string) (*data.Book, error) {
	books, err := r.GetAllBooks()
	if err != nil {
		return nil, err
	}
	for _, book := range books {
		if book.ISBN == isbn {
			return book, nil
		}
	}
	return nil, ErrRecordNotFound
}

// FindBooksByTitle retrieves books whose title contains the given
// substring, case-insensitively.
func (r *repository) FindBooksByTitle(title string) ([]*data.Book, error) {
	return r.findBooks(func(b *data.Book) string { return b.Title }, title)
}

// FindBooksByAuthor retrieves books whose author contains the given
// substring, case-insensitively.
func (r *repository) FindBooksByAuthor(author string) ([]*data.Book, error) {
	return r.findBooks(func(b *data.Book) string { return b.Author }, author)
}

// FindBooksByCategory retrieves books whose category contains the given
// substring, case-insensitively.
func (r *repository) FindBooksByCategory(category string) ([]*data.Book, error) {
	return r.findBooks(func(b *data.Book) string { return b.Category }, category)
}

func (r *repository) findBooks(field func(*data.Book) string, substr string) ([]*data.Book, error) {
	books, err := r.GetAllBooks()
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(substr)
	results := []*data.Book{}
	for _, book := range books {
		if strings.Contains(strings.ToLower(field(book)), needle) {
			results = append(results, book)
		}
	}
	return results, nil
}

// CreateBook appends a new book record. It fails with
// ErrDuplicateRecord if the ISBN is already registered.
func (r *repository) CreateBook(book *data.Book) error {
	return r.booksTable.Update(func(records []csvdb.Record) ([]csvdb.Record, error) {
		for _, rec := range records {
			if rec["ISBN"] == book.ISBN {
				return nil, ErrDuplicateRecord
			}
		}
		return append(records, bookToRecord(book)), nil
	})
}

// SaveBook upserts a book record: rewrite in place when the ISBN
// exists, append otherwise.
func (r *repository) SaveBook(book *data.Book) error {
	return r.booksTable.Update(func(records []csvdb.Record) ([]csvdb.Record, error) {
		for i, rec := range records {
			if rec["ISBN"] == book.ISBN {
				records[i] = bookToRecord(book)
				return records, nil
			}
		}
		return append(records, bookToRecord(book)), nil
	})
}

// DeleteBook removes a book record by its ISBN.
func (r *repository) DeleteBook(isbn string) error {
	return r.booksTable.Update(func(records []csvdb.Record) ([]csvdb.Record, error) {
		kept := records[:0]
		found := false
		for _, rec := range records {
			if rec["ISBN"] == isbn {
				found = true
				continue
			}
			kept = append(kept, rec)
		}
		if !found {
			return nil, ErrRecordNotFound
		}
		return kept, nil
	})
}

func bookFromRecord(rec csvdb.Record) (*data.Book, error) {
	year, err := strconv.Atoi(rec["Year"])
	if err != nil {
		return nil, fmt.Errorf("books.csv: invalid Year %q: %w", rec["Year"], err)
	}
	total, err := strconv.Atoi(rec["TotalCopies"])
	if err != nil {
		return nil, fmt.Errorf("books.csv: invalid TotalCopies %q: %w", rec["TotalCopies"], err)
	}
	loaned, err := strconv.Atoi(rec["LoanedCopies"])
	if err != nil {
		return nil, fmt.Errorf("books.csv: invalid LoanedCopies %q: %w", rec["LoanedCopies"], err)
	}
	return &data.Book{
		ISBN:         rec["ISBN"],
		Title:        rec["Title"],
		Author:       rec["Author"],
		Publisher:    rec["Publisher"],
		Year:         year,
		Category:     rec["Category"],
		TotalCopies:  total,
		LoanedCopies: loaned,
	}, nil
}

func bookToRecord(book *data.Book) csvdb.Record {
	return csvdb.Record{
		"ISBN":         book.ISBN,
		"Title":        book.Title,
		"Author":       book.Author,
		"Publisher":    book.Publisher,
		"Year":         strconv.Itoa(book.Year),
		"Category":     book.Category,
		"TotalCopies":  strconv.Itoa(book.TotalCopies),
		"LoanedCopies": strconv.Itoa(book.LoanedCopies),
	}
}
