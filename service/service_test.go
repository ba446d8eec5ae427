package service

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/od-kfujiwara/tosho-kanri-system/config"
	"github.com/od-kfujiwara/tosho-kanri-system/data"
	"github.com/od-kfujiwara/tosho-kanri-system/data/dto"
	"github.com/od-kfujiwara/tosho-kanri-system/internal/jsonlog"
	"github.com/od-kfujiwara/tosho-kanri-system/repository"
	"github.com/od-kfujiwara/tosho-kanri-system/repository/csvdb"
)

func newTestService(t *testing.T) *service {
	t.Helper()
	var cfg config.Config
	cfg.Data.Dir = t.TempDir()
	cfg.Loan.TermDays = 14
	db, err := csvdb.Open(cfg)
	require.NoError(t, err)
	logger := jsonlog.New(io.Discard, jsonlog.LevelOff)
	svc := New(cfg, logger, repository.New(db)).(*service)
	svc.now = func() time.Time {
		return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	}
	return svc
}

func (s *service) setToday(t *testing.T, day string) {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", day)
	require.NoError(t, err)
	s.now = func() time.Time { return parsed }
}

func addTestBook(t *testing.T, s *service, isbn string, copies int) *data.Book {
	t.Helper()
	book, err := s.AddBook(isbn, "走れメロス", "太宰治", "新潮社", 1940, "小説", copies)
	require.NoError(t, err)
	return book
}

func addTestUser(t *testing.T, s *service) *data.User {
	t.Helper()
	user, err := s.AddUser("山田太郎", "yamada@example.com")
	require.NoError(t, err)
	return user
}

func TestAddBookValidatesAndNormalizesISBN(t *testing.T) {
	s := newTestService(t)

	book, err := s.AddBook("978-4-10-100101-3", "雪国", "川端康成", "新潮社", 1947, "小説", 2)
	require.NoError(t, err)
	assert.Equal(t, "9784101001013", book.ISBN)

	_, err = s.AddBook("12345", "雪国", "川端康成", "新潮社", 1947, "小説", 2)
	assert.ErrorIs(t, err, ErrFailedValidation)

	_, err = s.AddBook("9784101001013", "雪国", "川端康成", "新潮社", 1947, "小説", 2)
	assert.ErrorIs(t, err, ErrDuplicateRecord)
}

func TestSearchBooksNoMatchIsAnError(t *testing.T) {
	s := newTestService(t)
	addTestBook(t, s, "9784101001013", 1)

	results, err := s.SearchBooksByTitle("メロス")
	require.NoError(t, err)
	assert.Len(t, results, 1)

	_, err = s.SearchBooksByTitle("存在しない")
	assert.ErrorIs(t, err, ErrRecordNotFound)

	_, err = s.SearchBooksByAuthor("漱石")
	assert.ErrorIs(t, err, ErrRecordNotFound)

	_, err = s.SearchBooksByCategory("写真集")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestSearchUsersNoMatchIsAnError(t *testing.T) {
	s := newTestService(t)
	addTestUser(t, s)

	results, err := s.SearchUsersByName("山田")
	require.NoError(t, err)
	assert.Len(t, results, 1)

	_, err = s.SearchUsersByName("鈴木")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestAddUserAssignsSequentialIDs(t *testing.T) {
	s := newTestService(t)

	first := addTestUser(t, s)
	assert.Equal(t, "U001", first.UserID)
	assert.Equal(t, "2024-05-01", first.RegistrationDate)

	second, err := s.AddUser("佐藤花子", "sato@example.com")
	require.NoError(t, err)
	assert.Equal(t, "U002", second.UserID)

	// Freed IDs are never reused.
	require.NoError(t, s.DeleteUser(second.UserID))
	third, err := s.AddUser("田中一郎", "tanaka@example.com")
	require.NoError(t, err)
	assert.Equal(t, "U003", third.UserID)
}

func TestCheckoutAndReturnRoundTrip(t *testing.T) {
	s := newTestService(t)
	user := addTestUser(t, s)
	addTestBook(t, s, "9784101001013", 1)

	loan, err := s.CheckoutBook(user.UserID, "9784101001013")
	require.NoError(t, err)
	assert.Equal(t, "L001", loan.LoanID)
	assert.Equal(t, "2024-05-01", loan.CheckoutDate)
	assert.Equal(t, "2024-05-15", loan.DueDate)
	assert.Equal(t, data.StatusLoaned, loan.Status)
	assert.Empty(t, loan.ReturnDate)

	book, err := s.GetBook("9784101001013")
	require.NoError(t, err)
	assert.Equal(t, 1, book.LoanedCopies)
	assert.False(t, book.IsAvailable())

	s.setToday(t, "2024-05-10")
	returned, err := s.ReturnBook(loan.LoanID)
	require.NoError(t, err)
	assert.Equal(t, data.StatusReturned, returned.Status)
	assert.Equal(t, "2024-05-10", returned.ReturnDate)

	book, err = s.GetBook("9784101001013")
	require.NoError(t, err)
	assert.Equal(t, 0, book.LoanedCopies)
	assert.True(t, book.IsAvailable())
}

func TestReturnTwiceFails(t *testing.T) {
	s := newTestService(t)
	user := addTestUser(t, s)
	addTestBook(t, s, "9784101001013", 1)

	loan, err := s.CheckoutBook(user.UserID, "9784101001013")
	require.NoError(t, err)
	_, err = s.ReturnBook(loan.LoanID)
	require.NoError(t, err)

	_, err = s.ReturnBook(loan.LoanID)
	assert.ErrorIs(t, err, ErrAlreadyReturned)

	// The copy count does not go negative on the failed return.
	book, err := s.GetBook("9784101001013")
	require.NoError(t, err)
	assert.Equal(t, 0, book.LoanedCopies)
}

func TestCheckoutUnavailableBookFails(t *testing.T) {
	s := newTestService(t)
	first := addTestUser(t, s)
	second, err := s.AddUser("佐藤花子", "sato@example.com")
	require.NoError(t, err)
	addTestBook(t, s, "9784101001013", 1)

	_, err = s.CheckoutBook(first.UserID, "9784101001013")
	require.NoError(t, err)

	_, err = s.CheckoutBook(second.UserID, "9784101001013")
	assert.ErrorIs(t, err, ErrBookUnavailable)
}

func TestCheckoutSameBookTwiceFails(t *testing.T) {
	s := newTestService(t)
	user := addTestUser(t, s)
	addTestBook(t, s, "9784101001013", 2)

	_, err := s.CheckoutBook(user.UserID, "9784101001013")
	require.NoError(t, err)

	_, err = s.CheckoutBook(user.UserID, "9784101001013")
	assert.ErrorIs(t, err, ErrDuplicateLoan)

	// One copy is still loanable to somebody else.
	book, err := s.GetBook("9784101001013")
	require.NoError(t, err)
	assert.Equal(t, 1, book.LoanedCopies)
}

func TestCheckoutValidationOrder(t *testing.T) {
	s := newTestService(t)

	_, err := s.CheckoutBook("U999", "9784101001013")
	assert.ErrorIs(t, err, ErrRecordNotFound)

	addTestUser(t, s)
	_, err = s.CheckoutBook("U001", "9784101001013")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestOverdueLoans(t *testing.T) {
	s := newTestService(t)
	user := addTestUser(t, s)
	addTestBook(t, s, "9784101001013", 1)
	addTestBook(t, s, "9784101010014", 1)

	first, err := s.CheckoutBook(user.UserID, "9784101001013")
	require.NoError(t, err)

	// Due 2024-05-15. On the due date nothing is overdue yet.
	s.setToday(t, "2024-05-15")
	overdue, err := s.OverdueLoans()
	require.NoError(t, err)
	assert.Empty(t, overdue)

	s.setToday(t, "2024-05-18")
	overdue, err = s.OverdueLoans()
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, first.LoanID, overdue[0].LoanID)
	assert.Equal(t, 3, overdue[0].DaysOverdue("2024-05-18"))

	// Returned loans drop out even past the due date.
	_, err = s.ReturnBook(first.LoanID)
	require.NoError(t, err)
	overdue, err = s.OverdueLoans()
	require.NoError(t, err)
	assert.Empty(t, overdue)
}

func TestLoanSummary(t *testing.T) {
	s := newTestService(t)
	user := addTestUser(t, s)
	addTestBook(t, s, "9784101001013", 1)
	addTestBook(t, s, "9784101010014", 1)

	first, err := s.CheckoutBook(user.UserID, "9784101001013")
	require.NoError(t, err)
	_, err = s.CheckoutBook(user.UserID, "9784101010014")
	require.NoError(t, err)
	_, err = s.ReturnBook(first.LoanID)
	require.NoError(t, err)

	s.setToday(t, "2024-06-01")
	summary, err := s.LoanSummary()
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Active)
	assert.Equal(t, 1, summary.Overdue)
	assert.Equal(t, 1, summary.Returned)
}

func TestUpdateBookPartialFields(t *testing.T) {
	s := newTestService(t)
	addTestBook(t, s, "9784101001013", 2)

	title := "新編 走れメロス"
	copies := 5
	updated, err := s.UpdateBook("9784101001013", dto.UpdateBookRequestBody{
		Title:  &title,
		Copies: &copies,
	})
	require.NoError(t, err)
	assert.Equal(t, "新編 走れメロス", updated.Title)
	assert.Equal(t, 5, updated.TotalCopies)
	assert.Equal(t, "太宰治", updated.Author)

	// Copies cannot drop below the number on loan.
	user := addTestUser(t, s)
	_, err = s.CheckoutBook(user.UserID, "9784101001013")
	require.NoError(t, err)
	zero := 0
	_, err = s.UpdateBook("9784101001013", dto.UpdateBookRequestBody{Copies: &zero})
	assert.ErrorIs(t, err, ErrFailedValidation)
}

func TestDeleteConflicts(t *testing.T) {
	s := newTestService(t)
	user := addTestUser(t, s)
	addTestBook(t, s, "9784101001013", 1)

	loan, err := s.CheckoutBook(user.UserID, "9784101001013")
	require.NoError(t, err)

	err = s.DeleteBook("9784101001013")
	assert.ErrorIs(t, err, ErrDeleteConflict)
	err = s.DeleteUser(user.UserID)
	assert.ErrorIs(t, err, ErrDeleteConflict)

	_, err = s.ReturnBook(loan.LoanID)
	require.NoError(t, err)
	assert.NoError(t, s.DeleteBook("9784101001013"))
	assert.NoError(t, s.DeleteUser(user.UserID))
}

func TestLoanHistories(t *testing.T) {
	s := newTestService(t)
	user := addTestUser(t, s)
	addTestBook(t, s, "9784101001013", 1)

	loan, err := s.CheckoutBook(user.UserID, "9784101001013")
	require.NoError(t, err)
	_, err = s.ReturnBook(loan.LoanID)
	require.NoError(t, err)
	_, err = s.CheckoutBook(user.UserID, "9784101001013")
	require.NoError(t, err)

	byUser, err := s.UserLoanHistory(user.UserID)
	require.NoError(t, err)
	assert.Len(t, byUser, 2)

	byBook, err := s.BookLoanHistory("9784101001013")
	require.NoError(t, err)
	assert.Len(t, byBook, 2)

	_, err = s.UserLoanHistory("U999")
	assert.ErrorIs(t, err, ErrRecordNotFound)
	_, err = s.BookLoanHistory("9780000000000")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestListBookFilters(t *testing.T) {
	s := newTestService(t)
	user := addTestUser(t, s)
	addTestBook(t, s, "9784101001013", 1)
	addTestBook(t, s, "9784101010014", 1)

	_, err := s.CheckoutBook(user.UserID, "9784101001013")
	require.NoError(t, err)

	available, err := s.ListAvailableBooks()
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, "9784101010014", available[0].ISBN)

	loaned, err := s.ListLoanedBooks()
	require.NoError(t, err)
	require.Len(t, loaned, 1)
	assert.Equal(t, "9784101001013", loaned[0].ISBN)
}

func TestValidationErrorMessages(t *testing.T) {
	s := newTestService(t)

	_, err := s.AddUser("", "not-an-email")
	require.ErrorIs(t, err, ErrFailedValidation)
	assert.Contains(t, err.Error(), "氏名は必須です")
	assert.Contains(t, err.Error(), "有効なメールアドレスを入力してください")
}
