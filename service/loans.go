package service

import (
	"errors"

	"github.com/od-kfujiwara/tosho-kanri-system/data"
	"github.com/od-kfujiwara/tosho-kanri-system/internal/validator"
	"github.com/od-kfujiwara/tosho-kanri-system/repository"
)

type loans interface {
	CheckoutBook(userID, isbn string) (*data.Loan, error)
	ReturnBook(loanID string) (*data.Loan, error)
	GetLoan(loanID string) (*data.Loan, error)
	ListLoans() ([]*data.Loan, error)
	ActiveLoans() ([]*data.Loan, error)
	OverdueLoans() ([]*data.Loan, error)
	UserLoanHistory(userID string) ([]*data.Loan, error)
	BookLoanHistory(isbn string) ([]*data.Loan, error)
	LoanSummary() (*data.LoanSummary, error)
}

// CheckoutBook service lends one copy of a book to a user. The user
// must exist, the book must have a loanable copy, and the user must not
// already hold an active loan for the same book. Checks run in that
// order so the first failure is the one reported.
func (s *service) CheckoutBook(userID, isbn string) (*data.Loan, error) {
	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}
	book, err := s.GetBook(isbn)
	if err != nil {
		return nil, err
	}
	if !book.IsAvailable() {
		return nil, ErrBookUnavailable
	}
	existing, err := s.repo.GetLoansForUser(user.UserID)
	if err != nil {
		return nil, err
	}
	for _, loan := range existing {
		if loan.ISBN == book.ISBN && loan.IsLoaned() {
			return nil, ErrDuplicateLoan
		}
	}
	loanID, err := s.repo.NextLoanID()
	if err != nil {
		return nil, err
	}
	checkout := s.now()
	loan := &data.Loan{
		LoanID:       loanID,
		UserID:       user.UserID,
		ISBN:         book.ISBN,
		CheckoutDate: checkout.Format(validator.DateLayout),
		DueDate:      checkout.AddDate(0, 0, s.config.Loan.TermDays).Format(validator.DateLayout),
		Status:       data.StatusLoaned,
	}
	v := validator.New()
	if data.ValidateLoan(v, loan); !v.Valid() {
		return nil, s.failedValidation(v.Errors)
	}
	if _, err := s.loanBookCopy(book.ISBN); err != nil {
		return nil, err
	}
	err = s.repo.CreateLoan(loan)
	if err != nil {
		// Back out the copy count so the book does not leak a
		// phantom loan.
		if _, rbErr := s.returnBookCopy(book.ISBN); rbErr != nil {
			s.logger.PrintError(rbErr, map[string]string{"isbn": book.ISBN})
		}
		switch {
		case errors.Is(err, repository.ErrDuplicateRecord):
			return nil, ErrDuplicateRecord
		default:
			return nil, err
		}
	}
	s.logger.PrintInfo("book checked out", map[string]string{
		"loan_id": loan.LoanID,
		"user_id": loan.UserID,
		"isbn":    loan.ISBN,
	})
	return loan, nil
}

// ReturnBook service completes a loan. Returning an already returned
// loan is an error.
func (s *service) ReturnBook(loanID string) (*data.Loan, error) {
	loan, err := s.GetLoan(loanID)
	if err != nil {
		return nil, err
	}
	if !loan.IsLoaned() {
		return nil, ErrAlreadyReturned
	}
	loan.ReturnDate = s.today()
	loan.Status = data.StatusReturned
	if _, err := s.returnBookCopy(loan.ISBN); err != nil {
		return nil, err
	}
	if err := s.repo.SaveLoan(loan); err != nil {
		return nil, err
	}
	s.logger.PrintInfo("book returned", map[string]string{
		"loan_id": loan.LoanID,
		"isbn":    loan.ISBN,
	})
	return loan, nil
}

// GetLoan service retrieves the details of a loan by ID.
func (s *service) GetLoan(loanID string) (*data.Loan, error) {
	v := validator.New()
	if v.Check(validator.Matches(loanID, validator.LoanIDRX), "loan-id", "貸出IDの形式が正しくありません"); !v.Valid() {
		return nil, s.failedValidation(v.Errors)
	}
	loan, err := s.repo.GetLoan(loanID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return loan, nil
}

// ListLoans service retrieves every loan record, past and present.
func (s *service) ListLoans() ([]*data.Loan, error) {
	return s.repo.GetAllLoans()
}

// ActiveLoans service retrieves loans that have not been returned.
func (s *service) ActiveLoans() ([]*data.Loan, error) {
	return s.filterLoans(func(l *data.Loan) bool { return l.IsLoaned() })
}

// OverdueLoans service retrieves active loans past their due date.
func (s *service) OverdueLoans() ([]*data.Loan, error) {
	today := s.today()
	return s.filterLoans(func(l *data.Loan) bool { return l.IsOverdue(today) })
}

func (s *service) filterLoans(keep func(*data.Loan) bool) ([]*data.Loan, error) {
	all, err := s.repo.GetAllLoans()
	if err != nil {
		return nil, err
	}
	results := []*data.Loan{}
	for _, loan := range all {
		if keep(loan) {
			results = append(results, loan)
		}
	}
	return results, nil
}

// UserLoanHistory service retrieves every loan a user has made. The
// user must exist.
func (s *service) UserLoanHistory(userID string) ([]*data.Loan, error) {
	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}
	return s.repo.GetLoansForUser(user.UserID)
}

// BookLoanHistory service retrieves every loan ever made for a book.
// The book must exist.
func (s *service) BookLoanHistory(isbn string) ([]*data.Loan, error) {
	book, err := s.GetBook(isbn)
	if err != nil {
		return nil, err
	}
	return s.repo.GetLoansForBook(book.ISBN)
}

// LoanSummary service aggregates loan counts by state as of today.
func (s *service) LoanSummary() (*data.LoanSummary, error) {
	all, err := s.repo.GetAllLoans()
	if err != nil {
		return nil, err
	}
	today := s.today()
	summary := &data.LoanSummary{Total: len(all)}
	for _, loan := range all {
		if loan.IsLoaned() {
			summary.Active++
			if loan.IsOverdue(today) {
				summary.Overdue++
			}
		} else {
			summary.Returned++
		}
	}
	return summary, nil
}
