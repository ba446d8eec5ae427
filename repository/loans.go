package repository

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/od-kfujiwara/tosho-kanri-system/data"
	"github.com/od-kfujiwara/tosho-kanri-system/repository/csvdb"
)

// Stored schema for loans.csv. Status holds the language-neutral
// identifiers LOANED / RETURNED; ReturnDate stays empty until return.
var loanHeader = []string{"LoanID", "UserID", "ISBN", "CheckoutDate", "DueDate", "ReturnDate", "Status"}

var loanSeqRX = regexp.MustCompile(`^L(\d+)$`)

type loans interface {
	GetAllLoans() ([]*data.Loan, error)
	GetLoan(loanID string) (*data.Loan, error)
	GetLoansForUser(userID string) ([]*data.Loan, error)
	GetLoansForBook(isbn string) ([]*data.Loan, error)
	CreateLoan(loan *data.Loan) error
	SaveLoan(loan *data.Loan) error
	NextLoanID() (string, error)
}

// GetAllLoans retrieves every loan record.
func (r *repository) GetAllLoans() ([]*data.Loan, error) {
	records, err := r.loansTable.ReadAll()
	if err != nil {
		return nil, err
	}
	loans := make([]*data.Loan, 0, len(records))
	for _, rec := range records {
		loans = append(loans, loanFromRecord(rec))
	}
	return loans, nil
}

// GetLoan retrieves a loan record by its ID.
func (r *repository) GetLoan(loanID string) (*data.Loan, error) {
	loans, err := r.GetAllLoans()
	if err != nil {
		return nil, err
	}
	for _, loan := range loans {
		if loan.LoanID == loanID {
			return loan, nil
		}
	}
	return nil, ErrRecordNotFound
}

// GetLoansForUser retrieves all loans, active and returned, held by a user.
func (r *repository) GetLoansForUser(userID string) ([]*data.Loan, error) {
	loans, err := r.GetAllLoans()
	if err != nil {
		return nil, err
	}
	results := []*data.Loan{}
	for _, loan := range loans {
		if loan.UserID == userID {
			results = append(results, loan)
		}
	}
	return results, nil
}

// GetLoansForBook retrieves all loans ever made against an ISBN.
func (r *repository) GetLoansForBook(isbn string) ([]*data.Loan, error) {
	loans, err := r.GetAllLoans()
	if err != nil {
		return nil, err
	}
	results := []*data.Loan{}
	for _, loan := range loans {
		if loan.ISBN == isbn {
			results = append(results, loan)
		}
	}
	return results, nil
}

// CreateLoan appends a new loan record. It fails with
// ErrDuplicateRecord if the loan ID is already on file.
func (r *repository) CreateLoan(loan *data.Loan) error {
	return r.loansTable.Update(func(records []csvdb.Record) ([]csvdb.Record, error) {
		for _, rec := range records {
			if rec["LoanID"] == loan.LoanID {
				return nil, ErrDuplicateRecord
			}
		}
		return append(records, loanToRecord(loan)), nil
	})
}

// SaveLoan upserts a loan record.
func (r *repository) SaveLoan(loan *data.Loan) error {
	return r.loansTable.Update(func(records []csvdb.Record) ([]csvdb.Record, error) {
		for i, rec := range records {
			if rec["LoanID"] == loan.LoanID {
				records[i] = loanToRecord(loan)
				return records, nil
			}
		}
		return append(records, loanToRecord(loan)), nil
	})
}

// NextLoanID reserves the next sequential loan ID; see NextUserID.
func (r *repository) NextLoanID() (string, error) {
	loans, err := r.GetAllLoans()
	if err != nil {
		return "", err
	}
	maxID := 0
	for _, loan := range loans {
		if m := loanSeqRX.FindStringSubmatch(loan.LoanID); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > maxID {
				maxID = n
			}
		}
	}
	n, err := r.nextSequence("loan", maxID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("L%03d", n), nil
}

func loanFromRecord(rec csvdb.Record) *data.Loan {
	return &data.Loan{
		LoanID:       rec["LoanID"],
		UserID:       rec["UserID"],
		ISBN:         rec["ISBN"],
		CheckoutDate: rec["CheckoutDate"],
		DueDate:      rec["DueDate"],
		ReturnDate:   rec["ReturnDate"],
		Status:       rec["Status"],
	}
}

func loanToRecord(loan *data.Loan) csvdb.Record {
	return csvdb.Record{
		"LoanID":       loan.LoanID,
		"UserID":       loan.UserID,
		"ISBN":         loan.ISBN,
		"CheckoutDate": loan.CheckoutDate,
		"DueDate":      loan.DueDate,
		"ReturnDate":   loan.ReturnDate,
		"Status":       loan.Status,
	}
}
