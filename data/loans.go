package data

import (
	"time"

	"github.com/od-kfujiwara/tosho-kanri-system/internal/validator"
)

// Loan status identifiers as stored in loans.csv. The stored schema is
// language-neutral; display labels live in the handler layer.
const (
	StatusLoaned   = "LOANED"
	StatusReturned = "RETURNED"
)

// The Loan struct contains the data fields for a loan transaction.
// All dates use the YYYY-MM-DD storage format. ReturnDate is empty
// until the loan is returned.
type Loan struct {
	LoanID       string
	UserID       string
	ISBN         string
	CheckoutDate string
	DueDate      string
	ReturnDate   string
	Status       string
}

// IsLoaned returns true while the loan has not been returned.
func (l *Loan) IsLoaned() bool {
	return l.Status == StatusLoaned
}

// IsOverdue reports whether the loan is active and past its due date.
// YYYY-MM-DD strings compare in calendar order, so a plain string
// comparison is exact: due yesterday is overdue, due today is not.
func (l *Loan) IsOverdue(today string) bool {
	if l.Status == StatusReturned {
		return false
	}
	return today > l.DueDate
}

// DaysOverdue returns the calendar-day difference between today and the
// due date, or 0 when the loan is not overdue.
func (l *Loan) DaysOverdue(today string) int {
	if !l.IsOverdue(today) {
		return 0
	}
	t, err := time.Parse(validator.DateLayout, today)
	if err != nil {
		return 0
	}
	due, err := time.Parse(validator.DateLayout, l.DueDate)
	if err != nil {
		return 0
	}
	return int(t.Sub(due).Hours() / 24)
}

// The LoanSummary struct aggregates loan counts by state at a point
// in time. Overdue loans are also counted in Active.
type LoanSummary struct {
	Total    int
	Active   int
	Overdue  int
	Returned int
}

func ValidateLoan(v *validator.Validator, loan *Loan) {
	v.Check(validator.Matches(loan.LoanID, validator.LoanIDRX), "loan-id", "貸出IDの形式が正しくありません (L001のような形式)")
	v.Check(validator.Matches(loan.UserID, validator.UserIDRX), "user-id", "利用者IDの形式が正しくありません (U001のような形式)")
	v.Check(validator.ValidISBN(loan.ISBN), "isbn", "ISBNは13桁の数字で入力してください")
	v.Check(validator.ValidDate(loan.CheckoutDate), "checkout-date", "有効な日付を入力してください (YYYY-MM-DD)")
	v.Check(validator.ValidDate(loan.DueDate), "due-date", "有効な日付を入力してください (YYYY-MM-DD)")
	v.Check(loan.Status == StatusLoaned || loan.Status == StatusReturned, "status", "状態が不正です")
	if loan.Status == StatusReturned {
		v.Check(validator.ValidDate(loan.ReturnDate), "return-date", "有効な日付を入力してください (YYYY-MM-DD)")
	} else {
		v.Check(loan.ReturnDate == "", "return-date", "貸出中の返却日は空にしてください")
	}
}
