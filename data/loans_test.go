package data

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/od-kfujiwara/tosho-kanri-system/internal/validator"
)

func TestLoanOverdueBoundary(t *testing.T) {
	loan := &Loan{
		LoanID:       "L001",
		UserID:       "U001",
		ISBN:         "9784123456789",
		CheckoutDate: "2024-05-01",
		DueDate:      "2024-05-15",
		Status:       StatusLoaned,
	}

	assert.False(t, loan.IsOverdue("2024-05-15"), "due today is not overdue")
	assert.True(t, loan.IsOverdue("2024-05-16"), "due yesterday is overdue")
	assert.Equal(t, 0, loan.DaysOverdue("2024-05-15"))
	assert.Equal(t, 1, loan.DaysOverdue("2024-05-16"))
	assert.Equal(t, 20, loan.DaysOverdue("2024-06-04"))

	loan.Status = StatusReturned
	loan.ReturnDate = "2024-06-10"
	assert.False(t, loan.IsOverdue("2024-06-20"), "returned loans are never overdue")
	assert.Equal(t, 0, loan.DaysOverdue("2024-06-20"))
}

func TestValidateLoan(t *testing.T) {
	valid := Loan{
		LoanID:       "L010",
		UserID:       "U002",
		ISBN:         "9784123456789",
		CheckoutDate: "2024-05-01",
		DueDate:      "2024-05-15",
		Status:       StatusLoaned,
	}

	tests := []struct {
		name   string
		mutate func(*Loan)
		valid  bool
	}{
		{"valid active loan", func(l *Loan) {}, true},
		{"valid returned loan", func(l *Loan) {
			l.Status = StatusReturned
			l.ReturnDate = "2024-05-10"
		}, true},
		{"bad loan id", func(l *Loan) { l.LoanID = "X001" }, false},
		{"bad user id", func(l *Loan) { l.UserID = "U1" }, false},
		{"bad isbn", func(l *Loan) { l.ISBN = "1234" }, false},
		{"impossible due date", func(l *Loan) { l.DueDate = "2024-02-30" }, false},
		{"unknown status", func(l *Loan) { l.Status = "LOST" }, false},
		{"return date on active loan", func(l *Loan) { l.ReturnDate = "2024-05-10" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loan := valid
			tt.mutate(&loan)
			v := validator.New()
			ValidateLoan(v, &loan)
			assert.Equal(t, tt.valid, v.Valid(), "errors: %v", v.Errors)
		})
	}
}

func TestBookAvailability(t *testing.T) {
	book := &Book{TotalCopies: 3, LoanedCopies: 2}
	assert.Equal(t, 1, book.AvailableCopies())
	assert.True(t, book.IsAvailable())
	book.LoanedCopies = 3
	assert.False(t, book.IsAvailable())
}
