package repository

import (
	"github.com/od-kfujiwara/tosho-kanri-system/repository/csvdb"
)

// Repository defines the app's repository layer. Each entity lives in
// its own CSV table under the configured data directory.
type Repository interface {
	books
	users
	loans
}

type repository struct {
	booksTable     *csvdb.Table
	usersTable     *csvdb.Table
	loansTable     *csvdb.Table
	sequencesTable *csvdb.Table
}

// New creates a new instance of Repository.
func New(db *csvdb.DB) Repository {
	return &repository{
		booksTable:     db.Table("books.csv", bookHeader),
		usersTable:     db.Table("users.csv", userHeader),
		loansTable:     db.Table("loans.csv", loanHeader),
		sequencesTable: db.Table("sequences.csv", sequenceHeader),
	}
}
