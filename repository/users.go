package repository

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/od-kfujiwara/tosho-kanri-system/data"
	"github.com/od-kfujiwara/tosho-kanri-system/repository/csvdb"
)

// Stored schema for users.csv.
var userHeader = []string{"UserID", "Name", "Email", "RegistrationDate"}

var userSeqRX = regexp.MustCompile(`^U(\d+)$`)

type users interface {
	GetAllUsers() ([]*data.User, error)
	GetUser(userID string) (*data.User, error)
	FindUsersByName(name string) ([]*data.User, error)
	CreateUser(user *data.User) error
	SaveUser(user *data.User) error
	DeleteUser(userID string) error
	NextUserID() (string, error)
}

// GetAllUsers retrieves every user record.
func (r *repository) GetAllUsers() ([]*data.User, error) {
	records, err := r.usersTable.ReadAll()
	if err != nil {
		return nil, err
	}
	users := make([]*data.User, 0, len(records))
	for _, rec := range records {
		users = append(users, userFromRecord(rec))
	}
	return users, nil
}

// GetUser retrieves a user record by its ID.
func (r *repository) GetUser(userID string) (*data.User, error) {
	users, err := r.GetAllUsers()
	if err != nil {
		return nil, err
	}
	for _, user := range users {
		if user.UserID == userID {
			return user, nil
		}
	}
	return nil, ErrRecordNotFound
}

// FindUsersByName retrieves users whose name contains the given
// substring, case-insensitively.
func (r *repository) FindUsersByName(name string) ([]*data.User, error) {
	users, err := r.GetAllUsers()
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(name)
	results := []*data.User{}
	for _, user := range users {
		if strings.Contains(strings.ToLower(user.Name), needle) {
			results = append(results, user)
		}
	}
	return results, nil
}

// CreateUser appends a new user record. It fails with
// ErrDuplicateRecord if the ID is already registered.
func (r *repository) CreateUser(user *data.User) error {
	return r.usersTable.Update(func(records []csvdb.Record) ([]csvdb.Record, error) {
		for _, rec := range records {
			if rec["UserID"] == user.UserID {
				return nil, ErrDuplicateRecord
			}
		}
		return append(records, userToRecord(user)), nil
	})
}

// SaveUser upserts a user record.
func (r *repository) SaveUser(user *data.User) error {
	return r.usersTable.Update(func(records []csvdb.Record) ([]csvdb.Record, error) {
		for i, rec := range records {
			if rec["UserID"] == user.UserID {
				records[i] = userToRecord(user)
				return records, nil
			}
		}
		return append(records, userToRecord(user)), nil
	})
}

// DeleteUser removes a user record by its ID.
func (r *repository) DeleteUser(userID string) error {
	return r.usersTable.Update(func(records []csvdb.Record) ([]csvdb.Record, error) {
		kept := records[:0]
		found := false
		for _, rec := range records {
			if rec["UserID"] == userID {
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

// NextUserID reserves the next sequential user ID, zero-padded to
// three digits. The sequence counter is persisted and only moves
// forward, so IDs freed by deletions never come back; the highest
// suffix on file acts as a floor for records that predate the counter.
func (r *repository) NextUserID() (string, error) {
	users, err := r.GetAllUsers()
	if err != nil {
		return "", err
	}
	maxID := 0
	for _, user := range users {
		if m := userSeqRX.FindStringSubmatch(user.UserID); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > maxID {
				maxID = n
			}
		}
	}
	n, err := r.nextSequence("user", maxID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("U%03d", n), nil
}

func userFromRecord(rec csvdb.Record) *data.User {
	return &data.User{
		UserID:           rec["UserID"],
		Name:             rec["Name"],
		Email:            rec["Email"],
		RegistrationDate: rec["RegistrationDate"],
	}
}

func userToRecord(user *data.User) csvdb.Record {
	return csvdb.Record{
		"UserID":           user.UserID,
		"Name":             user.Name,
		"Email":            user.Email,
		"RegistrationDate": user.RegistrationDate,
	}
}
