package service

import (
	"errors"

	"github.com/od-kfujiwara/tosho-kanri-system/data"
	"github.com/od-kfujiwara/tosho-kanri-system/data/dto"
	"github.com/od-kfujiwara/tosho-kanri-system/internal/validator"
	"github.com/od-kfujiwara/tosho-kanri-system/repository"
)

type users interface {
	AddUser(name, email string) (*data.User, error)
	GetUser(userID string) (*data.User, error)
	ListUsers() ([]*data.User, error)
	SearchUsersByName(name string) ([]*data.User, error)
	UpdateUser(userID string, requestBody dto.UpdateUserRequestBody) (*data.User, error)
	DeleteUser(userID string) error
}

// AddUser service registers a new user. The user ID is assigned
// sequentially and the registration date is today.
func (s *service) AddUser(name, email string) (*data.User, error) {
	userID, err := s.repo.NextUserID()
	if err != nil {
		return nil, err
	}
	user := &data.User{
		UserID:           userID,
		Name:             name,
		Email:            email,
		RegistrationDate: s.today(),
	}
	v := validator.New()
	if data.ValidateUser(v, user); !v.Valid() {
		return nil, s.failedValidation(v.Errors)
	}
	err = s.repo.CreateUser(user)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateRecord):
			return nil, ErrDuplicateRecord
		default:
			return nil, err
		}
	}
	s.logger.PrintInfo("user registered", map[string]string{"user_id": user.UserID})
	return user, nil
}

// GetUser service retrieves the details of a user by ID.
func (s *service) GetUser(userID string) (*data.User, error) {
	v := validator.New()
	if v.Check(validator.Matches(userID, validator.UserIDRX), "user-id", "利用者IDの形式が正しくありません"); !v.Valid() {
		return nil, s.failedValidation(v.Errors)
	}
	user, err := s.repo.GetUser(userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return user, nil
}

// ListUsers service retrieves every registered user.
func (s *service) ListUsers() ([]*data.User, error) {
	return s.repo.GetAllUsers()
}

// SearchUsersByName service retrieves users matching a name substring.
// No match is an error.
func (s *service) SearchUsersByName(name string) ([]*data.User, error) {
	results, err := s.repo.FindUsersByName(name)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, ErrRecordNotFound
	}
	return results, nil
}

// UpdateUser service updates the details of a specific user. Only
// fields set in the request body change; the ID and registration date
// are immutable.
func (s *service) UpdateUser(userID string, requestBody dto.UpdateUserRequestBody) (*data.User, error) {
	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}
	if requestBody.Name != nil {
		user.Name = *requestBody.Name
	}
	if requestBody.Email != nil {
		user.Email = *requestBody.Email
	}
	v := validator.New()
	if data.ValidateUser(v, user); !v.Valid() {
		return nil, s.failedValidation(v.Errors)
	}
	if err := s.repo.SaveUser(user); err != nil {
		return nil, err
	}
	s.logger.PrintInfo("user updated", map[string]string{"user_id": user.UserID})
	return user, nil
}

// DeleteUser service removes a user. Users with an active loan cannot
// be deleted.
func (s *service) DeleteUser(userID string) error {
	user, err := s.GetUser(userID)
	if err != nil {
		return err
	}
	loans, err := s.repo.GetLoansForUser(user.UserID)
	if err != nil {
		return err
	}
	for _, loan := range loans {
		if loan.IsLoaned() {
			return ErrDeleteConflict
		}
	}
	if err := s.repo.DeleteUser(user.UserID); err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return ErrRecordNotFound
		default:
			return err
		}
	}
	s.logger.PrintInfo("user deleted", map[string]string{"user_id": user.UserID})
	return nil
}
