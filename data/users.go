package data

import (
	"github.com/od-kfujiwara/tosho-kanri-system/internal/validator"
)

// The User struct contains the data fields for a registered library user.
type User struct {
	UserID           string
	Name             string
	Email            string
	RegistrationDate string
}

func ValidateUser(v *validator.Validator, user *User) {
	v.Check(validator.Matches(user.UserID, validator.UserIDRX), "id", "利用者IDの形式が正しくありません (U001のような形式)")
	v.Check(user.Name != "", "name", "氏名は必須です")
	v.Check(validator.Matches(user.Email, validator.EmailRX), "email", "有効なメールアドレスを入力してください")
	v.Check(validator.ValidDate(user.RegistrationDate), "registration-date", "有効な日付を入力してください (YYYY-MM-DD)")
}
