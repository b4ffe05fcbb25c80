package services

import (
	"golang.org/x/crypto/bcrypt"

	"discovery-api/apperrors"
	"discovery-api/utils"
)

// bcryptCost matches the cost existing hashes were produced with.
const bcryptCost = 10

// HashPassword hashes password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(bytes), err
}

// CheckPasswordHash compares password with hash
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// checkPasswordLength rejects passwords longer than bcrypt can hash, so they
// surface as validation errors instead of hashing failures.
func checkPasswordLength(password string) error {
	if len(password) > utils.MaxPasswordBytes {
		return apperrors.Validation(utils.PasswordTooLongMessage)
	}
	return nil
}
