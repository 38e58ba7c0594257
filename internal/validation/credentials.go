// Package validation provides input validation utilities
package validation

import (
	"unicode/utf8"

	"lireddit/internal/models"
)

// minCredentialLength is counted in characters, not bytes.
const minCredentialLength = 3

// Field error messages returned to clients.
const (
	MsgUsernameTooShort = "username length must be greater 2"
	MsgPasswordTooShort = "password length must be greater 2"
	MsgUsernameTaken    = "already taken"
)

// ValidateCredentials checks registration input. Only the first failing rule
// is reported, username before password.
func ValidateCredentials(username, password string) []models.FieldError {
	if utf8.RuneCountInString(username) < minCredentialLength {
		return []models.FieldError{{Field: "username", Message: MsgUsernameTooShort}}
	}
	if fe := ValidatePassword(password); fe != nil {
		return []models.FieldError{*fe}
	}
	return nil
}

// ValidatePassword applies the password length rule on its own.
func ValidatePassword(password string) *models.FieldError {
	if utf8.RuneCountInString(password) < minCredentialLength {
		return &models.FieldError{Field: "password", Message: MsgPasswordTooShort}
	}
	return nil
}

// FieldErrorFromStorage maps a unique constraint violation to a username
// field error. Any other error is not handled here.
func FieldErrorFromStorage(err error) (*models.FieldError, bool) {
	if err == nil || !models.IsConflict(err) {
		return nil, false
	}
	return &models.FieldError{Field: "username", Message: MsgUsernameTaken}, true
}
