package auth

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// PasswordValidator checks a candidate password. The username is passed so
// validators can reject passwords derived from it.
type PasswordValidator interface {
	Validate(password, username string) error
}

// PasswordValidatorFunc adapts a plain function to PasswordValidator.
type PasswordValidatorFunc func(password, username string) error

func (f PasswordValidatorFunc) Validate(password, username string) error {
	return f(password, username)
}

// PasswordPolicy runs its validators in order and reports the first failure
// as a validation error on the password field.
type PasswordPolicy []PasswordValidator

func (p PasswordPolicy) Check(password, username string) error {
	for _, v := range p {
		if err := v.Validate(password, username); err != nil {
			return fieldError("password", err.Error())
		}
	}
	return nil
}

// DefaultPasswordPolicy rejects passwords similar to the username, shorter
// than minLen, commonly used or entirely numeric.
func DefaultPasswordPolicy(minLen int) PasswordPolicy {
	return PasswordPolicy{
		PasswordValidatorFunc(notSimilarToUsername),
		MinLength(minLen),
		PasswordValidatorFunc(notCommon),
		PasswordValidatorFunc(notNumeric),
	}
}

func MinLength(n int) PasswordValidator {
	return PasswordValidatorFunc(func(password, _ string) error {
		if utf8.RuneCountInString(password) < n {
			return fmt.Errorf("this password is too short. It must contain at least %d characters.", n)
		}
		return nil
	})
}

var errNumericPassword = errors.New("this password is entirely numeric.")

func notNumeric(password, _ string) error {
	for _, r := range password {
		if !unicode.IsDigit(r) {
			return nil
		}
	}
	return errNumericPassword
}

var errSimilarPassword = errors.New("the password is too similar to the username.")

// usernames shorter than this are not checked for similarity
const minSimilarityLen = 3

func notSimilarToUsername(password, username string) error {
	p, u := strings.ToLower(password), strings.ToLower(username)
	if len(u) < minSimilarityLen || len(p) < minSimilarityLen {
		return nil
	}
	if strings.Contains(p, u) || strings.Contains(u, p) {
		return errSimilarPassword
	}
	return nil
}

var errCommonPassword = errors.New("this password is too common.")

var commonPasswords = map[string]struct{}{
	"password": {}, "password1": {}, "password123": {}, "12345678": {},
	"123456789": {}, "1234567890": {}, "qwerty123": {}, "qwertyuiop": {},
	"iloveyou": {}, "sunshine": {}, "football": {}, "baseball": {},
	"welcome1": {}, "admin123": {}, "letmein1": {}, "princess": {},
	"1q2w3e4r": {}, "abc12345": {}, "trustno1": {}, "superman": {},
	"starwars": {}, "passw0rd": {}, "11111111": {}, "00000000": {},
}

func notCommon(password, _ string) error {
	if _, ok := commonPasswords[strings.ToLower(password)]; ok {
		return errCommonPassword
	}
	return nil
}
