package utils

import (
	"errors"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

func CheckPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

var weakPasswords = map[string]struct{}{
	"111111": {}, "123456": {}, "123456789": {}, "12345678": {}, "1234567890": {},
	"password": {}, "password123": {}, "qwerty": {}, "abc123": {}, "000000": {},
	"654321": {}, "123123": {}, "888888": {}, "666666": {}, "555555": {},
	"admin": {}, "admin123": {}, "root": {}, "test": {}, "guest": {},
	"1q2w3e4r": {}, "qwertyuiop": {}, "asdfghjkl": {}, "zxcvbnm": {},
}

var (
	hasLetter = regexp.MustCompile(`[a-zA-Z]`)
	hasDigit  = regexp.MustCompile(`\d`)
)

// ValidatePassword enforces:
// - min 8 chars
// - at least 1 letter
// - at least 1 digit
// - not on the common-weak-password blocklist
func ValidatePassword(pw string) error {
	if len(pw) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	if !hasLetter.MatchString(pw) {
		return errors.New("password must contain a letter")
	}
	if !hasDigit.MatchString(pw) {
		return errors.New("password must contain a digit")
	}
	if _, weak := weakPasswords[strings.ToLower(pw)]; weak {
		return errors.New("password is too common")
	}
	return nil
}
