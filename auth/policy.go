// Package auth rates candidate master passwords. Nothing here blocks a
// choice: the store accepts any secret, weak ones get flagged.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	zxcvbn "github.com/nbutton23/zxcvbn-go"
)

const specialChars = "!\"#$%&'()*+,-./:;<=>?@[\\]^_{|}~`"

// MinStrengthScore is the zxcvbn score (0..4) below which a password is
// reported as weak.
const MinStrengthScore = 3

// ValidateMasterPassword applies the strict master password policy.
func ValidateMasterPassword(pw string) error {
	if len(pw) < 12 {
		return errors.New("password must be at least 12 characters long")
	}
	if !hasUpper(pw) {
		return errors.New("password must include an uppercase letter")
	}
	if !hasDigit(pw) {
		return errors.New("password must include a digit")
	}
	if !hasSpecial(pw) {
		return errors.New("password must include a special character")
	}
	return nil
}

// StrengthScore rates pw from 0 (guessable) to 4 (strong).
func StrengthScore(pw string) int {
	return zxcvbn.PasswordStrength(pw, nil).Score
}

// CheckMasterPassword returns advisory warnings for a candidate master
// password: policy violations, denylist hits and weak strength scores.
// An empty slice means no complaints.
func CheckMasterPassword(pw string) []string {
	if pw == "" {
		return []string{"master password is empty"}
	}

	var warnings []string
	if err := ValidateMasterPassword(pw); err != nil {
		warnings = append(warnings, err.Error())
	}
	if IsCommonPassword(pw) {
		warnings = append(warnings, "this is one of the most common passwords")
	}
	if score := StrengthScore(pw); score < MinStrengthScore {
		warnings = append(warnings, fmt.Sprintf("strength score %d/4, consider a longer passphrase", score))
	}
	return warnings
}

func hasUpper(s string) bool {
	for _, r := range s {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}

func hasDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func hasSpecial(s string) bool {
	for _, r := range s {
		if strings.ContainsRune(specialChars, r) {
			return true
		}
	}
	return false
}
