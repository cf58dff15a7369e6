package domain

import "regexp"

const minPasswordLength = 8

var (
	nicknameRe = regexp.MustCompile(`^[\w-]{3,50}$`)
	emailRe    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	urlRe      = regexp.MustCompile(`^https?://[^\s/$.?#].[^\s]*$`)
)

// ValidateNickname enforces the nickname invariant: 3–50 word characters or
// hyphens.
func ValidateNickname(nickname string) error {
	if !nicknameRe.MatchString(nickname) {
		return NewValidationError("nickname", "must be 3-50 characters of letters, digits, underscore or hyphen")
	}
	return nil
}

// ValidateEmail enforces basic email shape. Deliverability is not checked.
func ValidateEmail(email string) error {
	if !emailRe.MatchString(email) {
		return NewValidationError("email", "must be a valid email address")
	}
	return nil
}

// ValidateProfileURL enforces that a non-empty URL starts with http:// or
// https://. Empty values are allowed: clearing a URL is a valid update.
func ValidateProfileURL(field, url string) error {
	if url == "" {
		return nil
	}
	if !urlRe.MatchString(url) {
		return NewValidationError(field, "must be a valid http(s) URL")
	}
	return nil
}

// ValidatePassword enforces the minimum plaintext password length. Hashing
// happens after this check, never before.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return NewValidationError("password", "must be at least 8 characters")
	}
	return nil
}
