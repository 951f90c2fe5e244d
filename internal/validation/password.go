// Package validation provides input validation utilities
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

const (
	MinPasswordLength = 8
	MaxUsernameLength = 150
	MaxEmailLength    = 254

	// maxSimilarity is the quick-ratio above which a password counts as too close to a user attribute.
	maxSimilarity = 0.7
)

var (
	usernameRegex  = regexp.MustCompile(`^[\w.@+-]+$`)
	emailRegex     = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9\-]+(\.[a-zA-Z0-9\-]+)*\.[a-zA-Z]{2,}$`)
	attrSplitRegex = regexp.MustCompile(`\W+`)
)

// Errors collects every rule a value failed, in rule order.
type Errors []string

func (e Errors) Error() string {
	return strings.Join(e, " ")
}

// ValidatePassword checks a password against the length, numeric, common-password and
// similarity rules. attrs are user attributes (username, email) the password must not resemble.
// The returned error is an Errors value listing every failed rule.
func ValidatePassword(password string, attrs ...string) error {
	var errs Errors

	if len([]rune(password)) < MinPasswordLength {
		errs = append(errs, fmt.Sprintf("This password is too short. It must contain at least %d characters.", MinPasswordLength))
	}

	if isCommonPassword(password) {
		errs = append(errs, "This password is too common.")
	}

	if password != "" && strings.IndexFunc(password, func(r rune) bool { return !unicode.IsDigit(r) }) == -1 {
		errs = append(errs, "This password is entirely numeric.")
	}

	if name, ok := similarAttribute(password, attrs); ok {
		errs = append(errs, fmt.Sprintf("The password is too similar to the %s.", name))
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ValidateUsername checks if a username meets requirements
func ValidateUsername(username string) error {
	if username == "" {
		return errors.New("This field is required.")
	}

	if len([]rune(username)) > MaxUsernameLength {
		return fmt.Errorf("Ensure this value has at most %d characters (it has %d).", MaxUsernameLength, len([]rune(username)))
	}

	if !usernameRegex.MatchString(username) {
		return errors.New("Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
	}

	return nil
}

// ValidateEmail checks basic email format
func ValidateEmail(email string) error {
	if len(email) > MaxEmailLength {
		return fmt.Errorf("Ensure this value has at most %d characters (it has %d).", MaxEmailLength, len(email))
	}

	if !emailRegex.MatchString(email) {
		return errors.New("Enter a valid email address.")
	}

	return nil
}

// similarAttribute reports the first attribute (or a \W-separated part of it) the password resembles.
// Attributes are passed as "label=value" or a bare value, which is labelled "username".
func similarAttribute(password string, attrs []string) (string, bool) {
	pw := strings.ToLower(password)
	for _, attr := range attrs {
		label, value := "username", attr
		if k, v, ok := strings.Cut(attr, "="); ok {
			label, value = k, v
		}
		if value == "" {
			continue
		}
		parts := append(attrSplitRegex.Split(value, -1), value)
		for _, part := range parts {
			if part == "" {
				continue
			}
			if quickRatio(pw, strings.ToLower(part)) >= maxSimilarity {
				return label, true
			}
		}
	}
	return "", false
}

// quickRatio is an upper bound on the similarity of a and b: twice the size of the
// multiset intersection of their runes over their combined length.
func quickRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}

	avail := make(map[rune]int, len(rb))
	for _, r := range rb {
		avail[r]++
	}
	matches := 0
	for _, r := range ra {
		if avail[r] > 0 {
			avail[r]--
			matches++
		}
	}
	return 2 * float64(matches) / float64(total)
}
