package utils

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode"
)

// ValidateEmail returns an error if the given email address is invalid.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("Email is required")
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		return fmt.Errorf("Valid email is required")
	}

	return nil
}

// ValidateSlug returns an error if the given slug is invalid.
func ValidateSlug(slug string) error {
	if slug == "" {
		return fmt.Errorf("Slug is required")
	}

	for _, r := range slug {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '_' {
			return fmt.Errorf("Slug can only contain letters, numbers, hyphens, and underscores")
		}
	}

	return nil
}
