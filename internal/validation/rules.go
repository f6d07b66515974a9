package validation

import (
	"fmt"
	"regexp"
	"time"

	"critique/internal/models"
)

const (
	maxUsernameLen = 150
	maxSlugLen     = 50
)

var (
	slugRegex     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
	usernameRegex = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)
)

// Now is the clock used by year checks.
var Now = time.Now

// ValidateSlug checks the URL-safe identifier used by genres and categories.
func ValidateSlug(slug string) error {
	if slug == "" {
		return fmt.Errorf("slug is required")
	}
	if len(slug) > maxSlugLen {
		return fmt.Errorf("slug must be at most %d characters", maxSlugLen)
	}
	if !slugRegex.MatchString(slug) {
		return fmt.Errorf("slug may contain only letters, numbers, hyphens and underscores")
	}
	return nil
}

// ValidateUsername applies the reserved-name and charset rules in that order.
func ValidateUsername(username string) error {
	if models.IsReservedUsername(username) {
		return fmt.Errorf("username %q is not allowed", models.ReservedUsername)
	}
	if len([]rune(username)) > maxUsernameLen {
		return fmt.Errorf("username must be at most %d characters", maxUsernameLen)
	}
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username may contain only letters, digits and @/./+/-/_")
	}
	return nil
}

// ValidateYear rejects years after the current calendar year.
func ValidateYear(year int) error {
	if current := Now().Year(); year > current {
		return fmt.Errorf("year cannot be later than %d", current)
	}
	return nil
}
