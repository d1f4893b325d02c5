// Package sanitize turns free-form names into identifiers the CI server accepts and
// masks secret values before they reach a terminal or an MCP client.
package sanitize

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// MaxIDLength is the longest identifier the CI server accepts.
const MaxIDLength = 225

var ErrInvalidID = errors.New("invalid identifier")

var (
	// Anything outside the accepted alphabet once uppercased.
	disallowed = regexp.MustCompile(`[^A-Z0-9_]`)

	validID = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)
)

// ID joins parts with underscores and normalises the result: dashes are dropped,
// spaces become underscores, letters are uppercased and any remaining character
// outside [A-Z0-9_] is removed.
//
// The result is never truncated. An identifier that does not start with a letter or
// exceeds MaxIDLength is an error, since cutting it short could make two builds collide.
func ID(parts ...string) (string, error) {
	joined := strings.Join(parts, "_")

	id := strings.ReplaceAll(joined, "-", "")
	id = strings.ReplaceAll(id, " ", "_")
	id = strings.ToUpper(id)
	id = disallowed.ReplaceAllString(id, "")

	if err := check(id); err != nil {
		return "", fmt.Errorf("%w: %q from %q", err, id, joined)
	}
	return id, nil
}

// Valid reports whether id satisfies the CI server's identifier rules.
func Valid(id string) bool {
	return check(id) == nil
}

func check(id string) error {
	if len(id) > MaxIDLength {
		return fmt.Errorf("%w: longer than %d characters", ErrInvalidID, MaxIDLength)
	}
	if !validID.MatchString(id) {
		return fmt.Errorf("%w: must start with a letter and contain only letters, digits and underscores", ErrInvalidID)
	}
	return nil
}

// Mask hides a secret, keeping only a length hint.
func Mask(secret string) string {
	if secret == "" {
		return ""
	}
	// CI server references are not secrets.
	if strings.HasPrefix(secret, "%") && strings.HasSuffix(secret, "%") {
		return secret
	}
	return fmt.Sprintf("****** (%d chars)", len(secret))
}
