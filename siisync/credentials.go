package siisync

import (
	"regexp"
	"strings"
)

var rutPattern = regexp.MustCompile(`^[0-9]{8,9}$`)

type CredentialCheck struct {
	Valid    bool
	Problems []string
}

// ValidateCredentials checks the shape of the scraper identity/secret pair.
// Pure; runs before any network call so bad input fails fast.
func ValidateCredentials(rut string, clave string) CredentialCheck {
	var problems []string

	stripped := strings.NewReplacer(".", "", "-", "", " ", "").Replace(strings.TrimSpace(rut))
	if stripped == "" {
		problems = append(problems, "rut is required")
	} else if !rutPattern.MatchString(stripped) {
		problems = append(problems, "rut must be 8 or 9 digits")
	}

	if len(strings.TrimSpace(clave)) < 6 {
		problems = append(problems, "clave must be at least 6 characters")
	}

	return CredentialCheck{Valid: len(problems) == 0, Problems: problems}
}
