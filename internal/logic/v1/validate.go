package v1

import (
	"fmt"
	"net/url"

	"github.com/minhngo/wellness-sessions/internal/core/domain"
)

const (
	maxTitleLen = 255
	maxTagLen   = 50
)

// validateSession checks the fully merged session record before any write.
// Messages are per-field so the handler can return them as a 400 body.
func validateSession(s *domain.Session) *ValidationError {
	fields := map[string]string{}

	if s.Title == "" {
		fields["title"] = "This field is required."
	} else if len(s.Title) > maxTitleLen {
		fields["title"] = fmt.Sprintf("Ensure this field has no more than %d characters.", maxTitleLen)
	}

	if s.JSONFileURL == "" {
		fields["json_file_url"] = "This field is required."
	} else if !isValidURL(s.JSONFileURL) {
		fields["json_file_url"] = "Enter a valid URL."
	}

	for _, tag := range s.Tags {
		if tag == "" {
			fields["tags"] = "Tags must not be blank."
			break
		}
		if len(tag) > maxTagLen {
			fields["tags"] = fmt.Sprintf("Ensure tags have no more than %d characters.", maxTagLen)
			break
		}
	}

	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

func isValidURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
