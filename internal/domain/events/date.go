package events

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/markusmobius/go-dateparser"
)

var ErrInvalidDate = errors.New("invalid event date")

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

var lenientConfig = &dateparser.Configuration{
	DefaultTimezone: time.UTC,
}

// ParseDate accepts ISO 8601 forms first and falls back to natural-language
// parsing. Values without a zone are read as UTC.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidDate)
	}

	for _, layout := range dateLayouts {
		if parsed, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return parsed.UTC(), nil
		}
	}

	parsed, err := dateparser.Parse(lenientConfig, value)
	if err != nil || parsed.Time.IsZero() {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return parsed.Time.UTC(), nil
}
