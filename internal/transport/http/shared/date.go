package shared

import "time"

const dateOnly = "2006-01-02"

// ParseDate reads the two date shapes the API accepts: bare YYYY-MM-DD for
// period bounds and payout ranges, or a full RFC3339 timestamp. An empty
// string parses to the zero time so callers can treat the field as optional.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if parsed, err := time.Parse(dateOnly, value); err == nil {
		return parsed, nil
	}
	return time.Parse(time.RFC3339, value)
}
