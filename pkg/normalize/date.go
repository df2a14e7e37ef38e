package normalize

import (
	"strings"
	"time"
)

// alwaysOn is the vendor sentinel for a MAP window with no expiry.
const alwaysOn = "ALWAYS ON"

// dateLayouts are the calendar formats observed across vendor feeds.
var dateLayouts = []string{
	"1/2/2006",
	"01/02/2006",
	"2006-01-02",
	"1-2-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
}

// Date canonicalizes a MAP-window expiry cell. Empty input, the "ALWAYS ON"
// sentinel, and a bare "-" all mean "not date-bounded" and yield nil. A
// parseable calendar date yields the original (trimmed) text; anything else
// yields nil.
func Date(raw string) *string {
	trimmed := strings.TrimSpace(raw)
	upper := strings.ToUpper(trimmed)
	if upper == "" || upper == alwaysOn || upper == "-" {
		return nil
	}

	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, trimmed); err == nil {
			return &trimmed
		}
	}
	return nil
}
