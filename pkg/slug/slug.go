// Package slug builds the human readable identifiers used in public event URLs.
package slug

import (
	"fmt"
	"strings"
	"time"

	gslug "github.com/gosimple/slug"
)

const (
	DateLayout   = "2006-01-02"
	suffixLength = 5
)

// ForEvent returns venue-location-YYYY-MM-DD-slot. The date is taken in UTC.
func ForEvent(venue, location string, date time.Time, slot string) string {
	return fmt.Sprintf("%s-%s-%s-%s",
		gslug.Make(venue),
		gslug.Make(location),
		date.UTC().Format(DateLayout),
		gslug.Make(slot),
	)
}

// Disambiguate appends the last characters of the event id to a colliding slug.
func Disambiguate(base, id string) string {
	if len(id) > suffixLength {
		id = id[len(id)-suffixLength:]
	}
	return base + "-" + id
}

// SpacedName turns a path segment such as "green-arena" back into "green arena".
func SpacedName(segment string) string {
	return strings.ReplaceAll(segment, "-", " ")
}

// SlotFromPath reverses the slot encoding used in legacy SEO links:
// "-" is a space, "_" is " - " and "." is ":".
func SlotFromPath(segment string) string {
	s := strings.ReplaceAll(segment, "-", " ")
	s = strings.ReplaceAll(s, "_", " - ")
	return strings.ReplaceAll(s, ".", ":")
}
