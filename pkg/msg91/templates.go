package msg91

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout renders dates as DD-MM-YYYY in message bodies.
const DateLayout = "02-01-2006"

// EventDetails is the event data rendered into templates.
type EventDetails struct {
	ID         string
	Name       string
	VenueName  string
	SportsName string
	Location   string
	Slot       string
	Date       time.Time
	VenueImage string
}

type Contact struct {
	Name  string
	Phone string
}

// Templates holds the template names and static values for each message kind.
type Templates struct {
	BroadcastNamespace   string
	ConfirmationTemplate string
	CancellationTemplate string
	ConfirmationLinkBase string
	DefaultHeaderImage   string
	ThresholdNamespace   string
	ThresholdTemplate    string
}

func (t Templates) headerImage(e EventDetails) string {
	if e.VenueImage != "" {
		return e.VenueImage
	}
	return t.DefaultHeaderImage
}

func displayName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "Player"
	}
	return name
}

// Confirmation builds the per-participant game confirmation message.
func (t Templates) Confirmation(e EventDetails, to []Contact) Template {
	date := e.Date.Format(DateLayout)
	recipients := make([]Recipient, 0, len(to))
	for _, c := range to {
		recipients = append(recipients, Recipient{
			To: []string{c.Phone},
			Components: map[string]Component{
				"header_1": Image(t.headerImage(e)),
				"body_1":   Text(displayName(c.Name)),
				"body_2":   Text(e.Name),
				"body_3":   Text(e.VenueName),
				"body_4":   Text(e.SportsName),
				"body_5":   Text(date),
				"body_6":   Text(e.Slot),
				"body_7":   Text(e.Location),
				"button_1": URLButton(t.ConfirmationLinkBase + e.ID),
			},
		})
	}
	return Template{Name: t.ConfirmationTemplate, Namespace: t.BroadcastNamespace, Recipients: recipients}
}

func (t Templates) Cancellation(e EventDetails, to []Contact) Template {
	date := e.Date.Format(DateLayout)
	recipients := make([]Recipient, 0, len(to))
	for _, c := range to {
		recipients = append(recipients, Recipient{
			To: []string{c.Phone},
			Components: map[string]Component{
				"header_1": Image(t.headerImage(e)),
				"body_1":   Text(displayName(c.Name)),
				"body_2":   Text(e.Name),
				"body_3":   Text(e.VenueName),
				"body_4":   Text(e.SportsName),
				"body_5":   Text(date),
				"body_6":   Text(e.Slot),
			},
		})
	}
	return Template{Name: t.CancellationTemplate, Namespace: t.BroadcastNamespace, Recipients: recipients}
}

// Threshold builds the admin alert sent when an event reaches an occupancy milestone.
func (t Templates) Threshold(adminPhone, label, eventURL string, e EventDetails, booked []Contact) Template {
	names := make([]string, 0, len(booked))
	phones := make([]string, 0, len(booked))
	for _, c := range booked {
		names = append(names, orNA(c.Name))
		phones = append(phones, orNA(c.Phone))
	}

	return Template{
		Name:      t.ThresholdTemplate,
		Namespace: t.ThresholdNamespace,
		Recipients: []Recipient{{
			To: []string{adminPhone},
			Components: map[string]Component{
				"body_1": Text(e.Date.Format(DateLayout)),
				"body_2": Text(e.Slot),
				"body_3": Text(e.VenueName),
				"body_4": Text(label),
				"body_5": Text(joinOrNA(names)),
				"body_6": Text(eventURL),
				"body_7": Text(joinOrNA(phones)),
			},
		}},
	}
}

func orNA(v string) string {
	if v == "" {
		return "N/A"
	}
	return v
}

func joinOrNA(values []string) string {
	if len(values) == 0 {
		return "N/A"
	}
	return strings.Join(values, ", ")
}

// EventURL is the public page of an event.
func EventURL(base, eventID string) string {
	return fmt.Sprintf("%s/event/%s", strings.TrimRight(base, "/"), eventID)
}
