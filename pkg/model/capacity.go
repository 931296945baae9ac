package model

// BookedSlots sums the quantity of participants whose payment succeeded.
// Pending and failed participants never hold capacity.
func (e *Event) BookedSlots() int {
	total := 0
	for _, p := range e.Participants {
		if p.PaymentStatus == PaymentSuccess {
			total += p.Quantity
		}
	}
	return total
}

func (e *Event) SlotsLeft() int {
	left := e.ParticipantsLimit - e.BookedSlots()
	if left < 0 {
		return 0
	}
	return left
}

// Occupancy is the booked share of the limit as a percentage.
func (e *Event) Occupancy() float64 {
	if e.ParticipantsLimit <= 0 {
		return 0
	}
	return float64(e.BookedSlots()*100) / float64(e.ParticipantsLimit)
}

// FilledRatio is the booked share of the limit in [0, 1], used to rank listings.
func (e *Event) FilledRatio() float64 {
	if e.ParticipantsLimit <= 0 {
		return 0
	}
	return float64(e.BookedSlots()) / float64(e.ParticipantsLimit)
}

func (e *Event) SuccessfulParticipants() []Participant {
	out := make([]Participant, 0, len(e.Participants))
	for _, p := range e.Participants {
		if p.PaymentStatus == PaymentSuccess {
			out = append(out, p)
		}
	}
	return out
}

// Threshold is a notification milestone on occupancy.
type Threshold int

const (
	Threshold75  Threshold = 75
	Threshold100 Threshold = 100
)

func (t Threshold) Label() string {
	if t == Threshold100 {
		return "100%"
	}
	return "75%"
}

// Field is the event document flag guarding the one-shot notification.
func (t Threshold) Field() string {
	if t == Threshold100 {
		return "notified100"
	}
	return "notified75"
}

func (t Threshold) Notified(e *Event) bool {
	if t == Threshold100 {
		return e.Notified100
	}
	return e.Notified75
}

// DueThresholds lists the milestones reached by the event that have not been announced yet.
func (e *Event) DueThresholds() []Threshold {
	if e.ParticipantsLimit <= 0 {
		return nil
	}
	booked := e.BookedSlots()
	var due []Threshold
	for _, t := range []Threshold{Threshold75, Threshold100} {
		if booked*100 >= int(t)*e.ParticipantsLimit && !t.Notified(e) {
			due = append(due, t)
		}
	}
	return due
}
