package model

// BookingRequest is a player's request to reserve slots on an event.
type BookingRequest struct {
	Name       string     `json:"name" validate:"max=100"`
	Phone      string     `json:"phone"`
	SkillLevel SkillLevel `json:"skillLevel" validate:"max=50"`
	// Quantity defaults to one slot when omitted.
	Quantity  *int   `json:"quantity,omitempty"`
	Email     string `json:"email,omitempty" validate:"omitempty,email"`
	ClientURL string `json:"clientUrl,omitempty" validate:"omitempty,url,startswith=http"`
}

// Slots is the number of places the request asks for.
func (r *BookingRequest) Slots() int {
	if r.Quantity == nil {
		return 1
	}
	return *r.Quantity
}
