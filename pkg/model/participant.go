package model

import (
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentSuccess PaymentStatus = "success"
	PaymentFailed  PaymentStatus = "failed"
)

type SkillLevel string

const (
	SkillBeginner     SkillLevel = "beginner"
	SkillIntermediate SkillLevel = "intermediate"
	SkillAdvanced     SkillLevel = "advanced"
)

type Participant struct {
	ID            primitive.ObjectID `json:"_id" bson:"_id"`
	Name          string             `json:"name" bson:"name"`
	Phone         string             `json:"phone" bson:"phone"`
	SkillLevel    SkillLevel         `json:"skillLevel" bson:"skillLevel"`
	PaymentStatus PaymentStatus      `json:"paymentStatus" bson:"paymentStatus"`
	OrderID       string             `json:"orderId" bson:"orderId"`
	PaymentID     string             `json:"paymentId,omitempty" bson:"paymentId,omitempty"`
	BookingDate   *time.Time         `json:"bookingDate,omitempty" bson:"bookingDate,omitempty"`
	Amount        float64            `json:"amount" bson:"amount"`
	Quantity      int                `json:"quantity" bson:"quantity"`
	ClientURL     string             `json:"clientUrl,omitempty" bson:"clientUrl,omitempty"`
}

// ErrIllegalTransition is returned for any status change other than
// pending -> success and pending -> failed.
var ErrIllegalTransition = errors.New("illegal payment status transition")

// Transition validates a payment status change. Re-applying the current
// status is a no-op and reports changed=false.
func Transition(from, to PaymentStatus) (changed bool, err error) {
	if from == to {
		return false, nil
	}
	if from == PaymentPending && (to == PaymentSuccess || to == PaymentFailed) {
		return true, nil
	}
	return false, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
}

// IsTerminal reports whether no further transition is possible.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentSuccess || s == PaymentFailed
}
