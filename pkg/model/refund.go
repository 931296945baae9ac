package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Refund is one attempt to return a participant's payment through the gateway.
// The raw gateway answer is kept as-is for support investigations.
type Refund struct {
	ID            primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	EventID       primitive.ObjectID `json:"eventId" bson:"eventId"`
	ParticipantID primitive.ObjectID `json:"participantId" bson:"participantId"`
	PaymentID     string             `json:"paymentId" bson:"paymentId"`
	TokenID       string             `json:"tokenId" bson:"tokenId"`
	Amount        float64            `json:"amount" bson:"amount"`
	Accepted      bool               `json:"accepted" bson:"accepted"`
	Response      map[string]any     `json:"response,omitempty" bson:"response,omitempty"`
	Error         string             `json:"error,omitempty" bson:"error,omitempty"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
}
