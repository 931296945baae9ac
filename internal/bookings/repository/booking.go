package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "playverse/internal/bookings/errors"
	"playverse/pkg/config"
	mongotx "playverse/pkg/db/mongo"
	"playverse/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	EventsCollectionName  = "Events"
	RefundsCollectionName = "Refunds"
)

// Confirmation is what a successful payment writes onto the participant.
type Confirmation struct {
	PaymentID   string
	Amount      float64
	BookingDate time.Time
}

// BookingRepository owns the participant sub-documents of events, the
// notification flags and the refund ledger. Every participant write is
// conditioned on the participant's current status so that a write based on
// a stale read matches nothing instead of overwriting a newer state.
type BookingRepository interface {
	FindEvent(ctx context.Context, eventID string) (*model.Event, error)
	FindEventByOrderID(ctx context.Context, orderID string) (*model.Event, error)

	AppendParticipant(ctx context.Context, eventID primitive.ObjectID, p model.Participant) error
	ConfirmParticipant(ctx context.Context, eventID primitive.ObjectID, orderID string, quantity int, c Confirmation) error
	FailParticipant(ctx context.Context, eventID primitive.ObjectID, orderID, paymentID string) error
	RecordPaymentID(ctx context.Context, eventID primitive.ObjectID, orderID string, status model.PaymentStatus, paymentID string) error

	// ClaimThreshold flips the notification flag from unset to set and
	// reports whether this caller won it.
	ClaimThreshold(ctx context.Context, eventID primitive.ObjectID, t model.Threshold) (bool, error)
	ReleaseThreshold(ctx context.Context, eventID primitive.ObjectID, t model.Threshold) error

	InsertRefund(ctx context.Context, refund *model.Refund) error

	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoBookingRepository struct {
	cfg       *config.Config
	events    *mongo.Collection
	refunds   *mongo.Collection
	txManager mongotx.TransactionManager
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:       cfg,
		events:    db.Collection(EventsCollectionName),
		refunds:   db.Collection(RefundsCollectionName),
		txManager: mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func parseID(id string) (primitive.ObjectID, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}
	return objectID, nil
}

func (r *mongoBookingRepository) findOne(ctx context.Context, filter bson.M, key string) (*model.Event, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var e model.Event
	if err := r.events.FindOne(ctx, filter).Decode(&e); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", bookingserrors.ErrEventNotFound, key)
		}
		return nil, fmt.Errorf("failed to find event: %w", err)
	}
	return &e, nil
}

func (r *mongoBookingRepository) FindEvent(ctx context.Context, eventID string) (*model.Event, error) {
	objectID, err := parseID(eventID)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": objectID}, eventID)
}

func (r *mongoBookingRepository) FindEventByOrderID(ctx context.Context, orderID string) (*model.Event, error) {
	return r.findOne(ctx, bson.M{"participants.orderId": orderID}, orderID)
}

func (r *mongoBookingRepository) AppendParticipant(ctx context.Context, eventID primitive.ObjectID, p model.Participant) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.events.UpdateOne(ctx,
		bson.M{"_id": eventID},
		bson.M{
			"$push": bson.M{"participants": p},
			"$set":  bson.M{"updatedAt": time.Now().UTC().Truncate(time.Millisecond)},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to append participant: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", bookingserrors.ErrEventNotFound, eventID.Hex())
	}
	return nil
}

// updateParticipant applies update to the participant with orderID while it
// still holds the expected status.
func (r *mongoBookingRepository) updateParticipant(ctx context.Context, eventID primitive.ObjectID, orderID string, expected model.PaymentStatus, update bson.M) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{
		"_id": eventID,
		"participants": bson.M{"$elemMatch": bson.M{
			"orderId":       orderID,
			"paymentStatus": expected,
		}},
	}
	result, err := r.events.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update participant: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", bookingserrors.ErrStaleParticipant, orderID)
	}
	return nil
}

func (r *mongoBookingRepository) ConfirmParticipant(ctx context.Context, eventID primitive.ObjectID, orderID string, quantity int, c Confirmation) error {
	set := bson.M{
		"participants.$.paymentStatus": model.PaymentSuccess,
		"participants.$.bookingDate":   c.BookingDate,
		"participants.$.amount":        c.Amount,
		"updatedAt":                    time.Now().UTC().Truncate(time.Millisecond),
	}
	if c.PaymentID != "" {
		set["participants.$.paymentId"] = c.PaymentID
	}
	return r.updateParticipant(ctx, eventID, orderID, model.PaymentPending, bson.M{
		"$set": set,
		"$inc": bson.M{"currentParticipants": quantity},
	})
}

func (r *mongoBookingRepository) FailParticipant(ctx context.Context, eventID primitive.ObjectID, orderID, paymentID string) error {
	set := bson.M{
		"participants.$.paymentStatus": model.PaymentFailed,
		"updatedAt":                    time.Now().UTC().Truncate(time.Millisecond),
	}
	if paymentID != "" {
		set["participants.$.paymentId"] = paymentID
	}
	return r.updateParticipant(ctx, eventID, orderID, model.PaymentPending, bson.M{"$set": set})
}

// RecordPaymentID stores the gateway reference without changing the status.
func (r *mongoBookingRepository) RecordPaymentID(ctx context.Context, eventID primitive.ObjectID, orderID string, status model.PaymentStatus, paymentID string) error {
	return r.updateParticipant(ctx, eventID, orderID, status, bson.M{
		"$set": bson.M{"participants.$.paymentId": paymentID},
	})
}

func (r *mongoBookingRepository) ClaimThreshold(ctx context.Context, eventID primitive.ObjectID, t model.Threshold) (bool, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.events.UpdateOne(ctx,
		bson.M{"_id": eventID, t.Field(): bson.M{"$ne": true}},
		bson.M{"$set": bson.M{t.Field(): true}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to claim %s notification: %w", t.Label(), err)
	}
	return result.ModifiedCount == 1, nil
}

func (r *mongoBookingRepository) ReleaseThreshold(ctx context.Context, eventID primitive.ObjectID, t model.Threshold) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.events.UpdateOne(ctx,
		bson.M{"_id": eventID},
		bson.M{"$set": bson.M{t.Field(): false}},
	); err != nil {
		return fmt.Errorf("failed to release %s notification: %w", t.Label(), err)
	}
	return nil
}

func (r *mongoBookingRepository) InsertRefund(ctx context.Context, refund *model.Refund) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if refund.ID.IsZero() {
		refund.ID = primitive.NewObjectID()
	}
	if refund.CreatedAt.IsZero() {
		refund.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}
	if _, err := r.refunds.InsertOne(ctx, refund); err != nil {
		return fmt.Errorf("failed to record refund: %w", err)
	}
	return nil
}

func (r *mongoBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
