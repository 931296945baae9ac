package repository

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	bookingserrors "playverse/internal/bookings/errors"
	"playverse/pkg/client"
	"playverse/pkg/config"
	"playverse/pkg/logger"
	"playverse/pkg/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// These tests talk to a real MongoDB and are skipped unless MONGO_TEST_URI is set,
// e.g. MONGO_TEST_URI=mongodb://localhost:27017 go test ./internal/bookings/...
func newMongoRepo(t *testing.T) (*mongoBookingRepository, *mongo.Database) {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mc, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("failed to connect to MongoDB: %v", err)
	}
	if err := mc.Ping(ctx, nil); err != nil {
		t.Fatalf("failed to ping MongoDB: %v", err)
	}

	dbName := "playverse_test_" + primitive.NewObjectID().Hex()
	cfg := &config.Config{
		Log:               logger.Discard(),
		Client:            &client.Client{Mongo: mc},
		MongoDatabaseName: dbName,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      5 * time.Second,
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := mc.Database(dbName).Drop(ctx); err != nil {
			t.Logf("warning: failed to drop %s: %v", dbName, err)
		}
		_ = mc.Disconnect(ctx)
	})

	return NewMongoBookingRepository(cfg).(*mongoBookingRepository), mc.Database(dbName)
}

func seedEvent(t *testing.T, db *mongo.Database, participants ...model.Participant) primitive.ObjectID {
	t.Helper()
	e := model.Event{
		ID:                primitive.NewObjectID(),
		Name:              "Sunday Football",
		Date:              time.Date(2025, 5, 4, 0, 0, 0, 0, time.UTC),
		Slot:              "6-7 PM",
		Price:             250,
		ParticipantsLimit: 4,
		Participants:      participants,
	}
	if e.Participants == nil {
		e.Participants = []model.Participant{}
	}
	if _, err := db.Collection(EventsCollectionName).InsertOne(context.Background(), e); err != nil {
		t.Fatalf("failed to seed event: %v", err)
	}
	return e.ID
}

func pending(orderID string, quantity int) model.Participant {
	return model.Participant{
		ID:            primitive.NewObjectID(),
		Name:          "Asha",
		Phone:         "9876543210",
		PaymentStatus: model.PaymentPending,
		OrderID:       orderID,
		Quantity:      quantity,
	}
}

func TestMongo_ConfirmIsConditionedOnPending(t *testing.T) {
	repo, db := newMongoRepo(t)
	ctx := context.Background()
	eventID := seedEvent(t, db, pending("txn-1", 2))

	c := Confirmation{PaymentID: "pay-1", Amount: 500, BookingDate: time.Now().UTC()}
	if err := repo.ConfirmParticipant(ctx, eventID, "txn-1", 2, c); err != nil {
		t.Fatalf("first confirm: %v", err)
	}
	err := repo.ConfirmParticipant(ctx, eventID, "txn-1", 2, c)
	if !errors.Is(err, bookingserrors.ErrStaleParticipant) {
		t.Fatalf("second confirm error = %v, want ErrStaleParticipant", err)
	}
	if err := repo.FailParticipant(ctx, eventID, "txn-1", ""); !errors.Is(err, bookingserrors.ErrStaleParticipant) {
		t.Fatalf("fail after success error = %v, want ErrStaleParticipant", err)
	}

	e, err := repo.FindEventByOrderID(ctx, "txn-1")
	if err != nil {
		t.Fatalf("FindEventByOrderID: %v", err)
	}
	if e.CurrentParticipants != 2 {
		t.Errorf("currentParticipants = %d, want 2", e.CurrentParticipants)
	}
	p := e.Participants[0]
	if p.PaymentStatus != model.PaymentSuccess || p.PaymentID != "pay-1" || p.Amount != 500 {
		t.Errorf("participant = %+v", p)
	}
}

func TestMongo_RecordPaymentIDKeepsStatus(t *testing.T) {
	repo, db := newMongoRepo(t)
	ctx := context.Background()
	failed := pending("txn-2", 1)
	failed.PaymentStatus = model.PaymentFailed
	eventID := seedEvent(t, db, failed)

	if err := repo.RecordPaymentID(ctx, eventID, "txn-2", model.PaymentFailed, "pay-2"); err != nil {
		t.Fatalf("RecordPaymentID: %v", err)
	}

	e, err := repo.FindEvent(ctx, eventID.Hex())
	if err != nil {
		t.Fatalf("FindEvent: %v", err)
	}
	if e.Participants[0].PaymentStatus != model.PaymentFailed || e.Participants[0].PaymentID != "pay-2" {
		t.Errorf("participant = %+v", e.Participants[0])
	}
}

func TestMongo_ThresholdClaimedOnce(t *testing.T) {
	repo, db := newMongoRepo(t)
	ctx := context.Background()
	eventID := seedEvent(t, db)

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			won, err := repo.ClaimThreshold(ctx, eventID, model.Threshold75)
			if err != nil {
				t.Errorf("ClaimThreshold: %v", err)
				return
			}
			if won {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("claims won = %d, want exactly 1", wins)
	}

	if err := repo.ReleaseThreshold(ctx, eventID, model.Threshold75); err != nil {
		t.Fatalf("ReleaseThreshold: %v", err)
	}
	won, err := repo.ClaimThreshold(ctx, eventID, model.Threshold75)
	if err != nil || !won {
		t.Fatalf("claim after release = %v, %v; want true", won, err)
	}
}

func TestMongo_UnknownEvent(t *testing.T) {
	repo, _ := newMongoRepo(t)
	ctx := context.Background()

	if _, err := repo.FindEvent(ctx, "not-an-id"); !errors.Is(err, bookingserrors.ErrInvalidID) {
		t.Errorf("invalid id error = %v", err)
	}
	if err := repo.AppendParticipant(ctx, primitive.NewObjectID(), pending("txn-3", 1)); !errors.Is(err, bookingserrors.ErrEventNotFound) {
		t.Errorf("append to missing event error = %v", err)
	}
}
