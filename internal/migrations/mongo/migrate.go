package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	bookingsrepo "playverse/internal/bookings/repository"
	eventsrepo "playverse/internal/events/repository"
	"playverse/internal/migrations/mongo/validators"
	venuesrepo "playverse/internal/venues/repository"
	"playverse/pkg/logger"
)

var (
	EventsIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetName("slug_unique").SetUnique(true).SetSparse(true),
		},
		{Keys: bson.D{{Key: "participants.orderId", Value: 1}}},
		{Keys: bson.D{{Key: "sportsName", Value: 1}, {Key: "date", Value: 1}}},
		{Keys: bson.D{
			{Key: "venueName", Value: 1},
			{Key: "location", Value: 1},
			{Key: "date", Value: 1},
		}},
		{Keys: bson.D{{Key: "participants.paymentStatus", Value: 1}}},
	}

	VenuesIndexes = []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "name", Value: 1},
				{Key: "location", Value: 1},
				{Key: "sport", Value: 1},
			},
			Options: options.Index().SetName("name_location_sport_unique").SetUnique(true),
		},
	}

	RefundsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "eventId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "paymentId", Value: 1}}},
	}
)

type collectionDef struct {
	Indexes   []mongo.IndexModel
	Validator bson.M
}

func collections() map[string]collectionDef {
	return map[string]collectionDef{
		eventsrepo.CollectionName: {
			Indexes:   EventsIndexes,
			Validator: validators.EventValidator,
		},
		venuesrepo.CollectionName: {
			Indexes:   VenuesIndexes,
			Validator: validators.VenueValidator,
		},
		bookingsrepo.RefundsCollectionName: {
			Indexes:   RefundsIndexes,
			Validator: validators.RefundValidator,
		},
	}
}

func RunMigration(ctx context.Context, db *mongo.Database, log *logger.Logger) error {
	log.Info("Running Mongo migrations", "database", db.Name())

	for name, def := range collections() {
		if err := ensureCollection(ctx, db, name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		if err := ensureIndexes(ctx, db, name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
	}

	log.Info("All migrations applied successfully")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	log.Info("Collection already exists, updating validator", "collection", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	// Older documents may predate the schema, so a rejected collMod is not fatal.
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	coll := db.Collection(name)
	if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "count", len(models))
	return nil
}
