package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	venueserrors "playverse/internal/venues/errors"
	"playverse/pkg/config"
	mongotx "playverse/pkg/db/mongo"
	"playverse/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Venues"
)

type mongoVenueRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

type VenueRepository interface {
	Create(ctx context.Context, v *model.Venue) error
	FindByID(ctx context.Context, id string) (*model.Venue, error)
	FindAll(ctx context.Context) ([]*model.Venue, error)
	Update(ctx context.Context, id string, updates *model.VenueUpdate) (*model.Venue, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) (int64, error)

	// FindMatching returns nil without error when no venue matches.
	FindMatching(ctx context.Context, name, location, sport string) (*model.Venue, error)
}

func NewMongoVenueRepository(cfg *config.Config) VenueRepository {
	return &mongoVenueRepository{
		cfg:        cfg,
		collection: cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(CollectionName),
	}
}

func parseID(id string) (primitive.ObjectID, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %s", venueserrors.ErrInvalidID, id)
	}
	return objectID, nil
}

func (r *mongoVenueRepository) Create(ctx context.Context, v *model.Venue) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	v.CreatedAt = now
	v.UpdatedAt = now
	if v.Amenities == nil {
		v.Amenities = []string{}
	}

	result, err := r.collection.InsertOne(ctx, v)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return venueserrors.ErrDuplicate
		}
		return fmt.Errorf("failed to create venue: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		v.ID = oid
	}
	return nil
}

func (r *mongoVenueRepository) FindByID(ctx context.Context, id string) (*model.Venue, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var v model.Venue
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&v); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", venueserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find venue: %w", err)
	}
	return &v, nil
}

func (r *mongoVenueRepository) FindAll(ctx context.Context) ([]*model.Venue, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query venues: %w", err)
	}
	defer cursor.Close(ctx)

	venues := []*model.Venue{}
	if err := cursor.All(ctx, &venues); err != nil {
		return nil, fmt.Errorf("failed to decode venues: %w", err)
	}
	return venues, nil
}

func (r *mongoVenueRepository) Update(ctx context.Context, id string, u *model.VenueUpdate) (*model.Venue, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	set := bson.M{"updatedAt": time.Now().UTC().Truncate(time.Millisecond)}
	if u.Name != nil {
		set["name"] = *u.Name
	}
	if u.Location != nil {
		set["location"] = *u.Location
	}
	if u.Sport != nil {
		set["sport"] = *u.Sport
	}
	if u.ImageURL != nil {
		set["imageUrl"] = *u.ImageURL
	}
	if u.Description != nil {
		set["description"] = *u.Description
	}
	if u.GeneralInstructions != nil {
		set["generalInstructions"] = *u.GeneralInstructions
	}
	if u.Amenities != nil {
		set["amenities"] = *u.Amenities
	}
	if u.MapURL != nil {
		set["mapUrl"] = *u.MapURL
	}

	var v model.Venue
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, bson.M{"$set": set}, opts).Decode(&v)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, fmt.Errorf("%w: %s", venueserrors.ErrNotFound, id)
		case mongo.IsDuplicateKeyError(err):
			return nil, venueserrors.ErrDuplicate
		}
		return nil, fmt.Errorf("failed to update venue: %w", err)
	}
	return &v, nil
}

func (r *mongoVenueRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := parseID(id)
	if err != nil {
		return err
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete venue: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", venueserrors.ErrNotFound, id)
	}
	return nil
}

// DeleteAll empties the catalogue. Only the maintenance job calls it.
func (r *mongoVenueRepository) DeleteAll(ctx context.Context) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to delete venues: %w", err)
	}
	return result.DeletedCount, nil
}

func exactFold(value string) primitive.Regex {
	return primitive.Regex{
		Pattern: "^" + regexp.QuoteMeta(strings.TrimSpace(value)) + "$",
		Options: "i",
	}
}

func (r *mongoVenueRepository) FindMatching(ctx context.Context, name, location, sport string) (*model.Venue, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"name":     exactFold(name),
		"location": exactFold(location),
		"sport":    exactFold(sport),
	}

	var v model.Venue
	if err := r.collection.FindOne(ctx, filter).Decode(&v); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to match venue: %w", err)
	}
	return &v, nil
}
