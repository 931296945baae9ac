package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	eventserrors "playverse/internal/events/errors"
	"playverse/pkg/config"
	mongotx "playverse/pkg/db/mongo"
	"playverse/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Events"
)

// Counter names one of the broadcast counters kept on an event.
type Counter string

const (
	ConfirmationCounter Counter = "confirmationCount"
	CancellationCounter Counter = "cancellationCount"
)

type ListFilter struct {
	// Sport is matched exactly; empty means every sport.
	Sport string
	Skip  int64
	// Limit of zero returns every matching event.
	Limit int64
}

// SlotQuery addresses an event by the parts of its public URL.
type SlotQuery struct {
	VenueName string
	Location  string
	Day       time.Time
	Slot      string
}

type VenueEvent struct {
	ID                  primitive.ObjectID `json:"_id" bson:"_id"`
	Name                string             `json:"name" bson:"name"`
	Time                string             `json:"time" bson:"time"`
	Sport               string             `json:"sport" bson:"sport"`
	CurrentParticipants int                `json:"currentParticipants" bson:"currentParticipants"`
	ParticipantsLimit   int                `json:"participantsLimit" bson:"participantsLimit"`
}

// VenueGroup is one venue's events for a day.
type VenueGroup struct {
	Venue       string       `json:"venue" bson:"venue"`
	TotalEvents int          `json:"totalEvents" bson:"totalEvents"`
	Events      []VenueEvent `json:"events" bson:"events"`
}

type mongoEventRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type EventRepository interface {
	Create(ctx context.Context, e *model.Event) error
	InsertMany(ctx context.Context, events []*model.Event) error
	FindByID(ctx context.Context, id string) (*model.Event, error)
	FindBySlug(ctx context.Context, slug string) (*model.Event, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	FindAll(ctx context.Context, filter ListFilter) ([]*model.Event, error)
	Count(ctx context.Context, sport string) (int64, error)
	DistinctSports(ctx context.Context) ([]string, error)
	Update(ctx context.Context, id string, updates *model.EventUpdate) (*model.Event, error)
	Delete(ctx context.Context, id string) (*model.Event, error)

	FindBySlot(ctx context.Context, q SlotQuery) (*model.Event, error)
	GroupByVenue(ctx context.Context, from, to time.Time) ([]VenueGroup, error)
	FindWithSuccessfulPayments(ctx context.Context) ([]*model.Event, error)
	FindWithoutSlug(ctx context.Context) ([]*model.Event, error)
	SetSlug(ctx context.Context, id primitive.ObjectID, slug string) error
	IncrementCounter(ctx context.Context, id string, counter Counter) (int, error)

	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoEventRepository(cfg *config.Config) EventRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoEventRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func parseID(id string) (primitive.ObjectID, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %s", eventserrors.ErrInvalidID, id)
	}
	return objectID, nil
}

// exactFold matches the whole value case-insensitively, ignoring surrounding spaces.
func exactFold(value string) primitive.Regex {
	return primitive.Regex{
		Pattern: "^" + regexp.QuoteMeta(strings.TrimSpace(value)) + "$",
		Options: "i",
	}
}

func prepareForInsert(e *model.Event, now time.Time) {
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	if e.Participants == nil {
		e.Participants = []model.Participant{}
	}
	e.CreatedAt = now
	e.UpdatedAt = now
}

func (r *mongoEventRepository) Create(ctx context.Context, e *model.Event) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	prepareForInsert(e, time.Now().UTC().Truncate(time.Millisecond))
	if _, err := r.collection.InsertOne(ctx, e); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", eventserrors.ErrDuplicateSlug, e.Slug)
		}
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

func (r *mongoEventRepository) InsertMany(ctx context.Context, events []*model.Event) error {
	if len(events) == 0 {
		return nil
	}
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	docs := make([]any, 0, len(events))
	for _, e := range events {
		prepareForInsert(e, now)
		docs = append(docs, e)
	}

	if _, err := r.collection.InsertMany(ctx, docs); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %v", eventserrors.ErrDuplicateSlug, err)
		}
		return fmt.Errorf("failed to insert events: %w", err)
	}
	return nil
}

func (r *mongoEventRepository) findOne(ctx context.Context, filter bson.M, key string) (*model.Event, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var e model.Event
	if err := r.collection.FindOne(ctx, filter).Decode(&e); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", eventserrors.ErrNotFound, key)
		}
		return nil, fmt.Errorf("failed to find event: %w", err)
	}
	return &e, nil
}

func (r *mongoEventRepository) FindByID(ctx context.Context, id string) (*model.Event, error) {
	objectID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": objectID}, id)
}

func (r *mongoEventRepository) FindBySlug(ctx context.Context, slug string) (*model.Event, error) {
	return r.findOne(ctx, bson.M{"slug": slug}, slug)
}

func (r *mongoEventRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	n, err := r.collection.CountDocuments(ctx, bson.M{"slug": slug}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check slug: %w", err)
	}
	return n > 0, nil
}

func sportFilter(sport string) bson.M {
	if sport == "" {
		return bson.M{}
	}
	return bson.M{"sportsName": sport}
}

func (r *mongoEventRepository) FindAll(ctx context.Context, filter ListFilter) ([]*model.Event, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "_id", Value: 1}})
	if filter.Limit > 0 {
		opts.SetSkip(filter.Skip).SetLimit(filter.Limit)
	}

	cursor, err := r.collection.Find(ctx, sportFilter(filter.Sport), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer cursor.Close(ctx)

	events := []*model.Event{}
	if err = cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode events: %w", err)
	}
	return events, nil
}

func (r *mongoEventRepository) Count(ctx context.Context, sport string) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, sportFilter(sport))
	if err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return count, nil
}

func (r *mongoEventRepository) DistinctSports(ctx context.Context) ([]string, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	values, err := r.collection.Distinct(ctx, "sportsName", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list sports: %w", err)
	}
	sports := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			sports = append(sports, s)
		}
	}
	return sports, nil
}

func updateDocument(u *model.EventUpdate) bson.M {
	set := bson.M{"updatedAt": time.Now().UTC().Truncate(time.Millisecond)}
	if u.Name != nil {
		set["name"] = *u.Name
	}
	if u.Description != nil {
		set["description"] = *u.Description
	}
	if u.Date != nil {
		set["date"] = *u.Date
	}
	if u.Slot != nil {
		set["slot"] = *u.Slot
	}
	if u.Price != nil {
		set["price"] = *u.Price
	}
	if u.ActualPrice != nil {
		set["actualPrice"] = *u.ActualPrice
	}
	if u.SportsName != nil {
		set["sportsName"] = *u.SportsName
	}
	if u.VenueName != nil {
		set["venueName"] = *u.VenueName
	}
	if u.Location != nil {
		set["location"] = *u.Location
	}
	if u.VenueImage != nil {
		set["venueImage"] = *u.VenueImage
	}
	if u.ParticipantsLimit != nil {
		set["participantsLimit"] = *u.ParticipantsLimit
	}
	return bson.M{"$set": set}
}

func (r *mongoEventRepository) Update(ctx context.Context, id string, updates *model.EventUpdate) (*model.Event, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var e model.Event
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, updateDocument(updates), opts).Decode(&e)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", eventserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	return &e, nil
}

func (r *mongoEventRepository) Delete(ctx context.Context, id string) (*model.Event, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var e model.Event
	if err := r.collection.FindOneAndDelete(ctx, bson.M{"_id": objectID}).Decode(&e); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", eventserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to delete event: %w", err)
	}
	return &e, nil
}

func (r *mongoEventRepository) FindBySlot(ctx context.Context, q SlotQuery) (*model.Event, error) {
	day := q.Day.UTC()
	filter := bson.M{
		"venueName": exactFold(q.VenueName),
		"location":  exactFold(q.Location),
		"date":      bson.M{"$gte": day, "$lt": day.Add(24 * time.Hour)},
		"slot":      q.Slot,
	}
	return r.findOne(ctx, filter, fmt.Sprintf("%s/%s/%s/%s", q.VenueName, q.Location, day.Format(time.DateOnly), q.Slot))
}

func (r *mongoEventRepository) GroupByVenue(ctx context.Context, from, to time.Time) ([]VenueGroup, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"date": bson.M{"$gte": from, "$lt": to}}}},
		{{Key: "$group", Value: bson.M{
			"_id":         "$venueName",
			"totalEvents": bson.M{"$sum": 1},
			"events": bson.M{"$push": bson.M{
				"_id":                 "$_id",
				"name":                "$name",
				"time":                "$slot",
				"sport":               "$sportsName",
				"currentParticipants": "$currentParticipants",
				"participantsLimit":   "$participantsLimit",
			}},
		}}},
		{{Key: "$project", Value: bson.M{"_id": 0, "venue": "$_id", "totalEvents": 1, "events": 1}}},
		{{Key: "$sort", Value: bson.M{"venue": 1}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate events by venue: %w", err)
	}
	defer cursor.Close(ctx)

	groups := []VenueGroup{}
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, fmt.Errorf("failed to decode venue groups: %w", err)
	}
	return groups, nil
}

func (r *mongoEventRepository) findMany(ctx context.Context, filter bson.M) ([]*model.Event, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer cursor.Close(ctx)

	events := []*model.Event{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode events: %w", err)
	}
	return events, nil
}

func (r *mongoEventRepository) FindWithSuccessfulPayments(ctx context.Context) ([]*model.Event, error) {
	return r.findMany(ctx, bson.M{"participants.paymentStatus": model.PaymentSuccess})
}

func (r *mongoEventRepository) FindWithoutSlug(ctx context.Context) ([]*model.Event, error) {
	return r.findMany(ctx, bson.M{"$or": bson.A{
		bson.M{"slug": bson.M{"$exists": false}},
		bson.M{"slug": ""},
	}})
}

func (r *mongoEventRepository) SetSlug(ctx context.Context, id primitive.ObjectID, slug string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	_, err := r.collection.UpdateByID(ctx, id, bson.M{"$set": bson.M{"slug": slug}})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", eventserrors.ErrDuplicateSlug, slug)
		}
		return fmt.Errorf("failed to set slug: %w", err)
	}
	return nil
}

func (r *mongoEventRepository) IncrementCounter(ctx context.Context, id string, counter Counter) (int, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := parseID(id)
	if err != nil {
		return 0, err
	}

	var e model.Event
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{string(counter): 1})
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, bson.M{"$inc": bson.M{string(counter): 1}}, opts).Decode(&e)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, fmt.Errorf("%w: %s", eventserrors.ErrNotFound, id)
		}
		return 0, fmt.Errorf("failed to increment %s: %w", counter, err)
	}

	if counter == CancellationCounter {
		return e.CancellationCount, nil
	}
	return e.ConfirmationCount, nil
}
