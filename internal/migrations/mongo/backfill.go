package mongo

import (
	"context"
	"errors"
	"fmt"

	eventserrors "playverse/internal/events/errors"
	"playverse/pkg/logger"
	"playverse/pkg/model"
	"playverse/pkg/slug"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SlugStore is the slice of the events repository the backfill needs.
type SlugStore interface {
	FindWithoutSlug(ctx context.Context) ([]*model.Event, error)
	SetSlug(ctx context.Context, id primitive.ObjectID, slug string) error
}

type BackfillReport struct {
	Found         int
	Updated       int
	Disambiguated int
	Failed        int
}

// BackfillSlugs gives every event without a slug its canonical one. A slug
// rejected by the unique index is retried once with the id suffix. Per-event
// failures are logged and counted, they do not stop the run.
func BackfillSlugs(ctx context.Context, store SlugStore, log *logger.Logger) (*BackfillReport, error) {
	events, err := store.FindWithoutSlug(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list events without slug: %w", err)
	}

	report := &BackfillReport{Found: len(events)}
	log.Info("Found events without slugs", "count", report.Found)

	for _, e := range events {
		base := slug.ForEvent(e.VenueName, e.Location, e.Date, e.Slot)
		value := base
		err := store.SetSlug(ctx, e.ID, value)
		if errors.Is(err, eventserrors.ErrDuplicateSlug) {
			value = slug.Disambiguate(base, e.ID.Hex())
			report.Disambiguated++
			err = store.SetSlug(ctx, e.ID, value)
		}
		if err != nil {
			report.Failed++
			log.Error("Could not update event slug", "event_id", e.ID.Hex(), "slug", value, "error", err)
			continue
		}
		report.Updated++
		log.Info("Updated event slug", "event_id", e.ID.Hex(), "slug", value)
	}

	log.Info("Finished adding slugs to events",
		"updated", report.Updated,
		"disambiguated", report.Disambiguated,
		"failed", report.Failed,
	)
	return report, nil
}
