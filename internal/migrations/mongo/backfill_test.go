package mongo

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	eventserrors "playverse/internal/events/errors"
	"playverse/pkg/logger"
	"playverse/pkg/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type mockSlugStore struct {
	events  []*model.Event
	findErr error
	taken   map[string]bool
	failIDs map[primitive.ObjectID]bool
	set     map[primitive.ObjectID]string
}

func (m *mockSlugStore) FindWithoutSlug(context.Context) ([]*model.Event, error) {
	return m.events, m.findErr
}

func (m *mockSlugStore) SetSlug(_ context.Context, id primitive.ObjectID, slug string) error {
	if m.failIDs[id] {
		return errors.New("write conflict")
	}
	if m.taken[slug] {
		return fmt.Errorf("%w: %s", eventserrors.ErrDuplicateSlug, slug)
	}
	m.taken[slug] = true
	m.set[id] = slug
	return nil
}

func event(venue string) *model.Event {
	return &model.Event{
		ID:        primitive.NewObjectID(),
		VenueName: venue,
		Location:  "Indiranagar",
		Date:      time.Date(2025, 5, 4, 0, 0, 0, 0, time.UTC),
		Slot:      "6-7 PM",
	}
}

func TestBackfillSlugs(t *testing.T) {
	fresh := event("Green Arena")
	clash := event("Blue Court")
	broken := event("Red Turf")

	store := &mockSlugStore{
		events:  []*model.Event{fresh, clash, broken},
		taken:   map[string]bool{"blue-court-indiranagar-2025-05-04-6-7-pm": true},
		failIDs: map[primitive.ObjectID]bool{broken.ID: true},
		set:     map[primitive.ObjectID]string{},
	}

	report, err := BackfillSlugs(context.Background(), store, logger.Discard())
	if err != nil {
		t.Fatalf("BackfillSlugs() error = %v", err)
	}

	want := BackfillReport{Found: 3, Updated: 2, Disambiguated: 1, Failed: 1}
	if *report != want {
		t.Errorf("report = %+v, want %+v", *report, want)
	}

	if got := store.set[fresh.ID]; got != "green-arena-indiranagar-2025-05-04-6-7-pm" {
		t.Errorf("fresh slug = %q", got)
	}
	suffix := clash.ID.Hex()[len(clash.ID.Hex())-5:]
	if got := store.set[clash.ID]; got != "blue-court-indiranagar-2025-05-04-6-7-pm-"+suffix {
		t.Errorf("clashing slug = %q, want id suffix %s", got, suffix)
	}
	if _, ok := store.set[broken.ID]; ok {
		t.Error("failed event must not get a slug")
	}
}

func TestBackfillSlugs_ListError(t *testing.T) {
	store := &mockSlugStore{findErr: errors.New("connection refused")}

	if _, err := BackfillSlugs(context.Background(), store, logger.Discard()); err == nil {
		t.Fatal("expected an error when listing fails")
	}
}

func TestCollections(t *testing.T) {
	defs := collections()
	for _, name := range []string{"Events", "Venues", "Refunds"} {
		def, ok := defs[name]
		if !ok {
			t.Errorf("missing collection %s", name)
			continue
		}
		if len(def.Indexes) == 0 {
			t.Errorf("%s has no indexes", name)
		}
		if _, ok := def.Validator["$jsonSchema"]; !ok {
			t.Errorf("%s has no $jsonSchema validator", name)
		}
	}
}
