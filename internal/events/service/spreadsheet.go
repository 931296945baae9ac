package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	apperrors "playverse/pkg/errors"
	"playverse/pkg/model"
	"playverse/pkg/slug"
	"playverse/pkg/spreadsheet"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Import inserts every event of the uploaded workbook in one transaction, or none of them.
func (s *eventService) Import(ctx context.Context, r io.Reader) ([]*model.Event, error) {
	parsed, err := spreadsheet.ParseEvents(r)
	if err != nil {
		var rowErr *spreadsheet.RowError
		switch {
		case errors.Is(err, spreadsheet.ErrMissingFields):
			return nil, apperrors.InvalidInput("Each event must have all required fields")
		case errors.As(err, &rowErr):
			return nil, apperrors.InvalidInput(rowErr.Error())
		case errors.Is(err, spreadsheet.ErrEmptyWorkbook):
			return nil, apperrors.InvalidInput("The uploaded workbook has no sheets")
		}
		s.cfg.Log.Warn("Failed to read uploaded workbook", "error", err)
		return nil, apperrors.InvalidInput("Please upload a valid Excel file")
	}
	if len(parsed) == 0 {
		return nil, apperrors.InvalidInput("The uploaded workbook contains no events")
	}

	events := make([]*model.Event, 0, len(parsed))
	for i := range parsed {
		e := &parsed[i]
		s.sanitize(e)
		resetBookingState(e)
		if err := s.validator.Validate(e); err != nil {
			return nil, apperrors.Validation(fmt.Sprintf("Event %d in the workbook is invalid", i+1), map[string]any{
				"error": err.Error(),
			})
		}
		events = append(events, e)
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		taken := make(map[string]bool, len(events))
		for _, e := range events {
			e.ID = primitive.NewObjectID()
			base := slug.ForEvent(e.VenueName, e.Location, e.Date, e.Slot)
			exists, err := s.repo.SlugExists(sessCtx, base)
			if err != nil {
				return err
			}
			e.Slug = base
			if exists || taken[base] {
				e.Slug = slug.Disambiguate(base, e.ID.Hex())
			}
			taken[e.Slug] = true
		}
		return s.repo.InsertMany(sessCtx, events)
	})
	if err != nil {
		return nil, s.mapRepoError(err, "upload events", "")
	}

	s.cfg.Log.Info("Events imported from workbook", "count", len(events))
	return events, nil
}

// Export writes every successful booking as one spreadsheet row.
func (s *eventService) Export(ctx context.Context, w io.Writer) error {
	events, err := s.repo.FindWithSuccessfulPayments(ctx)
	if err != nil {
		return s.mapRepoError(err, "generate Excel file", "")
	}

	rows := make([]model.Event, 0, len(events))
	for _, e := range events {
		rows = append(rows, *e)
	}
	if err := spreadsheet.WriteBookings(w, rows); err != nil {
		s.cfg.Log.Error("Failed to write bookings workbook", "error", err)
		return apperrors.Internal("Failed to generate Excel file", err)
	}
	return nil
}
