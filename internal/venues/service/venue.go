package service

import (
	"context"
	"errors"

	venueserrors "playverse/internal/venues/errors"
	"playverse/internal/venues/repository"
	"playverse/internal/venues/validator"
	"playverse/pkg/config"
	apperrors "playverse/pkg/errors"
	"playverse/pkg/model"
	"playverse/pkg/sanitizer"
)

const duplicateMessage = "A venue with this name, location, and sport already exists."

type VenueService interface {
	Create(ctx context.Context, v *model.Venue) error
	GetAll(ctx context.Context) ([]*model.Venue, error)
	GetByID(ctx context.Context, id string) (*model.Venue, error)
	Update(ctx context.Context, id string, updates *model.VenueUpdate) (*model.Venue, error)
	Delete(ctx context.Context, id string) error
}

type venueService struct {
	repo      repository.VenueRepository
	validator *validator.VenueValidator
	cfg       *config.Config
}

func NewVenueService(repo repository.VenueRepository, validator *validator.VenueValidator, cfg *config.Config) VenueService {
	return &venueService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *venueService) mapRepoError(err error, op, id string) error {
	switch {
	case errors.Is(err, venueserrors.ErrNotFound):
		return apperrors.NotFound("Venue")
	case errors.Is(err, venueserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid venue ID format")
	case errors.Is(err, venueserrors.ErrDuplicate):
		return apperrors.Conflict(duplicateMessage)
	}
	s.cfg.Log.Error("Venue repository operation failed", "operation", op, "id", id, "error", err)
	return apperrors.Internal("Server error", err)
}

func (s *venueService) sanitize(v *model.Venue) {
	v.Name = sanitizer.NormalizeName(v.Name)
	v.Location = sanitizer.NormalizeName(v.Location)
	v.Sport = sanitizer.NormalizeLabel(v.Sport)
	v.ImageURL = sanitizer.TrimAndNormalize(v.ImageURL)
	v.Description = sanitizer.TrimAndNormalize(v.Description)
	v.MapURL = sanitizer.TrimAndNormalize(v.MapURL)
	v.Amenities = sanitizer.NormalizeAmenities(v.Amenities)
}

func (s *venueService) Create(ctx context.Context, v *model.Venue) error {
	s.sanitize(v)
	if err := s.validator.Validate(v); err != nil {
		s.cfg.Log.Warn("Venue validation failed", "name", v.Name, "error", err)
		return apperrors.Validation(err.Error(), nil)
	}

	if err := s.repo.Create(ctx, v); err != nil {
		return s.mapRepoError(err, "create", v.Name)
	}

	s.cfg.Log.Info("Venue created successfully", "id", v.ID.Hex(), "name", v.Name, "location", v.Location, "sport", v.Sport)
	return nil
}

func (s *venueService) GetAll(ctx context.Context) ([]*model.Venue, error) {
	venues, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, s.mapRepoError(err, "list", "")
	}
	return venues, nil
}

func (s *venueService) GetByID(ctx context.Context, id string) (*model.Venue, error) {
	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, "get", id)
	}
	return v, nil
}

func (s *venueService) Update(ctx context.Context, id string, u *model.VenueUpdate) (*model.Venue, error) {
	normalize := func(p *string, fn func(string) string) {
		if p != nil {
			*p = fn(*p)
		}
	}
	normalize(u.Name, sanitizer.NormalizeName)
	normalize(u.Location, sanitizer.NormalizeName)
	normalize(u.Sport, sanitizer.NormalizeLabel)
	normalize(u.ImageURL, sanitizer.TrimAndNormalize)
	normalize(u.Description, sanitizer.TrimAndNormalize)
	normalize(u.MapURL, sanitizer.TrimAndNormalize)
	if u.Amenities != nil {
		amenities := sanitizer.NormalizeAmenities(*u.Amenities)
		u.Amenities = &amenities
	}

	if err := s.validator.ValidateUpdate(u); err != nil {
		return nil, apperrors.Validation(err.Error(), nil)
	}

	v, err := s.repo.Update(ctx, id, u)
	if err != nil {
		return nil, s.mapRepoError(err, "update", id)
	}
	s.cfg.Log.Info("Venue updated successfully", "id", id)
	return v, nil
}

func (s *venueService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapRepoError(err, "delete", id)
	}
	s.cfg.Log.Info("Venue deleted successfully", "id", id)
	return nil
}
