package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Venue struct {
	ID                  primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	Name                string             `json:"name" bson:"name" validate:"required,min=2,max=200"`
	Location            string             `json:"location" bson:"location" validate:"required"`
	Sport               string             `json:"sport" bson:"sport" validate:"required"`
	ImageURL            string             `json:"imageUrl" bson:"imageUrl" validate:"required,url"`
	Description         string             `json:"description,omitempty" bson:"description,omitempty"`
	GeneralInstructions string             `json:"generalInstructions,omitempty" bson:"generalInstructions,omitempty"`
	Amenities           []string           `json:"amenities,omitempty" bson:"amenities,omitempty" validate:"omitempty,dive,required"`
	MapURL              string             `json:"mapUrl,omitempty" bson:"mapUrl,omitempty" validate:"omitempty,url"`
	CreatedAt           time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt           time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type VenueUpdate struct {
	Name                *string   `json:"name,omitempty" validate:"omitempty,min=2,max=200"`
	Location            *string   `json:"location,omitempty" validate:"omitempty,min=1"`
	Sport               *string   `json:"sport,omitempty" validate:"omitempty,min=1"`
	ImageURL            *string   `json:"imageUrl,omitempty" validate:"omitempty,url"`
	Description         *string   `json:"description,omitempty"`
	GeneralInstructions *string   `json:"generalInstructions,omitempty"`
	Amenities           *[]string `json:"amenities,omitempty" validate:"omitempty,dive,required"`
	MapURL              *string   `json:"mapUrl,omitempty" validate:"omitempty,url"`
}
