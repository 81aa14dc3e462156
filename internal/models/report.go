package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Report represents a geolocated observation submitted by a user.
type Report struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Type      *string            `bson:"type,omitempty" json:"type,omitempty"`
	Latitude  *float64           `bson:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude *float64           `bson:"longitude,omitempty" json:"longitude,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// ErrorResponse is the body returned when a request fails.
type ErrorResponse struct {
	Message string `json:"message"`
}
