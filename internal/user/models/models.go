package models

import (
	"time"

	"github.com/google/uuid"
)

// User carries the profile fields the platform needs: identity, and the
// home coordinates that place the user in area aggregations. Credential
// handling lives upstream.
type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Latitude  *float64  `json:"latitude,omitempty"`
	Longitude *float64  `json:"longitude,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// BoundingBox is an axis-aligned coordinate box. Boxes near the poles
// or the antimeridian are out of scope for a municipal deployment.
type BoundingBox struct {
	MinLat float64
	MaxLat float64
	MinLng float64
	MaxLng float64
}

// BoxAround builds the box spanning radius degrees on each side of a
// center point.
func BoxAround(lat, lng, radius float64) BoundingBox {
	return BoundingBox{
		MinLat: lat - radius,
		MaxLat: lat + radius,
		MinLng: lng - radius,
		MaxLng: lng + radius,
	}
}

// Contains reports whether the point falls inside the box, boundary
// included.
func (b BoundingBox) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}
