// Package models defines evaluation periods, category ratings, and the
// aggregates derived from them.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Granularity is the number of evaluation windows per year. It is an
// explicit policy parameter on every period computation; periods of
// different granularities never compare equal.
type Granularity int

const (
	Semiannual Granularity = 2
	Quarterly  Granularity = 4
)

func (g Granularity) Valid() bool {
	return g == Semiannual || g == Quarterly
}

// Period identifies one evaluation window. Index is 1-based within the
// year: 1..2 for semiannual, 1..4 for quarterly.
type Period struct {
	Year        int         `json:"year"`
	Index       int         `json:"index"`
	Granularity Granularity `json:"granularity"`
}

// PeriodOf places an instant in its evaluation window. Months divide
// evenly into windows: under two windows per year January through June
// is index 1, under four windows each quarter gets its own index.
func PeriodOf(t time.Time, g Granularity) Period {
	monthsPerWindow := 12 / int(g)
	return Period{
		Year:        t.Year(),
		Index:       (int(t.Month())-1)/monthsPerWindow + 1,
		Granularity: g,
	}
}

// Category is the closed set of civic concern areas rated in an
// evaluation. Reports use the same taxonomy.
type Category string

const (
	CategoryPublicLighting  Category = "public_lighting"
	CategoryRoadPotholes    Category = "road_potholes"
	CategoryUrbanCleaning   Category = "urban_cleaning"
	CategoryPublicTransport Category = "public_transport"
	CategorySafety          Category = "safety"
	CategoryInfrastructure  Category = "infrastructure"
	CategoryEnvironment     Category = "environment"
	CategoryNoise           Category = "noise"
	CategoryAccessibility   Category = "accessibility"
	CategorySignage         Category = "signage"
)

// Categories lists every valid category in presentation order.
func Categories() []Category {
	return []Category{
		CategoryPublicLighting,
		CategoryRoadPotholes,
		CategoryUrbanCleaning,
		CategoryPublicTransport,
		CategorySafety,
		CategoryInfrastructure,
		CategoryEnvironment,
		CategoryNoise,
		CategoryAccessibility,
		CategorySignage,
	}
}

func ValidCategory(c Category) bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// CategoryRating scores one category on a 1..5 scale.
type CategoryRating struct {
	Category Category `json:"category"`
	Rating   int      `json:"rating"`
	Comment  string   `json:"comment,omitempty"`
}

// Evaluation is one user's rating of their area for one period. A user
// submits at most one evaluation per period.
type Evaluation struct {
	ID             uuid.UUID        `json:"id"`
	UserID         uuid.UUID        `json:"userId"`
	Period         Period           `json:"period"`
	Ratings        []CategoryRating `json:"ratings"`
	GeneralComment string           `json:"generalComment,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// AreaStatistics aggregates the current period's evaluations from users
// inside a bounding box. UsersFound distinguishes "nobody lives here"
// from "nobody evaluated yet".
type AreaStatistics struct {
	UsersFound        int                  `json:"usersFound"`
	TotalEvaluations  int                  `json:"totalEvaluations"`
	ParticipationRate float64              `json:"participationRate"`
	CategoryAverages  map[Category]float64 `json:"categoryAverages"`
	Period            Period               `json:"period"`
}
