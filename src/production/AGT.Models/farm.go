package agtmodels

import "time"

// Farm represents a monitored plot owned by exactly one user.
// ID and OwnerID are assigned at creation and never change.
type Farm struct {
	ID               string    `json:"id"`
	OwnerID          string    `json:"owner_id"`
	Name             string    `json:"name"`
	Location         string    `json:"location"`
	SizeSquareMeters int       `json:"size_square_meters"`
	Crops            []string  `json:"crops"`
	ZoneCount        int       `json:"zone_count"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// FarmInput carries the owner-supplied fields for farm creation.
type FarmInput struct {
	Name             string   `json:"name" binding:"required,min=2,max=80"`
	Location         string   `json:"location" binding:"required"`
	SizeSquareMeters int      `json:"size_square_meters" binding:"required,gt=0"`
	Crops            []string `json:"crops"`
	ZoneCount        int      `json:"zone_count" binding:"omitempty,gte=1"`
}

// FarmUpdate carries the editable subset of farm fields. ID and OwnerID
// are deliberately absent: they are not updatable through any path.
type FarmUpdate struct {
	Name             *string   `json:"name" binding:"omitempty,min=2,max=80"`
	Location         *string   `json:"location"`
	SizeSquareMeters *int      `json:"size_square_meters" binding:"omitempty,gt=0"`
	Crops            *[]string `json:"crops"`
}
