package models

import "time"

// VenueType classifies facility spaces.
type VenueType string

const (
	VenueTypeClassroom VenueType = "CLASSROOM"
	VenueTypeLab       VenueType = "LAB"
	VenueTypeHall      VenueType = "HALL"
	VenueTypeOffice    VenueType = "OFFICE"
	VenueTypeLibrary   VenueType = "LIBRARY"
	VenueTypeHostel    VenueType = "HOSTEL"
	VenueTypeOther     VenueType = "OTHER"
)

// Venue is a read-only projection of the venues table.
type Venue struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Location    string    `db:"location" json:"location"`
	Type        VenueType `db:"type" json:"type"`
	Capacity    *int      `db:"capacity" json:"capacity,omitempty"`
	FloorNumber *int      `db:"floor_number" json:"floorNumber,omitempty"`
	Building    *string   `db:"building" json:"building,omitempty"`
	Description *string   `db:"description" json:"description,omitempty"`
	ImageURL    *string   `db:"image_url" json:"imageUrl,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}
