package models

import (
	"strings"
	"time"
)

// QueryStatus captures the lifecycle stage of a maintenance query.
type QueryStatus string

const (
	QueryStatusPending    QueryStatus = "PENDING"
	QueryStatusAssigned   QueryStatus = "ASSIGNED"
	QueryStatusInProgress QueryStatus = "IN_PROGRESS"
	QueryStatusResolved   QueryStatus = "RESOLVED"
	QueryStatusClosed     QueryStatus = "CLOSED"
)

// Valid reports whether the status is one of the known lifecycle states.
func (s QueryStatus) Valid() bool {
	switch s {
	case QueryStatusPending, QueryStatusAssigned, QueryStatusInProgress, QueryStatusResolved, QueryStatusClosed:
		return true
	}
	return false
}

// Rank orders statuses along the forward lifecycle. Unknown statuses rank -1.
func (s QueryStatus) Rank() int {
	switch s {
	case QueryStatusPending:
		return 0
	case QueryStatusAssigned:
		return 1
	case QueryStatusInProgress:
		return 2
	case QueryStatusResolved:
		return 3
	case QueryStatusClosed:
		return 4
	}
	return -1
}

// ParseQueryStatus normalises raw input into a QueryStatus.
func ParseQueryStatus(raw string) (QueryStatus, bool) {
	s := QueryStatus(strings.ToUpper(strings.TrimSpace(raw)))
	return s, s.Valid()
}

// QueryCategory classifies the kind of maintenance requested.
type QueryCategory string

const (
	QueryCategoryElectrical  QueryCategory = "ELECTRICAL"
	QueryCategoryPlumbing    QueryCategory = "PLUMBING"
	QueryCategoryCarpentry   QueryCategory = "CARPENTRY"
	QueryCategoryNetwork     QueryCategory = "NETWORK"
	QueryCategoryCleaning    QueryCategory = "CLEANING"
	QueryCategoryMaintenance QueryCategory = "MAINTENANCE"
	QueryCategoryOther       QueryCategory = "OTHER"
)

// Valid reports whether the category is known.
func (c QueryCategory) Valid() bool {
	switch c {
	case QueryCategoryElectrical, QueryCategoryPlumbing, QueryCategoryCarpentry, QueryCategoryNetwork,
		QueryCategoryCleaning, QueryCategoryMaintenance, QueryCategoryOther:
		return true
	}
	return false
}

// ParseQueryCategory normalises raw input into a QueryCategory.
func ParseQueryCategory(raw string) (QueryCategory, bool) {
	c := QueryCategory(strings.ToUpper(strings.TrimSpace(raw)))
	return c, c.Valid()
}

// QueryPriority expresses urgency.
type QueryPriority string

const (
	QueryPriorityLow    QueryPriority = "LOW"
	QueryPriorityMedium QueryPriority = "MEDIUM"
	QueryPriorityHigh   QueryPriority = "HIGH"
	QueryPriorityUrgent QueryPriority = "URGENT"
)

// Valid reports whether the priority is known.
func (p QueryPriority) Valid() bool {
	switch p {
	case QueryPriorityLow, QueryPriorityMedium, QueryPriorityHigh, QueryPriorityUrgent:
		return true
	}
	return false
}

// ParseQueryPriority normalises raw input into a QueryPriority.
func ParseQueryPriority(raw string) (QueryPriority, bool) {
	p := QueryPriority(strings.ToUpper(strings.TrimSpace(raw)))
	return p, p.Valid()
}

// Query is a maintenance request raised against a venue.
type Query struct {
	ID                  string        `db:"id" json:"id"`
	Title               string        `db:"title" json:"title"`
	Description         string        `db:"description" json:"description"`
	Category            QueryCategory `db:"category" json:"category"`
	Priority            QueryPriority `db:"priority" json:"priority"`
	Status              QueryStatus   `db:"status" json:"status"`
	VenueID             *string       `db:"venue_id" json:"venueId,omitempty"`
	RaisedByUserID      *string       `db:"raised_by_user_id" json:"raisedByUserId,omitempty"`
	AssignedToWorkerID  *string       `db:"assigned_to_worker_id" json:"assignedToWorkerId,omitempty"`
	ImagePath           *string       `db:"image_path" json:"imagePath,omitempty"`
	CompletionNotes     *string       `db:"completion_notes" json:"completionNotes,omitempty"`
	CompletionImagePath *string       `db:"completion_image_path" json:"completionImagePath,omitempty"`
	CompletedByUserID   *string       `db:"completed_by_user_id" json:"completedByUserId,omitempty"`
	Version             int           `db:"version" json:"version"`
	ResolvedAt          *time.Time    `db:"resolved_at" json:"resolvedAt,omitempty"`
	CreatedAt           time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt           time.Time     `db:"updated_at" json:"updatedAt"`
}

// QueryFilter constrains query listings. Zero values are ignored.
type QueryFilter struct {
	Status     QueryStatus
	Category   QueryCategory
	Priority   QueryPriority
	VenueID    string
	RaisedBy   string
	AssignedTo string
	Keyword    string
	Page       int
	PageSize   int
}
