package models

import "time"

// QueryStatusHistory is one immutable entry of a query's audit trail.
type QueryStatusHistory struct {
	ID                  string       `db:"id" json:"id"`
	QueryID             string       `db:"query_id" json:"queryId"`
	OldStatus           *QueryStatus `db:"old_status" json:"oldStatus"`
	NewStatus           QueryStatus  `db:"new_status" json:"newStatus"`
	UpdatedByUserID     string       `db:"updated_by_user_id" json:"updatedByUserId"`
	UpdatedByName       *string      `db:"updated_by_name" json:"updatedByName,omitempty"`
	Comment             *string      `db:"comment" json:"comment,omitempty"`
	CompletionImagePath *string      `db:"completion_image_path" json:"completionImagePath,omitempty"`
	CreatedAt           time.Time    `db:"created_at" json:"createdAt"`
}
