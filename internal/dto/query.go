package dto

// CreateQueryForm carries the multipart fields of a new query. The optional
// image travels in the "image" file part.
type CreateQueryForm struct {
	Title          string `form:"title"`
	Description    string `form:"description"`
	Category       string `form:"category"`
	Priority       string `form:"priority"`
	VenueID        string `form:"venueId"`
	RaisedByUserID string `form:"raisedByUserId"`
}

// QueryListQuery mirrors supported listing filters.
type QueryListQuery struct {
	Status     string `form:"status"`
	Category   string `form:"category"`
	Priority   string `form:"priority"`
	VenueID    string `form:"venueId"`
	RaisedBy   string `form:"raisedBy"`
	AssignedTo string `form:"assignedTo"`
	Keyword    string `form:"keyword"`
	Page       int    `form:"page"`
	PageSize   int    `form:"pageSize"`
}

// AssignWorkerRequest assigns a worker, optionally naming who assigned it.
type AssignWorkerRequest struct {
	WorkerID   string `json:"workerId"`
	AssignedBy string `json:"assignedBy"`
}

// UpdateStatusRequest performs a generic status change.
type UpdateStatusRequest struct {
	Status  string `json:"status"`
	UserID  string `json:"userId"`
	Comment string `json:"comment"`
}

// CompleteQueryForm carries completion fields. The optional photo travels in
// the "completionImage" file part.
type CompleteQueryForm struct {
	UserID          string `form:"userId"`
	CompletionNotes string `form:"completionNotes"`
}

// HistoryExportQuery selects the export format.
type HistoryExportQuery struct {
	Format string `form:"format"`
}

// UserHistoryQuery pages through a user's recorded transitions.
type UserHistoryQuery struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}
