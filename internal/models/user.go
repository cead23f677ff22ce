package models

import "time"

// UserRole distinguishes who may raise, handle or administer queries.
type UserRole string

const (
	RoleStudent UserRole = "STUDENT"
	RoleAdmin   UserRole = "ADMIN"
	RoleWorker  UserRole = "WORKER"
)

// WorkerType narrows the trade of a WORKER user.
type WorkerType string

const (
	WorkerTypeElectrician WorkerType = "ELECTRICIAN"
	WorkerTypePlumber     WorkerType = "PLUMBER"
	WorkerTypeCarpenter   WorkerType = "CARPENTER"
	WorkerTypeNetwork     WorkerType = "NETWORK"
	WorkerTypeGeneral     WorkerType = "GENERAL"
)

// User is a read-only projection of the users table.
type User struct {
	ID         string      `db:"id" json:"id"`
	Name       string      `db:"name" json:"name"`
	Email      string      `db:"email" json:"email"`
	Role       UserRole    `db:"role" json:"role"`
	WorkerType *WorkerType `db:"worker_type" json:"workerType,omitempty"`
	Phone      *string     `db:"phone" json:"phone,omitempty"`
	CreatedAt  time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time   `db:"updated_at" json:"updatedAt"`
}

// IsWorker reports whether the user can be assigned queries.
func (u *User) IsWorker() bool {
	return u != nil && u.Role == RoleWorker
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalCount int `json:"totalCount"`
}
