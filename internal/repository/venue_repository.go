package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/salmaanit26/Query-Management-System/internal/models"
)

// VenueRepository reads venues owned by the catalog collaborator.
type VenueRepository struct {
	db *sqlx.DB
}

// NewVenueRepository constructs the repository.
func NewVenueRepository(db *sqlx.DB) *VenueRepository {
	return &VenueRepository{db: db}
}

// FindByID returns a venue by identifier. Misses surface as sql.ErrNoRows.
func (r *VenueRepository) FindByID(ctx context.Context, id string) (*models.Venue, error) {
	const query = `SELECT id, name, location, type, capacity, floor_number, building, description, image_url, created_at
FROM venues WHERE id = $1 LIMIT 1`
	var venue models.Venue
	if err := r.db.GetContext(ctx, &venue, query, id); err != nil {
		return nil, err
	}
	return &venue, nil
}
