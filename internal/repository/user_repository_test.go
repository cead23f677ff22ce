package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salmaanit26/Query-Management-System/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func TestUserRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "email", "role", "worker_type", "phone", "created_at", "updated_at"}).
		AddRow("w-1", "Ravi", "ravi@example.com", string(models.RoleWorker), string(models.WorkerTypeElectrician), nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, email, role, worker_type, phone, created_at, updated_at FROM users WHERE id = $1 LIMIT 1")).
		WithArgs("w-1").
		WillReturnRows(rows)

	user, err := repo.FindByID(context.Background(), "w-1")
	require.NoError(t, err)
	assert.True(t, user.IsWorker())
	require.NotNil(t, user.WorkerType)
	assert.Equal(t, models.WorkerTypeElectrician, *user.WorkerType)
	assert.Nil(t, user.Phone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryFindByIDMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery("FROM users WHERE id = \\$1").
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "ghost")
	assert.True(t, IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVenueRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewVenueRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "location", "type", "capacity", "floor_number", "building", "description", "image_url", "created_at"}).
		AddRow("v-1", "Lab 2", "Block A", string(models.VenueTypeLab), 40, 2, "A", nil, nil, time.Now())
	mock.ExpectQuery("FROM venues WHERE id = \\$1 LIMIT 1").
		WithArgs("v-1").
		WillReturnRows(rows)

	venue, err := repo.FindByID(context.Background(), "v-1")
	require.NoError(t, err)
	assert.Equal(t, models.VenueTypeLab, venue.Type)
	require.NotNil(t, venue.Capacity)
	assert.Equal(t, 40, *venue.Capacity)
	assert.NoError(t, mock.ExpectationsWereMet())
}
