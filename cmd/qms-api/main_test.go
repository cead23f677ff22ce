package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/salmaanit26/Query-Management-System/pkg/config"
)

const testQueryID = "3f2b8c1e-5d4a-4b7e-9c21-6a0d8e4f7b13"

func TestVersionCmd(t *testing.T) {
	origVersion, origCommit, origDate := Version, Commit, Date
	Version, Commit, Date = "1.2.0", "abc123", "2026-01-01"
	defer func() { Version, Commit, Date = origVersion, origCommit, origDate }()

	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "qms-api 1.2.0 (commit: abc123, built: 2026-01-01)\n", buf.String())
}

func TestRootCmdRegistersSubcommands(t *testing.T) {
	cmd := newRootCmd()
	names := make([]string, 0)
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"version", "serve", "migrate", "cache"}, names)

	migrate, _, err := cmd.Find([]string{"migrate", "down"})
	require.NoError(t, err)
	assert.Equal(t, "down", migrate.Name())
}

func TestMigrateRejectsExtraArgs(t *testing.T) {
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"migrate", "up", "now"})

	assert.Equal(t, 1, execute(cmd))
	assert.True(t, strings.Contains(buf.String(), "unknown command") || strings.Contains(buf.String(), "accepts 0 arg"))
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Env:       config.EnvDevelopment,
		APIPrefix: "/api/v1",
		Uploads: config.UploadsConfig{
			Dir:              t.TempDir(),
			MaxFileSizeBytes: 1024,
			AllowedMIMEs:     []string{"image/png"},
			SignedURLSecret:  "test-secret",
			SignedURLTTL:     time.Minute,
		},
		Lifecycle:    config.LifecycleConfig{TransitionPolicy: config.TransitionPolicyStrict},
		HistoryCache: config.HistoryCacheConfig{Enabled: true, TTL: time.Minute},
		Identity:     config.IdentityConfig{CacheSize: 8, CacheTTL: time.Minute},
		Cleanup:      config.CleanupConfig{Workers: 1, Retries: 1, RetryDelay: time.Millisecond},
	}
}

func TestNewAppServesHealthAndHistory(t *testing.T) {
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp), sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer mockDB.Close()
	db := sqlx.NewDb(mockDB, "sqlmock")

	application, err := newApp(testConfig(t), zap.NewNop(), db, nil)
	require.NoError(t, err)
	application.cleanup.Start(context.Background())
	defer application.close()

	mock.ExpectPing()
	w := httptest.NewRecorder()
	application.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	now := time.Now()
	mock.ExpectQuery(`FROM queries WHERE id = \$1`).
		WithArgs(testQueryID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description", "category", "priority", "status", "version", "created_at", "updated_at"}).
			AddRow(testQueryID, "Fan", "Broken fan", "ELECTRICAL", "MEDIUM", "PENDING", 1, now, now))
	mock.ExpectQuery(`FROM query_status_history`).
		WithArgs(testQueryID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "query_id", "old_status", "new_status", "updated_by_user_id", "updated_by_name", "comment", "completion_image_path", "created_at"}))

	w = httptest.NewRecorder()
	application.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/queries/"+testQueryID+"/history", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	application.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics/summary", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"requestsTotal":2`)

	require.NoError(t, mock.ExpectationsWereMet())
}
