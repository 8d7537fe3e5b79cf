package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/careerhub/internal/domain/model"
)

func TestApplicationRepo_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewApplicationRepo(db)
	ctx := context.Background()

	want := makeApplication("app-1", "u-1", "Acme")
	require.NoError(t, repo.Create(ctx, want))

	got, err := repo.GetByID(ctx, "app-1")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "u-1", got.UserID)
	assert.Equal(t, "Acme", got.CompanyName)
	assert.Equal(t, "Backend Engineer", got.PositionTitle)
	assert.Equal(t, "Own the billing pipeline.", got.JobDescription)
	assert.Equal(t, model.WorkModeRemote, got.WorkMode)
	assert.Equal(t, model.ApplicationStatusApplied, got.Status)
	assert.Equal(t, want.DateApplied, got.DateApplied)
	assert.Equal(t, want.CreatedAt, got.CreatedAt)
	assert.Equal(t, want.CreatedAt, got.UpdatedAt, "updated_at defaults to created_at")
}

func TestApplicationRepo_Create_Duplicate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewApplicationRepo(db)
	ctx := context.Background()

	app := makeApplication("app-1", "u-1", "Acme")
	require.NoError(t, repo.Create(ctx, app))

	err := repo.Create(ctx, app)
	assert.Error(t, err, "creating a duplicate application should fail")
}

func TestApplicationRepo_Create_DefaultsStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewApplicationRepo(db)
	ctx := context.Background()

	app := makeApplication("app-1", "u-1", "Acme")
	app.Status = ""
	require.NoError(t, repo.Create(ctx, app))

	got, err := repo.GetByID(ctx, "app-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, model.ApplicationStatusApplied, got.Status)
}

func TestApplicationRepo_GetByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewApplicationRepo(db)

	got, err := repo.GetByID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got, "missing application should return nil without error")
}
