package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/strack-api/internal/models"
)

func TestIdentityRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewIdentityRepository()

	user := &models.User{Email: "Ann@School.edu", FullName: "Ann", Role: models.RoleUser}
	require.NoError(t, repo.Create(ctx, user))
	assert.NotEmpty(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())

	found, err := repo.FindByEmail(ctx, "ann@school.edu")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	byID, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann", byID.FullName)

	assert.Error(t, repo.Create(ctx, &models.User{Email: "ann@school.edu"}))

	_, err = repo.FindByEmail(ctx, "nobody@school.edu")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
