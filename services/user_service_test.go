package services

import (
	"backoffice/models"
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginAndParseToken(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db, "test-secret", 1)
	ctx := context.Background()

	created, err := users.Create(ctx, CreateUserRequest{Username: "licdesk", Name: "LIC Desk", Password: "secret1", Role: models.RoleLIC})
	require.NoError(t, err)

	resp, err := users.Login(ctx, LoginRequest{Username: "  LICDESK ", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, resp.User.ID)
	assert.NotEmpty(t, resp.Token)

	actor, err := users.ParseToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, models.Actor{UserID: created.ID, Role: models.RoleLIC}, actor)

	_, err = users.Login(ctx, LoginRequest{Username: "licdesk", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = users.Login(ctx, LoginRequest{Username: "nobody", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestParseTokenRejectsForeignAndExpired(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db, "test-secret", 1)

	other := NewUserService(db, "other-secret", 1)
	foreign, err := other.generateToken(&models.User{ID: 5, Username: "x", Role: models.RoleUser})
	require.NoError(t, err)
	_, err = users.ParseToken(foreign)
	assert.Error(t, err)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID: 5,
		Role:   models.RoleUser,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	signed, err := expired.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = users.ParseToken(signed)
	assert.Error(t, err)
}

func TestUserManagement(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db, "test-secret", 1)
	ctx := context.Background()

	u, err := users.Create(ctx, CreateUserRequest{Username: "laundry", Password: "secret1", Role: models.RoleClothAura})
	require.NoError(t, err)

	_, err = users.Create(ctx, CreateUserRequest{Username: "laundry", Password: "secret1", Role: models.RoleUser})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "username")

	_, err = users.Create(ctx, CreateUserRequest{Username: "bad", Password: "secret1", Role: "root"})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "role")

	updated, err := users.Update(ctx, u.ID, UpdateUserRequest{Name: "ClothAura", Password: "changed1"})
	require.NoError(t, err)
	assert.Equal(t, "ClothAura", updated.Name)
	assert.Equal(t, models.RoleClothAura, updated.Role)

	_, err = users.Login(ctx, LoginRequest{Username: "laundry", Password: "changed1"})
	require.NoError(t, err)

	self := models.Actor{UserID: u.ID, Role: models.RoleAdmin}
	require.ErrorAs(t, users.Delete(ctx, self, u.ID), &verr)
	require.NoError(t, users.Delete(ctx, admin, u.ID))
	assert.ErrorIs(t, users.Delete(ctx, admin, u.ID), ErrNotFound)
}
