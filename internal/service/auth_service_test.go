package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/strack-api/internal/models"
	"github.com/noah-isme/strack-api/internal/repository"
	appErrors "github.com/noah-isme/strack-api/pkg/errors"
)

func newAuthServiceForTest(t *testing.T) *AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("letmein"), bcrypt.MinCost)
	require.NoError(t, err)
	return NewAuthService(repository.NewIdentityRepository(), nil, nil, AuthConfig{
		AccessTokenSecret: "test-secret",
		AccessTokenExpiry: time.Hour,
		Issuer:            "strack-test",
		AdminPasswordHash: string(hash),
	})
}

func register(t *testing.T, svc *AuthService) *models.LoginResponse {
	t.Helper()
	resp, err := svc.Register(context.Background(), models.RegisterRequest{Email: "ann@school.edu", Password: "secret1"})
	require.NoError(t, err)
	return resp
}

func TestAuthServiceRegisterAndLogin(t *testing.T) {
	svc := newAuthServiceForTest(t)
	resp := register(t, svc)
	assert.Equal(t, models.RoleUser, resp.User.Role)
	assert.Equal(t, "ann", resp.User.FullName)
	assert.Equal(t, int64(3600), resp.ExpiresIn)

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "ANN@school.edu", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)

	claims, err := svc.ValidateToken(login.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, "strack-test", claims.Issuer)
}

func TestAuthServiceRegisterDuplicate(t *testing.T) {
	svc := newAuthServiceForTest(t)
	register(t, svc)

	_, err := svc.Register(context.Background(), models.RegisterRequest{Email: "ann@school.edu", Password: "another"})
	assertCode(t, err, appErrors.ErrEmailTaken.Code)
}

func TestAuthServiceRegisterValidation(t *testing.T) {
	svc := newAuthServiceForTest(t)

	_, err := svc.Register(context.Background(), models.RegisterRequest{Email: "ann@school.edu", Password: "123"})
	assertCode(t, err, appErrors.ErrValidation.Code)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	svc := newAuthServiceForTest(t)
	register(t, svc)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ann@school.edu", Password: "nope"})
	assertCode(t, err, appErrors.ErrInvalidCredentials.Code)

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "bob@school.edu", Password: "nope"})
	assertCode(t, err, appErrors.ErrInvalidCredentials.Code)
}

func TestAuthServiceElevateAdmin(t *testing.T) {
	svc := newAuthServiceForTest(t)
	resp := register(t, svc)
	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)

	_, err = svc.ElevateAdmin(context.Background(), claims, models.AdminModeRequest{Password: "wrong"})
	assertCode(t, err, appErrors.ErrInvalidAdminSecret.Code)

	admin, err := svc.ElevateAdmin(context.Background(), claims, models.AdminModeRequest{Password: "letmein"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.User.Role)

	_, err = svc.ValidateToken(resp.AccessToken)
	assertCode(t, err, appErrors.ErrUnauthorized.Code)

	adminClaims, err := svc.ValidateToken(admin.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, models.AdminPermissions(), models.PermissionsFor(SessionFrom(adminClaims)))
}

func TestAuthServiceElevateAdminNotConfigured(t *testing.T) {
	svc := NewAuthService(repository.NewIdentityRepository(), nil, nil, AuthConfig{AccessTokenSecret: "s"})
	resp := register(t, svc)
	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)

	_, err = svc.ElevateAdmin(context.Background(), claims, models.AdminModeRequest{Password: "anything"})
	assertCode(t, err, appErrors.ErrAdminModeDisabled.Code)
}

func TestAuthServiceLogoutRevokesToken(t *testing.T) {
	svc := newAuthServiceForTest(t)
	resp := register(t, svc)
	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), claims))

	_, err = svc.ValidateToken(resp.AccessToken)
	assertCode(t, err, appErrors.ErrUnauthorized.Code)
}

func TestAuthServiceValidateTokenRejectsExpiredAndForeign(t *testing.T) {
	svc := newAuthServiceForTest(t)
	resp := register(t, svc)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err := svc.ValidateToken(resp.AccessToken)
	assertCode(t, err, appErrors.ErrUnauthorized.Code)

	other := NewAuthService(repository.NewIdentityRepository(), nil, nil, AuthConfig{AccessTokenSecret: "different"})
	_, err = other.ValidateToken(resp.AccessToken)
	assertCode(t, err, appErrors.ErrUnauthorized.Code)
}

func TestSessionFrom(t *testing.T) {
	assert.Equal(t, models.Session{}, SessionFrom(nil))
	assert.Empty(t, SessionFrom(nil).Key())

	session := SessionFrom(&models.JWTClaims{UserID: "u1", Email: "a@b.c", Role: models.RoleUser})
	assert.True(t, session.Authenticated)
	assert.Equal(t, "u1", session.Key())
	assert.Equal(t, models.Permissions{CanAdd: true}, models.PermissionsFor(session))
}
