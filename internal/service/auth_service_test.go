package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/examdesk/examdesk-api/internal/models"
	"github.com/examdesk/examdesk-api/pkg/config"
	appErrors "github.com/examdesk/examdesk-api/pkg/errors"
)

type userReaderStub struct {
	users      map[string]*models.User
	lastLogins []string
}

func newUserReaderStub() *userReaderStub {
	return &userReaderStub{users: make(map[string]*models.User)}
}

func (u *userReaderStub) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range u.users {
		if user.Email == email {
			copy := *user
			return &copy, nil
		}
	}
	return nil, appErrors.ErrUserNotFound
}

func (u *userReaderStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	if user, ok := u.users[id]; ok {
		copy := *user
		return &copy, nil
	}
	return nil, appErrors.ErrUserNotFound
}

func (u *userReaderStub) UpdateLastLogin(ctx context.Context, id string) error {
	u.lastLogins = append(u.lastLogins, id)
	return nil
}

func authFixture(t *testing.T) (*AuthService, *userReaderStub) {
	t.Helper()
	users := newUserReaderStub()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	users.users["u1"] = &models.User{
		ID:           "u1",
		Email:        "admin@examdesk.test",
		PasswordHash: string(hash),
		FullName:     "Ari Admin",
		Role:         models.RoleAdmin,
		Active:       true,
	}
	cfg := config.JWTConfig{Secret: "test-secret", Expiration: time.Hour, Issuer: "examdesk-test"}
	return NewAuthService(users, cfg, nil), users
}

func TestLoginSuccess(t *testing.T) {
	svc, users := authFixture(t)

	res, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@examdesk.test",
		Password: "s3cret",
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.AccessToken)
	require.Equal(t, int64(3600), res.ExpiresIn)
	require.Equal(t, "u1", res.User.ID)
	require.Equal(t, []string{"u1"}, users.lastLogins)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "u1", claims.UserID)
	require.Equal(t, models.RoleAdmin, claims.Role)
}

func TestLoginWrongPasswordAndUnknownEmailLookAlike(t *testing.T) {
	svc, _ := authFixture(t)

	_, err1 := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@examdesk.test",
		Password: "wrong",
	})
	_, err2 := svc.Login(context.Background(), models.LoginRequest{
		Email:    "nobody@examdesk.test",
		Password: "s3cret",
	})
	require.ErrorIs(t, err1, appErrors.ErrInvalidCredentials)
	require.ErrorIs(t, err2, appErrors.ErrInvalidCredentials)
}

func TestLoginInactiveAccount(t *testing.T) {
	svc, users := authFixture(t)
	users.users["u1"].Active = false

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@examdesk.test",
		Password: "s3cret",
	})
	require.ErrorIs(t, err, appErrors.ErrInactiveAccount)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc, _ := authFixture(t)

	_, err := svc.ValidateToken("not-a-token")
	require.Error(t, err)
}

func TestLoginValidatesRequest(t *testing.T) {
	svc, _ := authFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "not-an-email", Password: "x"})
	require.Error(t, err)
}
