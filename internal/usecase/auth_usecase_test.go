package usecase

import (
	"context"
	"testing"
	"time"

	"adoptchat/internal/entity"
	"adoptchat/internal/repository"
	"adoptchat/pkg/jwt"

	"github.com/stretchr/testify/require"
)

func newAuthUsecase() AuthUsecase {
	return NewAuthUsecase(repository.NewMemoryUserRepository(), jwt.NewJWTManager("test-secret", time.Hour))
}

func TestAuthUsecase_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("should issue a token for the new user", func(t *testing.T) {
		req := require.New(t)
		uc := newAuthUsecase()

		resp, err := uc.Register(ctx, entity.RegisterRequest{Email: "eve@example.com", Password: "secret1", Name: "Eve"})

		req.NoError(err)
		req.Equal(entity.UserSnapshot{Id: 1, DisplayName: "Eve"}, resp.User)
		claims, err := uc.ValidateAccessToken(resp.AccessToken)
		req.NoError(err)
		req.Equal(int64(1), claims.UserId)
		req.Equal("eve@example.com", claims.Email)
	})

	t.Run("should refuse a second account for the same email", func(t *testing.T) {
		req := require.New(t)
		uc := newAuthUsecase()
		_, err := uc.Register(ctx, entity.RegisterRequest{Email: "eve@example.com", Password: "secret1", Name: "Eve"})
		req.NoError(err)

		_, err = uc.Register(ctx, entity.RegisterRequest{Email: "EVE@example.com ", Password: "other12", Name: "Eve 2"})

		req.ErrorIs(err, ErrEmailAlreadyTaken)
	})
}

func TestAuthUsecase_Login(t *testing.T) {
	ctx := context.Background()
	uc := newAuthUsecase()
	_, err := uc.Register(ctx, entity.RegisterRequest{Email: "finn@example.com", Password: "woofwoof", Name: "Finn"})
	require.NoError(t, err)

	t.Run("should log in with the registered password", func(t *testing.T) {
		req := require.New(t)

		resp, err := uc.Login(ctx, entity.LoginRequest{Email: "finn@example.com", Password: "woofwoof"})

		req.NoError(err)
		req.Equal("Finn", resp.User.DisplayName)
		req.NotEmpty(resp.AccessToken)
	})

	t.Run("should reject a wrong password", func(t *testing.T) {
		req := require.New(t)

		_, err := uc.Login(ctx, entity.LoginRequest{Email: "finn@example.com", Password: "meow"})

		req.ErrorIs(err, ErrInvalidCredentials)
	})

	t.Run("should reject an unknown email the same way", func(t *testing.T) {
		req := require.New(t)

		_, err := uc.Login(ctx, entity.LoginRequest{Email: "ghost@example.com", Password: "woofwoof"})

		req.ErrorIs(err, ErrInvalidCredentials)
	})

	t.Run("should reject a garbage token", func(t *testing.T) {
		req := require.New(t)

		_, err := uc.ValidateAccessToken("not-a-token")

		req.ErrorIs(err, jwt.ErrInvalidToken)
	})
}
