package usecase

import (
	"context"
	"errors"

	"adoptchat/internal/entity"
	"adoptchat/internal/repository"
	"adoptchat/pkg/jwt"

	"golang.org/x/crypto/bcrypt"
)

type AuthUsecase interface {
	Register(ctx context.Context, req entity.RegisterRequest) (entity.AuthResponse, error)
	Login(ctx context.Context, req entity.LoginRequest) (entity.AuthResponse, error)
	ValidateAccessToken(token string) (*entity.TokenClaims, error)
}

type authUsecase struct {
	userRepo   repository.UserRepository
	jwtManager *jwt.JWTManager
}

func NewAuthUsecase(userRepo repository.UserRepository, jwtManager *jwt.JWTManager) AuthUsecase {
	return &authUsecase{
		userRepo:   userRepo,
		jwtManager: jwtManager,
	}
}

func (u *authUsecase) Register(ctx context.Context, req entity.RegisterRequest) (entity.AuthResponse, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return entity.AuthResponse{}, err
	}

	user := entity.User{
		Email:    req.Email,
		Password: string(hashedPassword),
		Name:     req.Name,
	}

	userId, err := u.userRepo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrEmailAlreadyExists) {
			return entity.AuthResponse{}, ErrEmailAlreadyTaken
		}
		return entity.AuthResponse{}, err
	}
	user.Id = userId

	return u.issue(user)
}

func (u *authUsecase) Login(ctx context.Context, req entity.LoginRequest) (entity.AuthResponse, error) {
	user, err := u.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return entity.AuthResponse{}, ErrInvalidCredentials
		}
		return entity.AuthResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return entity.AuthResponse{}, ErrInvalidCredentials
	}

	return u.issue(user)
}

func (u *authUsecase) issue(user entity.User) (entity.AuthResponse, error) {
	accessToken, err := u.jwtManager.GenerateAccessToken(user)
	if err != nil {
		return entity.AuthResponse{}, err
	}

	return entity.AuthResponse{
		AccessToken: accessToken,
		User:        user.Snapshot(),
	}, nil
}

func (u *authUsecase) ValidateAccessToken(token string) (*entity.TokenClaims, error) {
	return u.jwtManager.ValidateAccessToken(token)
}
