//go:generate go run go.uber.org/mock/mockgen -source=user_usecase.go -destination=../mocks/mock_user_usecase.go -package=mocks
package usecase

import (
	"context"
	"time"

	"adoptchat/infrastructure/cache"
	"adoptchat/internal/entity"
	"adoptchat/internal/repository"
)

type UserUsecase interface {
	// Resolve returns the identity of userId, or repository.ErrUserNotFound.
	Resolve(ctx context.Context, userId int64) (entity.UserSnapshot, error)
	// Close stops the cache cleanup. Resolve keeps working afterwards.
	Close()
}

type userUsecase struct {
	userRepo repository.UserRepository
	cache    *cache.MemCache[int64, entity.UserSnapshot]
}

// NewUserUseCase resolves users through userRepo, remembering snapshots for
// ttl. A zero ttl disables caching.
func NewUserUseCase(userRepo repository.UserRepository, ttl time.Duration) UserUsecase {
	u := &userUsecase{
		userRepo: userRepo,
	}
	if ttl > 0 {
		u.cache = cache.NewMemCache[int64, entity.UserSnapshot](ttl, ttl)
	}
	return u
}

func (u *userUsecase) Resolve(ctx context.Context, userId int64) (entity.UserSnapshot, error) {
	if u.cache != nil {
		if snapshot, ok := u.cache.Get(userId); ok {
			return snapshot, nil
		}
	}

	user, err := u.userRepo.Get(ctx, userId)
	if err != nil {
		return entity.UserSnapshot{}, err
	}

	snapshot := user.Snapshot()
	if u.cache != nil {
		u.cache.Set(userId, snapshot)
	}
	return snapshot, nil
}

func (u *userUsecase) Close() {
	if u.cache != nil {
		u.cache.Close()
	}
}
