//go:generate go run go.uber.org/mock/mockgen -source=user_repository.go -destination=../mocks/mock_user_repository.go -package=mocks
package repository

import (
	"context"
	"errors"
	"strings"
	"sync"

	"adoptchat/internal/entity"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const usersCollection = "users"

type UserRepository interface {
	Get(ctx context.Context, userId int64) (entity.User, error)
	GetByEmail(ctx context.Context, email string) (entity.User, error)
	Create(ctx context.Context, user entity.User) (int64, error)
}

type userRepository struct {
	db *mongo.Database
}

func NewUserRepository(db *mongo.Database) UserRepository {
	return &userRepository{
		db: db,
	}
}

// EnsureUserIndexes enforces email uniqueness.
func EnsureUserIndexes(ctx context.Context, db *mongo.Database) error {
	collection := db.Collection(usersCollection)
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return storageError("create user indexes", err)
	}
	return nil
}

func (r *userRepository) Get(ctx context.Context, userId int64) (entity.User, error) {
	return r.findOne(ctx, bson.M{"_id": userId})
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (entity.User, error) {
	return r.findOne(ctx, bson.M{"email": normalizeEmail(email)})
}

func (r *userRepository) findOne(ctx context.Context, filter bson.M) (entity.User, error) {
	collection := r.db.Collection(usersCollection)

	var user entity.User
	err := collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return entity.User{}, ErrUserNotFound
		}
		return entity.User{}, storageError("find user", err)
	}

	return user, nil
}

func (r *userRepository) Create(ctx context.Context, user entity.User) (int64, error) {
	id, err := nextSequence(ctx, r.db, usersCollection)
	if err != nil {
		return 0, storageError("allocate user id", err)
	}

	user.Id = id
	user.Email = normalizeEmail(user.Email)
	user.CreatedAt = now()

	collection := r.db.Collection(usersCollection)
	if _, err := collection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return 0, ErrEmailAlreadyExists
		}
		return 0, storageError("insert user", err)
	}

	return user.Id, nil
}

type memoryUserRepository struct {
	mu    sync.RWMutex
	seq   int64
	users map[int64]entity.User
}

// NewMemoryUserRepository keeps users in process memory.
func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{users: make(map[int64]entity.User)}
}

func (r *memoryUserRepository) Get(_ context.Context, userId int64) (entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[userId]
	if !ok {
		return entity.User{}, ErrUserNotFound
	}
	return user, nil
}

func (r *memoryUserRepository) GetByEmail(_ context.Context, email string) (entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	email = normalizeEmail(email)
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return entity.User{}, ErrUserNotFound
}

func (r *memoryUserRepository) Create(_ context.Context, user entity.User) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user.Email = normalizeEmail(user.Email)
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return 0, ErrEmailAlreadyExists
		}
	}

	r.seq++
	user.Id = r.seq
	user.CreatedAt = now()
	r.users[user.Id] = user

	return user.Id, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
