package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"inkwell/internal/models"
)

// ErrNotFound is returned when a looked-up record does not exist.
var ErrNotFound = errors.New("record not found")

// Users is the credential store contract. Handlers talk to this interface
// instead of issuing queries themselves, so a transaction-bound
// implementation can be swapped in per request.
type Users interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Save(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, user *models.User) error
	DeletePostsOwnedBy(ctx context.Context, userID string) error
}

type gormUsers struct {
	db *gorm.DB
}

// NewUsers returns a Users repository backed by the given database handle.
// Pass a transaction handle to scope all operations to that transaction.
func NewUsers(db *gorm.DB) Users {
	return &gormUsers{db: db}
}

func (r *gormUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user by id: %w", err)
	}
	return &user, nil
}

func (r *gormUsers) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user by username: %w", err)
	}
	return &user, nil
}

func (r *gormUsers) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *gormUsers) Save(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

func (r *gormUsers) Delete(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Delete(user).Error; err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// DeletePostsOwnedBy removes every post owned by the user along with the
// likes attached to those posts. Runs inside the account-deletion
// transaction so the cascade is atomic with the user row removal.
func (r *gormUsers) DeletePostsOwnedBy(ctx context.Context, userID string) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("post_id IN (?)",
		tx.Model(&models.Post{}).Select("id").Where("user_id = ?", userID),
	).Delete(&models.Like{}).Error; err != nil {
		return fmt.Errorf("failed to delete likes for user posts: %w", err)
	}
	if err := tx.Where("user_id = ?", userID).Delete(&models.Post{}).Error; err != nil {
		return fmt.Errorf("failed to delete user posts: %w", err)
	}
	return nil
}
