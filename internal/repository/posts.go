package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"inkwell/internal/models"
)

// Posts is the post summary store contract, including the anonymous like
// helpers that operate on a post's like rows and counter.
type Posts interface {
	Create(ctx context.Context, post *models.Post) error
	FindByID(ctx context.Context, id string) (*models.Post, error)
	List(ctx context.Context) ([]models.Post, error)

	FindLike(ctx context.Context, postID, fingerprint string) (*models.Like, error)
	CreateLike(ctx context.Context, like *models.Like) error
	DeleteLike(ctx context.Context, like *models.Like) error
	AdjustLikeCount(ctx context.Context, postID string, delta int) error
}

type gormPosts struct {
	db *gorm.DB
}

func NewPosts(db *gorm.DB) Posts {
	return &gormPosts{db: db}
}

func (r *gormPosts) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

func (r *gormPosts) FindByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find post: %w", err)
	}
	return &post, nil
}

func (r *gormPosts) List(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	if err := r.db.WithContext(ctx).Order("id desc").Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

func (r *gormPosts) FindLike(ctx context.Context, postID, fingerprint string) (*models.Like, error) {
	var like models.Like
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND fingerprint = ?", postID, fingerprint).
		First(&like).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find like: %w", err)
	}
	return &like, nil
}

func (r *gormPosts) CreateLike(ctx context.Context, like *models.Like) error {
	if err := r.db.WithContext(ctx).Create(like).Error; err != nil {
		return fmt.Errorf("failed to create like: %w", err)
	}
	return nil
}

func (r *gormPosts) DeleteLike(ctx context.Context, like *models.Like) error {
	if err := r.db.WithContext(ctx).Delete(like).Error; err != nil {
		return fmt.Errorf("failed to delete like: %w", err)
	}
	return nil
}

func (r *gormPosts) AdjustLikeCount(ctx context.Context, postID string, delta int) error {
	err := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", postID).
		Update("like_count", gorm.Expr("like_count + ?", delta)).Error
	if err != nil {
		return fmt.Errorf("failed to adjust like count: %w", err)
	}
	return nil
}
