package db

import (
	"context"
	"errors"
	"fmt"

	"vidshare/model"

	"gorm.io/gorm"
)

// Store runs every query of the app against a single gorm connection.
// Writes go through a transaction so a failed statement rolls back.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying connection, used by tests and shutdown code
func (s *Store) DB() *gorm.DB {
	return s.db
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w, %w", model.ErrNotFound, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w, %w", model.ErrDuplicate, err)
	default:
		return err
	}
}

func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(u).Error
	})

	return translate(err)
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, translate(err)
	}

	return &u, nil
}

func (s *Store) UserByID(ctx context.Context, id uint) (*model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, translate(err)
	}

	return &u, nil
}

func (s *Store) CreateVideo(ctx context.Context, v *model.Video) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(v).Error
	})

	return translate(err)
}

// Videos returns every video ordered by id
func (s *Store) Videos(ctx context.Context) ([]model.Video, error) {
	videos := []model.Video{}
	if err := s.db.WithContext(ctx).Order("id asc").Find(&videos).Error; err != nil {
		return nil, translate(err)
	}

	return videos, nil
}

func (s *Store) VideosByUser(ctx context.Context, userID uint) ([]model.Video, error) {
	videos := []model.Video{}
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id asc").
		Find(&videos).
		Error
	if err != nil {
		return nil, translate(err)
	}

	return videos, nil
}

// DeleteVideo removes the row with the given id. Files on disk and the
// video's comments are left alone.
func (s *Store) DeleteVideo(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var v model.Video
		if err := tx.First(&v, id).Error; err != nil {
			return err
		}

		return tx.Delete(&v).Error
	})

	return translate(err)
}

func (s *Store) CreateComment(ctx context.Context, c *model.Comment) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(c).Error
	})

	return translate(err)
}

// CommentsByVideo returns the comments of a video in creation order. The
// video itself doesn't have to exist.
func (s *Store) CommentsByVideo(ctx context.Context, videoID uint) ([]model.Comment, error) {
	comments := []model.Comment{}
	err := s.db.WithContext(ctx).
		Where("video_id = ?", videoID).
		Order("id asc").
		Find(&comments).
		Error
	if err != nil {
		return nil, translate(err)
	}

	return comments, nil
}
