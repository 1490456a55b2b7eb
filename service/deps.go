// Package service contains the application logic behind the HTTP handlers:
// accounts, the video catalog and the upload workflow
package service

import (
	"context"
	"io"
	"time"

	"vidshare/model"
	"vidshare/security"

	"github.com/spf13/afero"
)

type Store interface {
	CreateUser(ctx context.Context, u *model.User) error
	UserByEmail(ctx context.Context, email string) (*model.User, error)
	UserByID(ctx context.Context, id uint) (*model.User, error)

	CreateVideo(ctx context.Context, v *model.Video) error
	Videos(ctx context.Context) ([]model.Video, error)
	VideosByUser(ctx context.Context, userID uint) ([]model.Video, error)
	DeleteVideo(ctx context.Context, id uint) error

	CreateComment(ctx context.Context, c *model.Comment) error
	CommentsByVideo(ctx context.Context, videoID uint) ([]model.Comment, error)
}

type TokenIssuer interface {
	Issue(id security.Identity) (string, error)
}

// FileStore holds media files under names relative to the media root
type FileStore interface {
	Save(ctx context.Context, name string, r io.Reader) (int64, error)
	Path(name string) (string, error)
	Open(name string) (afero.File, error)
}

// FrameExtractor writes the frame of src at offset at into dst as an image
type FrameExtractor interface {
	Extract(ctx context.Context, src, dst string, at time.Duration) error
}

// Mirror receives a copy of every stored media file
type Mirror interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
}
