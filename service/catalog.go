package service

import (
	"context"
	"errors"
	"fmt"

	"vidshare/model"
	"vidshare/security"
)

type Creator struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type CommentEntry struct {
	ID       uint   `json:"id"`
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Text     string `json:"text"`
}

type VideoSummary struct {
	ID          uint    `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	URL         string  `json:"url"`
	Preview     string  `json:"preview"`
}

// VideoEntry is a video as shown in the public listing. Creator is nil when
// the uploading user no longer exists.
type VideoEntry struct {
	VideoSummary
	Creator  *Creator       `json:"creator"`
	Comments []CommentEntry `json:"comments"`
}

type CommentRequest struct {
	VideoID *uint   `json:"video_id"`
	Text    *string `json:"text"`
}

type Catalog struct {
	store Store
}

func NewCatalog(store Store) *Catalog {
	return &Catalog{store: store}
}

func summarize(v model.Video) VideoSummary {
	return VideoSummary{
		ID:          v.ID,
		Title:       v.Title,
		Description: v.Description,
		URL:         v.URL,
		Preview:     v.Preview,
	}
}

// ListVideos returns every video with its creator and comments. Each video
// costs two extra queries.
func (c *Catalog) ListVideos(ctx context.Context) ([]VideoEntry, error) {
	videos, err := c.store.Videos(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch videos, %w", err)
	}

	entries := make([]VideoEntry, 0, len(videos))
	for _, v := range videos {
		entry := VideoEntry{
			VideoSummary: summarize(v),
			Comments:     []CommentEntry{},
		}

		user, err := c.store.UserByID(ctx, v.UserID)
		switch {
		case err == nil:
			entry.Creator = &Creator{ID: user.ID, Username: user.Username, Email: user.Email}
		case !errors.Is(err, model.ErrNotFound):
			return nil, fmt.Errorf("failed to fetch creator of video %d, %w", v.ID, err)
		}

		comments, err := c.store.CommentsByVideo(ctx, v.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch comments of video %d, %w", v.ID, err)
		}

		for _, cm := range comments {
			entry.Comments = append(entry.Comments, CommentEntry{
				ID:       cm.ID,
				UserID:   cm.UserID,
				Username: cm.Username,
				Text:     cm.Text,
			})
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

func (c *Catalog) UserVideos(ctx context.Context, userID uint) ([]VideoSummary, error) {
	videos, err := c.store.VideosByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user videos, %w", err)
	}

	out := make([]VideoSummary, 0, len(videos))
	for _, v := range videos {
		out = append(out, summarize(v))
	}

	return out, nil
}

// CreateComment stores a comment by the identity's user. The video is not
// required to exist.
func (c *Catalog) CreateComment(ctx context.Context, id security.Identity, req CommentRequest) error {
	if req.VideoID == nil || req.Text == nil {
		return newError(ErrValidation, "Invalid data", nil)
	}

	err := c.store.CreateComment(ctx, &model.Comment{
		UserID:   id.ID,
		Username: id.Username,
		VideoID:  *req.VideoID,
		Text:     *req.Text,
	})
	if err != nil {
		return fmt.Errorf("failed to create comment, %w", err)
	}

	return nil
}

// DeleteVideo removes the video row only. Any authenticated user may delete
// any video.
func (c *Catalog) DeleteVideo(ctx context.Context, id uint) error {
	if err := c.store.DeleteVideo(ctx, id); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return newError(ErrNotFound, "Video not found", err)
		}

		return newError(ErrProcessing, "Failed to delete video", err)
	}

	return nil
}
