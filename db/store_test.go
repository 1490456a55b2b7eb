package db

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"vidshare/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	// Pre-create the file so the docker mount check passes inside containers
	path := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	conn, err := Open("sqlite", path)
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return NewStore(conn)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open("mysql", "whatever")
	assert.Error(t, err)
}

func TestStore_CreateUser_DuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, &model.User{Username: "ann", Email: "a@x", Password: "h"}))

	err := s.CreateUser(ctx, &model.User{Username: "bob", Email: "a@x", Password: "h"})
	assert.ErrorIs(t, err, model.ErrDuplicate)

	var count int64
	require.NoError(t, s.DB().Model(&model.User{}).Where("email = ?", "a@x").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestStore_UserLookups(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := &model.User{Username: "ann", Email: "a@x", Password: "h"}
	require.NoError(t, s.CreateUser(ctx, u))
	require.NotZero(t, u.ID)

	byEmail, err := s.UserByEmail(ctx, "a@x")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	byID, err := s.UserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "ann", byID.Username)

	_, err = s.UserByEmail(ctx, "nobody@x")
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = s.UserByID(ctx, 999)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestStore_DeleteVideo_KeepsComments(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	v := &model.Video{UserID: 1, Title: "Demo", URL: "/get_video|Demo", Preview: "/get_preview|Demo"}
	require.NoError(t, s.CreateVideo(ctx, v))

	require.NoError(t, s.CreateComment(ctx, &model.Comment{UserID: 1, Username: "ann", VideoID: v.ID, Text: "first"}))
	require.NoError(t, s.CreateComment(ctx, &model.Comment{UserID: 1, Username: "ann", VideoID: v.ID, Text: "second"}))

	require.NoError(t, s.DeleteVideo(ctx, v.ID))

	videos, err := s.Videos(ctx)
	require.NoError(t, err)
	assert.Empty(t, videos)

	comments, err := s.CommentsByVideo(ctx, v.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Text)
	assert.Equal(t, "second", comments[1].Text)

	assert.ErrorIs(t, s.DeleteVideo(ctx, v.ID), model.ErrNotFound)
}

func TestStore_CommentOnMissingVideo(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// No constraint ties comments to an existing video
	require.NoError(t, s.CreateComment(ctx, &model.Comment{UserID: 7, Username: "ghost", VideoID: 42, Text: "hi"}))

	comments, err := s.CommentsByVideo(ctx, 42)
	require.NoError(t, err)
	assert.Len(t, comments, 1)
}

func TestStore_VideosByUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateVideo(ctx, &model.Video{UserID: 1, Title: "a", URL: "u", Preview: "p"}))
	require.NoError(t, s.CreateVideo(ctx, &model.Video{UserID: 2, Title: "b", URL: "u", Preview: "p"}))
	require.NoError(t, s.CreateVideo(ctx, &model.Video{UserID: 1, Title: "c", URL: "u", Preview: "p"}))

	videos, err := s.VideosByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, videos, 2)
	assert.Equal(t, "a", videos[0].Title)
	assert.Equal(t, "c", videos[1].Title)

	none, err := s.VideosByUser(ctx, 3)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}
