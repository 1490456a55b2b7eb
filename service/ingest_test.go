package service

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"vidshare/db"
	"vidshare/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIngestor(t *testing.T, frames FrameExtractor, opts IngestOptions) (*Ingestor, *uploadView) {
	t.Helper()

	store := newTestStore(t)
	files := newTestFiles(t)

	if opts.PreviewOffset == 0 {
		opts.PreviewOffset = 5 * time.Second
	}

	return NewIngestor(store, files, frames, opts), &uploadView{store: store, root: files.Root()}
}

// uploadView gives tests direct access to what an upload left behind
type uploadView struct {
	store *db.Store
	root  string
}

func (v *uploadView) videos(t *testing.T) []model.Video {
	t.Helper()

	videos, err := v.store.Videos(context.Background())
	require.NoError(t, err)
	return videos
}

func (v *uploadView) read(t *testing.T, name string) []byte {
	t.Helper()

	b, err := os.ReadFile(filepath.Join(v.root, name))
	require.NoError(t, err)
	return b
}

func (v *uploadView) exists(name string) bool {
	_, err := os.Stat(filepath.Join(v.root, name))
	return err == nil
}

func TestUpload_Demo(t *testing.T) {
	frames := &fakeExtractor{}
	ing, view := newTestIngestor(t, frames, IngestOptions{})

	res, err := ing.Upload(context.Background(), UploadRequest{
		UserID:   3,
		Title:    "Demo",
		Filename: "clip.mp4",
		Body:     bytes.NewReader([]byte("video bytes")),
	})
	require.NoError(t, err)

	assert.NotZero(t, res.ID)
	assert.Equal(t, "Demo", res.Title)
	assert.Equal(t, "/get_video|Demo", res.URL)

	assert.Equal(t, []byte("video bytes"), view.read(t, "videos/Demo.mp4"))
	assert.Equal(t, fakePNG, view.read(t, "previews/Demo.png"))

	require.Len(t, frames.calls, 1)
	assert.Equal(t, 5*time.Second, frames.calls[0].At)
	assert.Equal(t, filepath.Join(view.root, "videos", "Demo.mp4"), frames.calls[0].Src)

	videos := view.videos(t)
	require.Len(t, videos, 1)
	assert.Equal(t, uint(3), videos[0].UserID)
	assert.Equal(t, "/get_video|Demo", videos[0].URL)
	assert.Equal(t, "/get_preview|Demo", videos[0].Preview)
	assert.Nil(t, videos[0].Description)
}

func TestUpload_TitleSpacesAndDefault(t *testing.T) {
	ing, view := newTestIngestor(t, &fakeExtractor{}, IngestOptions{})
	ctx := context.Background()

	res, err := ing.Upload(ctx, UploadRequest{Title: "My first clip", Filename: "a.mov", Body: bytes.NewReader([]byte("x"))})
	require.NoError(t, err)
	assert.Equal(t, "My first clip", res.Title)
	assert.Equal(t, "/get_video|My_first_clip", res.URL)
	assert.True(t, view.exists("videos/My_first_clip.mov"))
	assert.True(t, view.exists("previews/My_first_clip.png"))

	res, err = ing.Upload(ctx, UploadRequest{Filename: "b.mp4", Body: bytes.NewReader([]byte("y"))})
	require.NoError(t, err)
	assert.Equal(t, "Untitled", res.Title)
	assert.True(t, view.exists("videos/Untitled.mp4"))
}

func TestUpload_MissingFile(t *testing.T) {
	cases := map[string]struct {
		req     UploadRequest
		message string
	}{
		"no payload":     {UploadRequest{Title: "Demo", Filename: "a.mp4"}, "No video file provided"},
		"empty filename": {UploadRequest{Title: "Demo", Body: bytes.NewReader([]byte("x"))}, "No selected file"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			frames := &fakeExtractor{}
			ing, view := newTestIngestor(t, frames, IngestOptions{})

			_, err := ing.Upload(context.Background(), tc.req)
			require.ErrorIs(t, err, ErrValidation)

			var e *Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, tc.message, e.Message)

			assert.Empty(t, view.videos(t))
			assert.False(t, view.exists("videos/Demo.mp4"))
			assert.False(t, view.exists("previews/Demo.png"))
			assert.Empty(t, frames.calls)
		})
	}
}

func TestUpload_SameTitleOverwrites(t *testing.T) {
	ing, view := newTestIngestor(t, &fakeExtractor{}, IngestOptions{})
	ctx := context.Background()

	first, err := ing.Upload(ctx, UploadRequest{Title: "Demo", Filename: "a.mp4", Body: bytes.NewReader([]byte("the first, longer payload"))})
	require.NoError(t, err)

	second, err := ing.Upload(ctx, UploadRequest{Title: "Demo", Filename: "b.mp4", Body: bytes.NewReader([]byte("second"))})
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, []byte("second"), view.read(t, "videos/Demo.mp4"))

	videos := view.videos(t)
	require.Len(t, videos, 2)
	assert.Equal(t, videos[0].URL, videos[1].URL)
	assert.Equal(t, videos[0].Preview, videos[1].Preview)
}

func TestUpload_ExtractionFailure(t *testing.T) {
	frames := &fakeExtractor{err: errors.New("moov atom not found")}
	ing, view := newTestIngestor(t, frames, IngestOptions{})

	_, err := ing.Upload(context.Background(), UploadRequest{Title: "Broken", Filename: "a.mp4", Body: bytes.NewReader([]byte("garbage"))})
	require.ErrorIs(t, err, ErrProcessing)

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "Error processing video: moov atom not found", e.Message)

	// The stored video is not cleaned up
	assert.True(t, view.exists("videos/Broken.mp4"))
	assert.False(t, view.exists("previews/Broken.png"))
	assert.Empty(t, view.videos(t))
}

func TestUpload_Busy(t *testing.T) {
	frames := &fakeExtractor{err: newError(ErrBusy, "Server is busy, please try again later", ErrQueueFull)}
	ing, view := newTestIngestor(t, frames, IngestOptions{})

	_, err := ing.Upload(context.Background(), UploadRequest{Title: "Demo", Filename: "a.mp4", Body: bytes.NewReader([]byte("x"))})
	assert.ErrorIs(t, err, ErrBusy)
	assert.NotErrorIs(t, err, ErrProcessing)
	assert.Empty(t, view.videos(t))
}

func TestUpload_AllowedTypes(t *testing.T) {
	ing, view := newTestIngestor(t, &fakeExtractor{}, IngestOptions{AllowedTypes: []string{"video/*"}})

	_, err := ing.Upload(context.Background(), UploadRequest{Title: "Demo", Filename: "a.mp4", Body: bytes.NewReader([]byte("just text"))})
	assert.ErrorIs(t, err, ErrValidation)
	assert.False(t, view.exists("videos/Demo.mp4"))
}

func TestUpload_Mirror(t *testing.T) {
	mirror := &fakeMirror{}
	ing, _ := newTestIngestor(t, &fakeExtractor{}, IngestOptions{Mirror: mirror})

	_, err := ing.Upload(context.Background(), UploadRequest{Title: "Demo", Filename: "a.mp4", Body: bytes.NewReader([]byte("video bytes"))})
	require.NoError(t, err)

	require.Len(t, mirror.objects, 2)
	assert.Equal(t, []byte("video bytes"), mirror.objects["videos/Demo.mp4"].Body)
	assert.Equal(t, fakePNG, mirror.objects["previews/Demo.png"].Body)
	assert.Equal(t, "image/png", mirror.objects["previews/Demo.png"].ContentType)
}

func TestUpload_MirrorFailure(t *testing.T) {
	mirror := &fakeMirror{err: errors.New("bucket gone")}
	ing, view := newTestIngestor(t, &fakeExtractor{}, IngestOptions{Mirror: mirror})

	_, err := ing.Upload(context.Background(), UploadRequest{Title: "Demo", Filename: "a.mp4", Body: bytes.NewReader([]byte("x"))})
	assert.ErrorIs(t, err, ErrProcessing)
	assert.True(t, view.exists("videos/Demo.mp4"))
	assert.True(t, view.exists("previews/Demo.png"))
	assert.Empty(t, view.videos(t))
}
