package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"vidshare/model"
	"vidshare/storage"
	"vidshare/validators"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

const defaultTitle = "Untitled"

type IngestOptions struct {
	// Position of the frame used as preview
	PreviewOffset time.Duration
	// Sniffed content types accepted for uploads, empty accepts anything
	AllowedTypes []string
	// Optional bucket receiving a copy of every stored file
	Mirror Mirror
}

type UploadRequest struct {
	UserID   uint
	Title    string
	Filename string
	Body     io.Reader
}

type UploadResult struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Ingestor stores uploaded videos, renders their preview frame and records
// them in the database.
type Ingestor struct {
	store  Store
	files  FileStore
	frames FrameExtractor
	opts   IngestOptions
}

func NewIngestor(store Store, files FileStore, frames FrameExtractor, opts IngestOptions) *Ingestor {
	return &Ingestor{
		store:  store,
		files:  files,
		frames: frames,
		opts:   opts,
	}
}

// SafeTitle is the title as used in file names and media URLs
func SafeTitle(title string) string {
	return strings.ReplaceAll(title, " ", "_")
}

// Upload runs the whole ingestion. Files are named after the title only, so
// a second upload with the same title replaces the first one's files. Files
// written before a failing step are left on disk.
func (i *Ingestor) Upload(ctx context.Context, req UploadRequest) (*UploadResult, error) {
	body, err := validators.FileValidator(req.Filename, req.Body, i.opts.AllowedTypes)
	if err != nil {
		switch {
		case errors.Is(err, validators.ErrNoFile):
			return nil, newError(ErrValidation, "No video file provided", err)
		case errors.Is(err, validators.ErrNoFileName):
			return nil, newError(ErrValidation, "No selected file", err)
		case errors.Is(err, validators.ErrFileTypeUnsupported):
			return nil, newError(ErrValidation, "Unsupported file type", err)
		default:
			return nil, err
		}
	}

	title := req.Title
	if title == "" {
		title = defaultTitle
	}

	safe := SafeTitle(title)
	videoName := path.Join(storage.VideoDir, safe+filepath.Ext(req.Filename))
	previewName := path.Join(storage.PreviewDir, safe+".png")

	if _, err := i.files.Save(ctx, videoName, body); err != nil {
		return nil, fmt.Errorf("failed to save video, %w", err)
	}

	src, err := i.files.Path(videoName)
	if err != nil {
		return nil, processingError(err)
	}

	dst, err := i.files.Path(previewName)
	if err != nil {
		return nil, processingError(err)
	}

	if err := i.frames.Extract(ctx, src, dst, i.opts.PreviewOffset); err != nil {
		if errors.Is(err, ErrBusy) {
			return nil, err
		}

		return nil, processingError(err)
	}

	if i.opts.Mirror != nil {
		for _, name := range []string{videoName, previewName} {
			if err := i.mirror(ctx, name); err != nil {
				return nil, processingError(err)
			}
		}
	}

	v := &model.Video{
		UserID:  req.UserID,
		Title:   title,
		URL:     "/get_video|" + safe,
		Preview: "/get_preview|" + safe,
	}

	if err := i.store.CreateVideo(ctx, v); err != nil {
		return nil, processingError(err)
	}

	zap.L().Debug("Video ingested", zap.Uint("id", v.ID), zap.String("video", videoName))

	return &UploadResult{
		ID:    v.ID,
		Title: v.Title,
		URL:   v.URL,
	}, nil
}

func (i *Ingestor) mirror(ctx context.Context, name string) error {
	p, err := i.files.Path(name)
	if err != nil {
		return err
	}

	mime, err := mimetype.DetectFile(p)
	if err != nil {
		return fmt.Errorf("failed to detect content type of %s, %w", name, err)
	}

	f, err := i.files.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	return i.opts.Mirror.Put(ctx, name, mime.String(), f, info.Size())
}

func processingError(err error) error {
	return newError(ErrProcessing, "Error processing video: "+err.Error(), err)
}
