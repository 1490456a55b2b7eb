// Package storage keeps media files on disk and optionally mirrors them to an
// S3 compatible bucket
package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/spf13/afero"
)

// Directories under the media root
const (
	VideoDir   = "videos"
	PreviewDir = "previews"
	ImageDir   = "img"
)

// Local is a media store rooted at a directory. Every name it accepts is
// relative to the root and can't escape it.
type Local struct {
	fs   *afero.BasePathFs
	root string
}

// NewLocal creates the media root and its sub directories if needed
func NewLocal(root string) (*Local, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve media root, %w", err)
	}

	osFs := afero.NewOsFs()
	for _, dir := range []string{VideoDir, PreviewDir, ImageDir} {
		if err := osFs.MkdirAll(filepath.Join(abs, dir), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create media directory %s, %w", dir, err)
		}
	}

	return &Local{
		fs:   afero.NewBasePathFs(osFs, abs).(*afero.BasePathFs),
		root: abs,
	}, nil
}

// Root returns the absolute media root
func (l *Local) Root() string {
	return l.root
}

// Save writes r to name, truncating whatever was there before
func (l *Local) Save(ctx context.Context, name string, r io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	f, err := l.fs.OpenFile(name, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s for writing, %w", name, err)
	}

	n, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		return n, fmt.Errorf("failed to write %s, %w", name, err)
	}

	if err := f.Close(); err != nil {
		return n, fmt.Errorf("failed to close %s, %w", name, err)
	}

	return n, nil
}

// Path returns the on-disk path of name, for tools like ffmpeg that need one
func (l *Local) Path(name string) (string, error) {
	return l.fs.RealPath(name)
}

func (l *Local) Open(name string) (afero.File, error) {
	return l.fs.Open(name)
}

func (l *Local) Exists(name string) (bool, error) {
	return afero.Exists(l.fs, name)
}

// Dir serves the files of a single media directory over HTTP
func (l *Local) Dir(dir string) http.FileSystem {
	return afero.NewHttpFs(l.fs).Dir(path.Clean("/" + dir))
}
