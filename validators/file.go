// Package validators contains checks run on user input before it is processed
package validators

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrNoFile              = errors.New("no video file provided")
	ErrNoFileName          = errors.New("no selected file")
	ErrFileTypeUnsupported = errors.New("unsupported file type")
)

// sniffLen is how much of the payload is inspected to detect its type
const sniffLen = 3072

// FileValidator checks an uploaded payload. When allowed is not empty the
// payload's sniffed content type has to match one of its entries, either
// exactly or through a "type/*" wildcard. The returned reader yields the
// whole payload, including the sniffed bytes.
func FileValidator(filename string, r io.Reader, allowed []string) (io.Reader, error) {
	if r == nil {
		return nil, ErrNoFile
	}

	if filename == "" {
		return nil, ErrNoFileName
	}

	if len(allowed) == 0 {
		return r, nil
	}

	br := bufio.NewReaderSize(r, sniffLen)

	head, err := br.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read file header, %w", err)
	}

	mime := mimetype.Detect(head)
	if !allowedType(mime, allowed) {
		return nil, fmt.Errorf("%w: %s", ErrFileTypeUnsupported, mime.String())
	}

	return br, nil
}

func allowedType(mime *mimetype.MIME, allowed []string) bool {
	for _, a := range allowed {
		if prefix, ok := strings.CutSuffix(a, "/*"); ok {
			if strings.HasPrefix(mime.String(), prefix+"/") {
				return true
			}
			continue
		}

		if mime.Is(a) {
			return true
		}
	}

	return false
}
