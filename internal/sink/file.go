package sink

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"codeberg.org/mutker/hostwatch/internal/alert"
	"codeberg.org/mutker/hostwatch/internal/errors"
)

const (
	defaultDirPerm  = 0o755
	defaultFilePerm = 0o644
)

// File appends one line per alert to a text file. The file is opened and
// closed on every write; no handle is held between alerts.
type File struct {
	path string
	mu   sync.Mutex
}

func NewFile(path string) *File {
	return &File{path: path}
}

func (*File) Name() string {
	return "file"
}

func (f *File) Path() string {
	return f.path
}

func (f *File) Record(ctx context.Context, r alert.Record) error {
	errFactory := errors.New()

	if err := ctx.Err(); err != nil {
		return errFactory.Wrap(ErrRecordCanceled, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, defaultDirPerm); err != nil {
			return errFactory.WithData(ErrFileOpen, struct {
				Phase string
				Path  string
				Error string
			}{
				Phase: "create_directory",
				Path:  dir,
				Error: err.Error(),
			})
		}
	}

	fh, err := os.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, defaultFilePerm)
	if err != nil {
		return errFactory.Wrap(ErrFileOpen, err)
	}

	_, writeErr := fh.WriteString(r.Message() + "\n")
	closeErr := fh.Close()

	if writeErr != nil {
		return errFactory.Wrap(ErrFileWrite, writeErr)
	}
	if closeErr != nil {
		return errFactory.Wrap(ErrFileWrite, closeErr)
	}

	return nil
}
