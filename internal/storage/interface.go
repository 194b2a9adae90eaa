package storage

import (
	"context"
	"io"
)

// DocumentStore archives rendered contract documents. Keys are slash
// separated relative paths such as "contratos/7/assinado.html".
type DocumentStore interface {
	// SaveFile writes the content of reader under key, replacing any
	// previous object.
	SaveFile(ctx context.Context, key string, reader io.Reader) error

	// ReadFile opens the object stored under key. It returns ErrNotExist
	// when nothing is stored there.
	ReadFile(ctx context.Context, key string) (io.ReadCloser, error)

	// FileExists checks if an object exists and returns its size
	FileExists(ctx context.Context, key string) (exists bool, size int64, err error)

	DeleteFile(ctx context.Context, key string) error
}
