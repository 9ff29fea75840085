package json

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/rs/zerolog"

	"recordmap/internal/metrics"
)

// LoadFile reads the JSON document at path. Errors wrap ErrFileNotFound,
// ErrSyntax or ErrShape.
func LoadFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		metrics.RecordRows("rejected", 1)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("json parser: open %s: %w", path, err)
	}
	defer f.Close()

	rows, err := DecodeAll(f)
	if err != nil {
		metrics.RecordRows("rejected", 1)
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	metrics.RecordRows("loaded", int64(len(rows)))
	return rows, nil
}

// ReadFile is LoadFile for callers that only want data: any failure is
// logged at debug level on the context logger and yields an empty, non-nil
// slice.
func ReadFile(ctx context.Context, path string) []Row {
	rows, err := LoadFile(path)
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Str("path", path).Msg("json file not loaded")
		return []Row{}
	}
	if rows == nil {
		rows = []Row{}
	}
	return rows
}
