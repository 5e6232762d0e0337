package dataset

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"
)

// Name identifies one dataset.
type Name string

const (
	// Directory is dataset A: region name to ordered country list.
	Directory Name = "countylink"
	// Records is dataset B: region name to merged country records.
	Records Name = "merged_country_data"
)

// Source provides raw dataset documents.
type Source interface {
	// Open returns the JSON document for name. The caller closes it.
	Open(ctx context.Context, name Name) (io.ReadCloser, error)
	// ModTime returns when name was last written.
	ModTime(ctx context.Context, name Name) (time.Time, error)
}

// FileSource reads datasets from JSON files.
type FileSource struct {
	DirectoryPath string
	RecordsPath   string
}

func (s FileSource) path(name Name) (string, error) {
	switch name {
	case Directory:
		return s.DirectoryPath, nil
	case Records:
		return s.RecordsPath, nil
	default:
		return "", fmt.Errorf("unknown dataset: %s", name)
	}
}

// Open opens the file backing name.
func (s FileSource) Open(ctx context.Context, name Name) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.path(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	return readCloser{Reader: NewTextReader(f), Closer: f}, nil
}

// ModTime returns the file modification time of name.
func (s FileSource) ModTime(ctx context.Context, name Name) (time.Time, error) {
	p, err := s.path(name)
	if err != nil {
		return time.Time{}, err
	}
	fi, err := os.Stat(p)
	if err != nil {
		return time.Time{}, err
	}
	return fi.ModTime(), nil
}
