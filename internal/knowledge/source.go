package knowledge

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pageza/nutrichat/backend/internal/database"
)

// SourceOptions carries the clients remote sources need.
type SourceOptions struct {
	// S3 is required for s3:// references.
	S3 S3GetObjectAPI
	// Table overrides DefaultTable for database references.
	Table  string
	Logger zerolog.Logger
}

// OpenSource resolves a source reference:
//
//	s3://bucket/key            CSV object in S3
//	postgres://... sqlite://.. table in a database
//	anything else              local CSV file
//
// Database sources hold a connection; callers should close them with CloseSource.
func OpenSource(ref string, opts SourceOptions) (Source, error) {
	switch {
	case strings.HasPrefix(ref, "s3://"):
		bucket, key, err := ParseS3URI(ref)
		if err != nil {
			return nil, loadErr(ref, err)
		}
		return S3Source{Client: opts.S3, Bucket: bucket, Key: key}, nil
	case database.IsDSN(ref):
		db, err := database.Open(ref, opts.Logger)
		if err != nil {
			return nil, loadErr("knowledge database", err)
		}
		scheme, _, _ := strings.Cut(ref, "://")
		return &TableSource{DB: db, Table: opts.Table, owned: true, label: scheme}, nil
	case ref == "":
		return nil, loadErr("knowledge table", fmt.Errorf("%w: no source configured", ErrSourceNotFound))
	default:
		return FileSource{Path: ref}, nil
	}
}

// CloseSource releases any connection held by src.
func CloseSource(src Source) error {
	if c, ok := src.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

// ParseS3URI splits s3://bucket/key into its parts.
func ParseS3URI(uri string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(uri, "s3://")
	if !ok {
		return "", "", fmt.Errorf("not an s3 URI: %q", uri)
	}
	bucket, key, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("s3 URI must be s3://bucket/key, got %q", uri)
	}
	return bucket, key, nil
}
