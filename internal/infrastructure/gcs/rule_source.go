package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// ErrInvalidURI is returned for URIs that are not gs://bucket/object.
var ErrInvalidURI = errors.New("invalid GCS URI")

// RuleSource fetches the remote rule document from a GCS object.
type RuleSource struct {
	bucket string
	object string
	opts   []option.ClientOption
}

// NewRuleSource builds a source for a gs://bucket/object URI. An empty
// credentialsFile uses application default credentials.
func NewRuleSource(uri, credentialsFile string) (*RuleSource, error) {
	bucket, object, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	return &RuleSource{bucket: bucket, object: object, opts: opts}, nil
}

// Location returns the gs:// URI of the document.
func (s *RuleSource) Location() string {
	return "gs://" + s.bucket + "/" + s.object
}

// Fetch downloads the raw rule document.
func (s *RuleSource) Fetch(ctx context.Context) ([]byte, error) {
	client, err := storage.NewClient(ctx, s.opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	defer client.Close()

	r, err := client.Bucket(s.bucket).Object(s.object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("open GCS object reader %s: %w", s.Location(), err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read GCS object %s: %w", s.Location(), err)
	}
	return data, nil
}

// ParseURI splits gs://bucket/path/to/object into bucket and object name.
func ParseURI(uri string) (bucket, object string, err error) {
	rest, ok := strings.CutPrefix(uri, "gs://")
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidURI, uri)
	}
	bucket, object, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidURI, uri)
	}
	return bucket, object, nil
}
