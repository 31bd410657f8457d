package pull

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Alijeyrad/biomatrix/pkg/s3"
)

// Sink stores exported report files.
type Sink interface {
	Write(ctx context.Context, name string, body []byte) error
}

// DirSink writes reports into a local directory, creating it on first use.
type DirSink struct {
	Dir string
}

func (s DirSink) Write(_ context.Context, name string, body []byte) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.Dir, name), body, 0o644); err != nil {
		return fmt.Errorf("write report %s: %w", name, err)
	}
	return nil
}

// S3Sink uploads reports to the configured bucket prefix.
type S3Sink struct {
	Client *s3.Client
}

func (s S3Sink) Write(ctx context.Context, name string, body []byte) error {
	return s.Client.Put(ctx, name, "text/plain; charset=utf-8", body)
}
