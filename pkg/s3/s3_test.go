package s3

import (
	"context"
	"strings"
	"testing"

	"github.com/Alijeyrad/biomatrix/config"
)

func TestNewRequiresBucket(t *testing.T) {
	if _, err := New(context.Background(), config.S3Config{Region: "us-east-1"}); err == nil {
		t.Fatal("New() accepted an empty bucket")
	}
}

func TestKeyAndPresign(t *testing.T) {
	c, err := New(context.Background(), config.S3Config{
		Endpoint:        "http://localhost:9000",
		Region:          "us-east-1",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		Bucket:          "reports",
		Prefix:          "biomatrix/reports",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	tests := []struct {
		name string
		want string
	}{
		{"7CADPat_1001_20150301_A10_report.txt", "biomatrix/reports/7CADPat_1001_20150301_A10_report.txt"},
		{"nested/file.txt", "biomatrix/reports/nested/file.txt"},
	}
	for _, tt := range tests {
		if got := c.Key(tt.name); got != tt.want {
			t.Errorf("Key(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}

	// Presigning is local; no request reaches the endpoint.
	url, err := c.PresignDownload(context.Background(), "a.txt")
	if err != nil {
		t.Fatalf("PresignDownload() error = %v", err)
	}
	if !strings.HasPrefix(url, "http://localhost:9000/reports/biomatrix/reports/a.txt?") {
		t.Errorf("PresignDownload() = %q", url)
	}
}
