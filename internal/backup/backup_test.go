package backup

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Paintersrp/citegraph/internal/config"
)

func writeLibraryFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func TestArchiveRestoreRoundTrip(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	writeLibraryFile(t, src, "papers/a.md", "---\ntitle: A\n---\n")
	writeLibraryFile(t, src, "papers/nested/b.md", "---\ntitle: B\n---\n")
	writeLibraryFile(t, src, "papers/.a.md.123", "partial")
	writeLibraryFile(t, src, "relationships.yaml", "relationships: []\n")
	writeLibraryFile(t, src, "reviews/review-2024-03-01.md", "# Review\n")
	writeLibraryFile(t, src, "scratch.txt", "not part of the library")

	var buf bytes.Buffer
	count, err := Archive(src, Entries("reviews"), &buf)
	if err != nil {
		t.Fatalf("Archive returned error: %v", err)
	}
	if count != 4 {
		t.Fatalf("expected 4 archived files, got %d", count)
	}

	dst := t.TempDir()
	restored, err := Restore(&buf, dst)
	if err != nil {
		t.Fatalf("Restore returned error: %v", err)
	}
	if restored != 4 {
		t.Fatalf("expected 4 restored files, got %d", restored)
	}

	data, err := os.ReadFile(filepath.Join(dst, "papers", "nested", "b.md"))
	if err != nil {
		t.Fatalf("expected nested paper to be restored: %v", err)
	}
	if string(data) != "---\ntitle: B\n---\n" {
		t.Fatalf("unexpected restored content %q", data)
	}
	for _, rel := range []string{"scratch.txt", "papers/.a.md.123"} {
		if _, err := os.Stat(filepath.Join(dst, filepath.FromSlash(rel))); !os.IsNotExist(err) {
			t.Fatalf("expected %s to be left out of the archive", rel)
		}
	}
}

func TestEntriesSkipsAbsoluteReviewDir(t *testing.T) {
	t.Parallel()

	roots := Entries(filepath.Join(string(filepath.Separator), "var", "reviews"))
	if len(roots) != 3 {
		t.Fatalf("expected absolute review directory to be skipped, got %v", roots)
	}
}

func TestRestoreRejectsEscapingEntries(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	body := []byte("boom")
	if err := tw.WriteHeader(&tar.Header{Name: "../evil.md", Mode: 0o644, Size: int64(len(body)), Typeflag: tar.TypeReg}); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	if _, err := tw.Write(body); err != nil {
		t.Fatalf("Write: %v", err)
	}
	tw.Close()
	gz.Close()

	dst := t.TempDir()
	if _, err := Restore(&buf, dst); !errors.Is(err, ErrUnsafePath) {
		t.Fatalf("expected ErrUnsafePath, got %v", err)
	}
}

func TestClientKeyLayout(t *testing.T) {
	t.Parallel()

	c := &Client{bucket: "b", prefix: "citegraph"}
	key := c.Key("ml", time.Date(2024, 3, 1, 9, 30, 5, 0, time.UTC))
	if key != "citegraph/ml/20240301T093005Z.tar.gz" {
		t.Fatalf("unexpected key %q", key)
	}
}

func TestNewClientRequiresBucket(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(context.Background(), config.BackupConfig{}); err == nil {
		t.Fatalf("expected missing bucket to be rejected")
	}
}

func TestPushPullAgainstBucket(t *testing.T) {
	bucket := os.Getenv("CITEGRAPH_TEST_S3_BUCKET")
	if bucket == "" {
		t.Skip("CITEGRAPH_TEST_S3_BUCKET not set")
	}

	ctx := context.Background()
	client, err := NewClient(ctx, config.BackupConfig{
		Bucket:          bucket,
		Prefix:          "citegraph-test",
		Region:          os.Getenv("AWS_REGION"),
		Endpoint:        os.Getenv("CITEGRAPH_TEST_S3_ENDPOINT"),
		AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
	})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	src := t.TempDir()
	writeLibraryFile(t, src, "papers/a.md", "---\ntitle: A\n---\n")
	key, _, err := client.Push(ctx, "roundtrip", src, Entries(""), time.Now())
	if err != nil {
		t.Fatalf("Push returned error: %v", err)
	}

	latest, err := client.Latest(ctx, "roundtrip")
	if err != nil {
		t.Fatalf("Latest returned error: %v", err)
	}
	if latest != key {
		t.Fatalf("expected latest %q, got %q", key, latest)
	}

	dst := t.TempDir()
	if _, err := client.Pull(ctx, key, dst); err != nil {
		t.Fatalf("Pull returned error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dst, "papers", "a.md")); err != nil {
		t.Fatalf("expected paper after pull: %v", err)
	}
}
