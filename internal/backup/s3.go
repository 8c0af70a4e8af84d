package backup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/Paintersrp/citegraph/internal/config"
	"github.com/Paintersrp/citegraph/pkg/logger"
)

const archiveSuffix = ".tar.gz"

// ErrNoBackups is returned by Latest when the bucket holds no archive for
// the library.
var ErrNoBackups = errors.New("no backups found")

type Object struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Client pushes and pulls library archives.
type Client struct {
	s3     *s3.Client
	bucket string
	prefix string
}

// NewClient builds an S3 client from the library backup settings. Static
// credentials are used when both keys are set, otherwise the default AWS
// credential chain applies.
func NewClient(ctx context.Context, cfg config.BackupConfig) (*Client, error) {
	if !cfg.Enabled() {
		return nil, errors.New("backup bucket is not configured")
	}

	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &Client{
		s3:     client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
	}, nil
}

// Key returns the object key for a library archive taken at ts.
func (c *Client) Key(library string, ts time.Time) string {
	name := ts.UTC().Format("20060102T150405Z") + archiveSuffix
	return path.Join(c.prefix, library, name)
}

// Push archives the library at dir and uploads it, returning the object key.
func (c *Client) Push(ctx context.Context, library, dir string, roots []string, ts time.Time) (string, int, error) {
	var buf bytes.Buffer
	count, err := Archive(dir, roots, &buf)
	if err != nil {
		return "", 0, fmt.Errorf("failed to archive library: %w", err)
	}

	key := c.Key(library, ts)
	uploader := manager.NewUploader(c.s3)
	_, err = uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("application/gzip"),
	})
	if err != nil {
		return "", 0, fmt.Errorf("failed to upload backup: %w", err)
	}

	logger.Info("backup uploaded", "bucket", c.bucket, "key", key, "files", count, "bytes", buf.Len())
	return key, count, nil
}

// Pull downloads the archive at key and restores it into dir.
func (c *Client) Pull(ctx context.Context, key, dir string) (int, error) {
	downloader := manager.NewDownloader(c.s3)
	buf := manager.NewWriteAtBuffer(nil)
	n, err := downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to download backup: %w", err)
	}

	count, err := Restore(bytes.NewReader(buf.Bytes()[:n]), dir)
	if err != nil {
		return count, err
	}
	logger.Info("backup restored", "bucket", c.bucket, "key", key, "files", count)
	return count, nil
}

// List returns the archives stored for library, oldest first.
func (c *Client) List(ctx context.Context, library string) ([]Object, error) {
	prefix := path.Join(c.prefix, library) + "/"
	paginator := s3.NewListObjectsV2Paginator(c.s3, &s3.ListObjectsV2Input{
		Bucket: aws.String(c.bucket),
		Prefix: aws.String(prefix),
	})

	var objects []Object
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list backups: %w", err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if !strings.HasSuffix(key, archiveSuffix) {
				continue
			}
			objects = append(objects, Object{
				Key:          key,
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
	}

	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}

// Latest returns the key of the newest archive for library.
func (c *Client) Latest(ctx context.Context, library string) (string, error) {
	objects, err := c.List(ctx, library)
	if err != nil {
		return "", err
	}
	if len(objects) == 0 {
		return "", ErrNoBackups
	}
	return objects[len(objects)-1].Key, nil
}
