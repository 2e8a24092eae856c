// Package backup copies the credential store to S3-compatible object
// storage. Each run writes both logs in their flat-file form under a fresh
// key prefix, so earlier snapshots are never overwritten.
package backup

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/facegate/internal/common"
	"github.com/dmitrijs2005/facegate/internal/config"
	"github.com/dmitrijs2005/facegate/internal/logging"
	"github.com/dmitrijs2005/facegate/internal/models"
	store "github.com/dmitrijs2005/facegate/internal/repositories/credentials"
	"github.com/google/uuid"
)

// objectPutter is the part of *s3.Client the uploader needs.
type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// seams, replaced in tests
var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig
	newS3Client          = func(cfg aws.Config, optFns ...func(*s3.Options)) objectPutter {
		return s3.NewFromConfig(cfg, optFns...)
	}
	now = time.Now
)

// Snapshotter is the part of a credential store a backup reads.
type Snapshotter interface {
	Snapshot(ctx context.Context) (models.CredentialSet, models.BindingTable, error)
}

type Uploader struct {
	config *config.Config
	logger logging.Logger
}

func NewUploader(cfg *config.Config, logger logging.Logger) *Uploader {
	return &Uploader{config: cfg, logger: logger.With("module", "backup")}
}

func (u *Uploader) client(ctx context.Context) (objectPutter, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(u.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			u.config.S3User,
			u.config.S3Password,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	return newS3Client(cfg, func(o *s3.Options) {
		if u.config.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(u.config.S3BaseEndpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// KeyPrefix returns the object prefix of a snapshot taken at t.
func KeyPrefix(t time.Time, id uuid.UUID) string {
	return fmt.Sprintf("facegate/%04d/%02d/%02d/%s/", t.Year(), t.Month(), t.Day(), id)
}

// Upload snapshots repo and stores both logs. It returns the key prefix
// the objects were written under.
func (u *Uploader) Upload(ctx context.Context, repo Snapshotter) (string, error) {
	if u.config.S3Bucket == "" {
		return "", fmt.Errorf("backup: no bucket configured")
	}

	creds, bindings, err := repo.Snapshot(ctx)
	if err != nil {
		return "", fmt.Errorf("backup: %w", err)
	}

	client, err := u.client(ctx)
	if err != nil {
		return "", err
	}

	prefix := KeyPrefix(now().UTC(), uuid.New())
	objects := []struct {
		name string
		body []byte
	}{
		{common.CredentialLogName, RenderCredentials(creds)},
		{common.BindingLogName, RenderBindings(bindings)},
	}

	for _, o := range objects {
		key := prefix + o.name
		_, err := client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(u.config.S3Bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(o.body),
			ContentType: aws.String("text/plain; charset=utf-8"),
		})
		if err != nil {
			u.logger.Error(ctx, "backup upload failed", "key", key, "error", err)
			return "", fmt.Errorf("backup: put %s: %w", key, err)
		}
		u.logger.Info(ctx, "backup object written", "bucket", u.config.S3Bucket, "key", key, "bytes", len(o.body))
	}

	return prefix, nil
}

// RenderCredentials writes the set in credential log form, sorted.
func RenderCredentials(set models.CredentialSet) []byte {
	var b strings.Builder
	for _, h := range set.Sorted() {
		b.WriteString(h)
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

// RenderBindings writes the effective bindings in binding log form, one
// record per digest, sorted by digest.
func RenderBindings(table models.BindingTable) []byte {
	hashes := make([]string, 0, len(table))
	for h := range table {
		hashes = append(hashes, h)
	}
	sort.Strings(hashes)

	var b strings.Builder
	for _, h := range hashes {
		b.WriteString(store.FormatBinding(h, table[h]))
		b.WriteByte('\n')
	}
	return []byte(b.String())
}
