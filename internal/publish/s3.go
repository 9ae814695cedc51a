package publish

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API is the subset of the S3 client the mirror uses (enables testing).
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Mirror copies release artifacts to an S3 bucket as a secondary,
// non-authoritative destination. The artifact index stays the system of
// record; the mirror is for consumers that pull from S3 directly.
type S3Mirror struct {
	Bucket string
	Prefix string
	Client S3API
}

// NewS3Mirror builds a mirror against the default AWS credential chain.
func NewS3Mirror(ctx context.Context, bucket, prefix string) (*S3Mirror, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return &S3Mirror{
		Bucket: bucket,
		Prefix: prefix,
		Client: s3.NewFromConfig(cfg),
	}, nil
}

// MirrorDir puts every regular file in dir under s3://bucket/prefix/.
func (m *S3Mirror) MirrorDir(ctx context.Context, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading artifact dir %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		if err := m.put(ctx, dir, name); err != nil {
			return err
		}
	}
	return nil
}

func (m *S3Mirror) put(ctx context.Context, dir, name string) error {
	f, err := os.Open(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("opening artifact %s: %w", name, err)
	}
	defer f.Close()

	key := path.Join(m.Prefix, name)
	_, err = m.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(m.Bucket),
		Key:    aws.String(key),
		Body:   f,
	})
	if err != nil {
		return fmt.Errorf("mirroring %s to s3://%s/%s: %w", name, m.Bucket, key, err)
	}
	return nil
}
