package adapter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

type S3Options struct {
	Bucket   string
	Region   string
	Endpoint string
	// AccessKey/SecretKey override the default credential chain when both are set.
	AccessKey string
	SecretKey string
}

type S3Storage struct {
	client *s3.Client
	bucket string
	logger *slog.Logger
}

func NewS3Client(ctx context.Context, opts S3Options) (*s3.Client, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.AccessKey != "" && opts.SecretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("gagal memuat konfigurasi aws: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
			// banyak layanan kompatibel s3 belum mendukung checksum default SDK
			o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
			o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
		}
	}), nil
}

func NewS3Storage(client *s3.Client, bucket string, logger *slog.Logger) *S3Storage {
	return &S3Storage{
		client: client,
		bucket: bucket,
		logger: logger.With(slog.String("component", "storage"), slog.String("bucket", bucket)),
	}
}

// objectKey maps a storage path to its object key. "./uploads/a" and
// "/uploads/a" both become "uploads/a"; the root itself becomes "".
func objectKey(p string) string {
	key := strings.TrimPrefix(path.Clean(filepath.ToSlash(p)), "/")
	if key == "." {
		return ""
	}
	return key
}

func (s *S3Storage) Put(ctx context.Context, p string, reader io.Reader, contentType string) (int64, error) {
	if s.client == nil {
		return 0, fmt.Errorf("s3 client is not initialized")
	}

	// PutObject butuh panjang konten, body yang tidak bisa di-seek ditampung dulu
	seeker, ok := reader.(io.ReadSeeker)
	if !ok {
		spooled, cleanup, err := spool(reader)
		if err != nil {
			return 0, err
		}
		defer cleanup()
		seeker = spooled
	}

	size, err := seeker.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	if _, err := seeker.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(objectKey(p)),
		Body:          seeker,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return 0, err
	}
	return size, nil
}

func spool(reader io.Reader) (*os.File, func(), error) {
	tmp, err := os.CreateTemp("", "s3-upload-*")
	if err != nil {
		return nil, nil, fmt.Errorf("gagal membuat file sementara: %w", err)
	}
	cleanup := func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}
	if _, err := io.Copy(tmp, reader); err != nil {
		cleanup()
		return nil, nil, err
	}
	return tmp, cleanup, nil
}

func (s *S3Storage) Open(ctx context.Context, p string) (io.ReadCloser, error) {
	if s.client == nil {
		return nil, fmt.Errorf("s3 client is not initialized")
	}

	output, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey(p)),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, fmt.Errorf("%s: %w", p, ErrNotExist)
		}
		return nil, err
	}
	return output.Body, nil
}

func (s *S3Storage) Delete(ctx context.Context, p string) error {
	if s.client == nil {
		return fmt.Errorf("s3 client is not initialized")
	}

	key := objectKey(p)
	// DeleteObject pada key yang tidak ada tetap sukses
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return err
	}
	s.logger.Debug("Objek s3 dihapus", "key", key)
	return nil
}

func (s *S3Storage) Exists(ctx context.Context, p string) (bool, error) {
	if s.client == nil {
		return false, fmt.Errorf("s3 client is not initialized")
	}

	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey(p)),
	})
	if err == nil {
		return true, nil
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && (apiErr.ErrorCode() == "NotFound" || apiErr.ErrorCode() == "NoSuchKey") {
		return false, nil
	}
	return false, err
}

func (s *S3Storage) Walk(ctx context.Context, root string, fn WalkFunc) error {
	if s.client == nil {
		return fmt.Errorf("s3 client is not initialized")
	}

	prefix := objectKey(root)
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return err
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if strings.HasSuffix(key, "/") {
				continue
			}
			if err := fn(key, path.Base(key)); err != nil {
				return err
			}
		}
	}
	return nil
}
