package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/disintegration/imaging"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/videotube/user-service/internal/api/metrics"
	"github.com/videotube/user-service/internal/core/ports"
)

const defaultMaxDimension = 1024

// Config holds the media host settings. Endpoint is only needed for
// S3-compatible hosts such as MinIO.
type Config struct {
	Endpoint      string
	Region        string
	Bucket        string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
	UsePathStyle  bool
	MaxDimension  int
}

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Uploader implements ports.MediaUploader. Images are decoded, auto-oriented
// and scaled down to fit MaxDimension before they are stored.
type S3Uploader struct {
	client objectPutter
	cfg    Config
	log    zerolog.Logger
	now    func() time.Time
}

// NewS3Uploader builds an S3 client from cfg. Static credentials are used when
// both keys are set, otherwise the default AWS credential chain applies.
func NewS3Uploader(ctx context.Context, cfg Config, log zerolog.Logger) (*S3Uploader, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("media: bucket is required")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("media: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})
	return newS3Uploader(client, cfg, log), nil
}

func newS3Uploader(client objectPutter, cfg Config, log zerolog.Logger) *S3Uploader {
	if cfg.MaxDimension <= 0 {
		cfg.MaxDimension = defaultMaxDimension
	}
	return &S3Uploader{client: client, cfg: cfg, log: log, now: time.Now}
}

// Upload stores the staged file at localPath and removes it afterwards,
// whatever the outcome.
func (u *S3Uploader) Upload(ctx context.Context, kind ports.MediaKind, localPath string) (*ports.UploadedMedia, error) {
	defer func() {
		if err := os.Remove(localPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			u.log.Warn().Err(err).Str("path", localPath).Msg("failed to remove staged file")
		}
	}()

	start := time.Now()
	defer func() {
		metrics.MediaUploadDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())
	}()

	body, format, err := u.normalise(localPath)
	if err != nil {
		metrics.MediaUploadsTotal.WithLabelValues(string(kind), "decode_error").Inc()
		return nil, fmt.Errorf("media: %w", err)
	}

	key := u.objectKey(kind, format)
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.cfg.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(contentType(format)),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		metrics.MediaUploadsTotal.WithLabelValues(string(kind), "put_error").Inc()
		return nil, fmt.Errorf("media: put object %s: %w", key, err)
	}

	metrics.MediaUploadsTotal.WithLabelValues(string(kind), "ok").Inc()
	u.log.Debug().Str("key", key).Int("bytes", len(body)).Msg("media uploaded")
	return &ports.UploadedMedia{URL: u.publicURL(key), Key: key}, nil
}

func (u *S3Uploader) normalise(localPath string) ([]byte, imaging.Format, error) {
	format, err := imaging.FormatFromFilename(localPath)
	if err != nil {
		format = imaging.JPEG
	}

	img, err := imaging.Open(localPath, imaging.AutoOrientation(true))
	if err != nil {
		return nil, format, fmt.Errorf("decode image: %w", err)
	}

	limit := u.cfg.MaxDimension
	if b := img.Bounds(); b.Dx() > limit || b.Dy() > limit {
		img = imaging.Fit(img, limit, limit, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format); err != nil {
		return nil, format, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), format, nil
}

// objectKey lays objects out as <kind>/<yyyy>/<mm>/<ulid><ext>.
func (u *S3Uploader) objectKey(kind ports.MediaKind, format imaging.Format) string {
	now := u.now().UTC()
	return fmt.Sprintf("%s/%04d/%02d/%s%s",
		kind, now.Year(), int(now.Month()), strings.ToLower(ulid.Make().String()), extension(format))
}

func (u *S3Uploader) publicURL(key string) string {
	if u.cfg.PublicBaseURL != "" {
		return strings.TrimRight(u.cfg.PublicBaseURL, "/") + "/" + key
	}
	if u.cfg.Endpoint != "" {
		return strings.TrimRight(u.cfg.Endpoint, "/") + "/" + u.cfg.Bucket + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.cfg.Bucket, u.cfg.Region, key)
}

func extension(f imaging.Format) string {
	switch f {
	case imaging.PNG:
		return ".png"
	case imaging.GIF:
		return ".gif"
	case imaging.BMP:
		return ".bmp"
	case imaging.TIFF:
		return ".tiff"
	default:
		return ".jpg"
	}
}

func contentType(f imaging.Format) string {
	switch f {
	case imaging.PNG:
		return "image/png"
	case imaging.GIF:
		return "image/gif"
	case imaging.BMP:
		return "image/bmp"
	case imaging.TIFF:
		return "image/tiff"
	default:
		return "image/jpeg"
	}
}
