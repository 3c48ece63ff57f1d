package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
	"github.com/oklog/ulid/v2"

	"github.com/familyjustice/orders-api/internal/domain"
)

var (
	errNoClient = errors.New("storage: client is required")
	errNoBucket = errors.New("storage: bucket name is required")
	errNoData   = errors.New("storage: document data is required")
	errNoName   = errors.New("storage: file name is required")
)

// Uploader persists generated order documents to Cloud Storage.
type Uploader struct {
	client *gcs.Client
	bucket string
	now    func() time.Time
	newID  func() string
}

// UploaderOption customises uploader behaviour.
type UploaderOption func(*Uploader)

// WithClock injects a custom clock (useful for tests).
func WithClock(clock func() time.Time) UploaderOption {
	return func(u *Uploader) {
		if clock != nil {
			u.now = clock
		}
	}
}

// WithIDGenerator injects a custom object identifier generator.
func WithIDGenerator(generate func() string) UploaderOption {
	return func(u *Uploader) {
		if generate != nil {
			u.newID = generate
		}
	}
}

// NewUploader constructs an Uploader writing to the given bucket.
func NewUploader(client *gcs.Client, bucket string, opts ...UploaderOption) (*Uploader, error) {
	if client == nil {
		return nil, errNoClient
	}
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, errNoBucket
	}

	uploader := &Uploader{
		client: client,
		bucket: bucket,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  func() string { return ulid.Make().String() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(uploader)
		}
	}
	return uploader, nil
}

// Upload writes the document bytes to a unique object and returns the stored
// document reference. The object path embeds the upload date and a fresh
// identifier so repeated uploads of the same file name never collide.
func (u *Uploader) Upload(ctx context.Context, data []byte, fileName, contentType string) (domain.Document, error) {
	if u == nil || u.client == nil {
		return domain.Document{}, errNoClient
	}
	if len(data) == 0 {
		return domain.Document{}, errNoData
	}
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return domain.Document{}, errNoName
	}

	object := u.objectPath(fileName)
	writer := u.client.Bucket(u.bucket).Object(object).NewWriter(ctx)
	writer.ContentType = strings.TrimSpace(contentType)
	if writer.ContentType == "" {
		writer.ContentType = "application/pdf"
	}

	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return domain.Document{}, fmt.Errorf("storage: write %s: %w", object, err)
	}
	if err := writer.Close(); err != nil {
		return domain.Document{}, fmt.Errorf("storage: close %s: %w", object, err)
	}

	digest := sha256.Sum256(data)
	objectURL := fmt.Sprintf("https://storage.googleapis.com/%s/%s", u.bucket, object)
	return domain.Document{
		URL:       objectURL,
		BinaryURL: objectURL,
		FileName:  fileName,
		Hash:      hex.EncodeToString(digest[:]),
	}, nil
}

func (u *Uploader) objectPath(fileName string) string {
	return fmt.Sprintf("orders/%s/%s/%s", u.now().Format("2006/01"), u.newID(), fileName)
}
