// Package blob stores refund photos and archived ledger events on Google
// Cloud Storage. Upload failures are fatal to the upload step only: a
// refund may still proceed without its photo per caller policy.
package blob

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// UploadError wraps a blob-storage failure. The message is surfaced
// verbatim to the caller; uploads are never retried here.
type UploadError struct {
	Object string
	Err    error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload error for %s: %v", e.Object, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// Uploader is the blob-storage collaborator consumed by the refund flow
// and the event archiver.
type Uploader interface {
	Upload(ctx context.Context, ownerID, filename string, r io.Reader) (string, error)
	Close() error
}

// GCSUploader writes objects under <prefix>/<ownerID>/<filename> in one
// bucket and returns gs:// path references.
type GCSUploader struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewGCSUploader creates the storage client. credentialsFile may be empty,
// in which case Application Default Credentials are used.
func NewGCSUploader(ctx context.Context, bucket, prefix, credentialsFile string) (*GCSUploader, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	return &GCSUploader{client: client, bucket: bucket, prefix: prefix}, nil
}

// Upload streams the reader into the bucket and returns the gs:// reference
// of the written object.
func (u *GCSUploader) Upload(ctx context.Context, ownerID, filename string, r io.Reader) (string, error) {
	object := path.Join(u.prefix, ownerID, filename)

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := u.client.Bucket(u.bucket).Object(object).NewWriter(ctx)
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", &UploadError{Object: object, Err: err}
	}
	if err := w.Close(); err != nil {
		return "", &UploadError{Object: object, Err: err}
	}

	return fmt.Sprintf("gs://%s/%s", u.bucket, object), nil
}

func (u *GCSUploader) Close() error {
	return u.client.Close()
}
