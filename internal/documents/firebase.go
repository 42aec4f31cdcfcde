package documents

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"github.com/agamariel/rentcar/internal/logger"
)

const downloadTokenKey = "firebaseStorageDownloadTokens"

type writerFactory func(ctx context.Context, object, contentType, token string) io.WriteCloser

// FirebaseUploader загружает файлы в Firebase Storage и возвращает ссылку с токеном скачивания.
type FirebaseUploader struct {
	bucket    string
	newWriter writerFactory
	now       func() time.Time
}

// NewFirebaseUploader подключается к бакету. Пустой credentialsFile - учётные данные окружения.
func NewFirebaseUploader(ctx context.Context, bucket, credentialsFile string) (*FirebaseUploader, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{StorageBucket: bucket}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to init firebase app: %w", err)
	}

	client, err := app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to init firebase storage: %w", err)
	}

	handle, err := client.Bucket(bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to open bucket %q: %w", bucket, err)
	}

	return newFirebaseUploader(bucket, bucketWriter(handle)), nil
}

func newFirebaseUploader(bucket string, newWriter writerFactory) *FirebaseUploader {
	return &FirebaseUploader{
		bucket:    bucket,
		newWriter: newWriter,
		now:       time.Now,
	}
}

func bucketWriter(handle *gcs.BucketHandle) writerFactory {
	return func(ctx context.Context, object, contentType, token string) io.WriteCloser {
		w := handle.Object(object).NewWriter(ctx)
		w.ContentType = contentType
		w.Metadata = map[string]string{downloadTokenKey: token}
		return w
	}
}

func (u *FirebaseUploader) Upload(ctx context.Context, folder, fileName, contentType string, data []byte) (string, error) {
	object := objectName(folder, fileName, u.now())
	token := uuid.NewString()

	logger.ExternalServiceCall("firebase_storage", "upload", "object", object, "bytes", len(data))

	w := u.newWriter(ctx, object, contentType, token)
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		logger.ExternalServiceResult("firebase_storage", "upload", err, "object", object)
		return "", fmt.Errorf("%w: write object: %v", ErrUploadFailed, err)
	}
	if err := w.Close(); err != nil {
		logger.ExternalServiceResult("firebase_storage", "upload", err, "object", object)
		return "", fmt.Errorf("%w: finalize object: %v", ErrUploadFailed, err)
	}

	logger.ExternalServiceResult("firebase_storage", "upload", nil, "object", object)
	return downloadURL(u.bucket, object, token), nil
}

// downloadURL строит ссылку, которую выдаёт клиентский SDK Firebase.
func downloadURL(bucket, object, token string) string {
	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media&token=%s",
		bucket, url.PathEscape(object), url.QueryEscape(token))
}
