package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageUploadAndDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir, "http://localhost:8080/media/")
	require.NoError(t, err)

	url, err := store.Upload(context.Background(), "testimonials/a.png", bytes.NewBufferString("png"), 3, "image/png")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/media/testimonials/a.png", url)

	raw, err := os.ReadFile(filepath.Join(dir, "testimonials", "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "png", string(raw))

	require.NoError(t, store.Delete(context.Background(), "testimonials/a.png"))
	_, err = os.Stat(filepath.Join(dir, "testimonials", "a.png"))
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, store.Delete(context.Background(), "testimonials/a.png"))
}

func TestLocalStorageKeepsKeysInsideBaseDir(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(filepath.Join(dir, "media"), "/media")
	require.NoError(t, err)

	_, err = store.Upload(context.Background(), "../../escape.png", bytes.NewBufferString("x"), 1, "image/png")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "media", "escape.png"))
	require.NoError(t, err)

	_, err = store.Upload(context.Background(), "/", bytes.NewBufferString("x"), 1, "image/png")
	require.Error(t, err)
}

type fakeS3 struct {
	put     *s3.PutObjectInput
	body    []byte
	deleted string
	err     error
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.put = params
	f.body, _ = io.ReadAll(params.Body)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.deleted = aws.ToString(params.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3StorageUpload(t *testing.T) {
	client := &fakeS3{}
	store := newS3Storage(client, "bucket", "https://cdn.example/")

	url, err := store.Upload(context.Background(), "/events/cover.jpg", bytes.NewBufferString("jpg"), 3, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/events/cover.jpg", url)
	assert.Equal(t, "bucket", aws.ToString(client.put.Bucket))
	assert.Equal(t, "events/cover.jpg", aws.ToString(client.put.Key))
	assert.Equal(t, "image/jpeg", aws.ToString(client.put.ContentType))
	assert.Equal(t, "jpg", string(client.body))

	require.NoError(t, store.Delete(context.Background(), "events/cover.jpg"))
	assert.Equal(t, "events/cover.jpg", client.deleted)
}

func TestS3StorageUploadError(t *testing.T) {
	store := newS3Storage(&fakeS3{err: errors.New("denied")}, "bucket", "https://cdn.example")
	_, err := store.Upload(context.Background(), "a.png", bytes.NewBufferString("x"), 1, "image/png")
	require.Error(t, err)
}
