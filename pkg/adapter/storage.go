package adapter

import (
	"context"
	"errors"
	"io"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/option"
)

// ErrObjectNotFound indicates the requested object does not exist in
// the storage backend. Callers use this to distinguish "absent" from
// genuine read failures such as corrupt content or network errors.
var ErrObjectNotFound = goerr.New("object not found")

// Storage is the interface for the durable blob store that holds one
// memory collection object per user namespace
type Storage interface {
	// Put returns a writer to save an object to storage. The write is
	// committed when the writer is closed.
	Put(ctx context.Context, key string) (io.WriteCloser, error)
	// Get loads an object from storage. Returns ErrObjectNotFound if
	// the object does not exist.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes an object from storage. Returns ErrObjectNotFound
	// if the object does not exist.
	Delete(ctx context.Context, key string) error
}

// storageClient implements Storage interface using Cloud Storage
type storageClient struct {
	bucketName string
	client     *storage.Client
}

// NewStorage creates a new Cloud Storage client
func NewStorage(ctx context.Context, bucketName string, opts ...option.ClientOption) (Storage, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client")
	}

	return &storageClient{
		bucketName: bucketName,
		client:     client,
	}, nil
}

func (s *storageClient) Put(ctx context.Context, key string) (io.WriteCloser, error) {
	bucket := s.client.Bucket(s.bucketName)
	obj := bucket.Object(key)
	writer := obj.NewWriter(ctx)
	return writer, nil
}

func (s *storageClient) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	bucket := s.client.Bucket(s.bucketName)
	obj := bucket.Object(key)
	reader, err := obj.NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, goerr.Wrap(ErrObjectNotFound, "no such object", goerr.V("key", key))
		}
		return nil, goerr.Wrap(err, "failed to read from storage", goerr.V("key", key))
	}

	return reader, nil
}

func (s *storageClient) Delete(ctx context.Context, key string) error {
	bucket := s.client.Bucket(s.bucketName)
	obj := bucket.Object(key)
	if err := obj.Delete(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return goerr.Wrap(ErrObjectNotFound, "no such object", goerr.V("key", key))
		}
		return goerr.Wrap(err, "failed to delete from storage", goerr.V("key", key))
	}
	return nil
}
