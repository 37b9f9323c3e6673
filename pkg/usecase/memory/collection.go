package memory

import (
	"context"
	"errors"
	"path"

	"github.com/m-mizutani/engram/pkg/adapter"
	"github.com/m-mizutani/engram/pkg/model"
	"github.com/m-mizutani/engram/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// collectionObject is the object name of the memory collection inside
// a user namespace
const collectionObject = "__long-memories/data.json"

// collectionPath returns the storage path of the user's collection.
// One collection per user namespace.
func collectionPath(userKey string) string {
	return path.Join(userKey, collectionObject)
}

// loadCollection returns the user's collection from cache or storage.
// An absent object means a new user and yields an empty collection. A
// corrupt or otherwise unreadable object also yields an empty
// collection, but is logged so data loss is at least observable; the
// broken object is overwritten on the next save.
func (u *UseCase) loadCollection(ctx context.Context, storagePath string) *model.MemoryCollection {
	if col, ok := u.cacheGet(storagePath); ok {
		return col
	}

	col := u.fetchCollection(ctx, storagePath)
	u.cachePut(storagePath, col)
	return col
}

func (u *UseCase) fetchCollection(ctx context.Context, storagePath string) *model.MemoryCollection {
	logger := logging.From(ctx)

	r, err := u.storage.Get(ctx, storagePath)
	if err != nil {
		if !errors.Is(err, adapter.ErrObjectNotFound) {
			logger.Warn("failed to load memory collection, starting empty",
				"error", err, "path", storagePath)
		}
		return model.NewMemoryCollection(u.now())
	}
	defer r.Close()

	col, err := model.DecodeMemoryCollection(r)
	if err != nil {
		logger.Warn("discarding corrupt memory collection",
			"error", err, "path", storagePath)
		return model.NewMemoryCollection(u.now())
	}

	return col
}

// saveCollection persists the collection and refreshes the cache. It
// is the only mutation point: either the upload fully succeeds or the
// operation fails with nothing persisted.
func (u *UseCase) saveCollection(ctx context.Context, storagePath string, col *model.MemoryCollection) error {
	col.UpdatedAt = u.now().UTC()

	w, err := u.storage.Put(ctx, storagePath)
	if err != nil {
		return goerr.Wrap(err, "failed to open collection for write", goerr.V("path", storagePath))
	}

	if err := col.Encode(w); err != nil {
		_ = w.Close()
		return err
	}

	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to commit memory collection", goerr.V("path", storagePath))
	}

	u.cachePut(storagePath, col)
	return nil
}
