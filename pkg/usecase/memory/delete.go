package memory

import (
	"context"
	"errors"

	"github.com/m-mizutani/engram/pkg/adapter"
	"github.com/m-mizutani/goerr/v2"
)

// DeleteAll permanently removes the user's whole memory collection
// from storage and evicts its cache entry. Deleting a user that has no
// stored collection is a success; the operation is irreversible.
func (u *UseCase) DeleteAll(ctx context.Context, userKey string) (string, error) {
	unlock := u.lockUser(userKey)
	defer unlock()

	storagePath := collectionPath(userKey)

	if err := u.storage.Delete(ctx, storagePath); err != nil && !errors.Is(err, adapter.ErrObjectNotFound) {
		return "", goerr.Wrap(err, "failed to delete memory collection", goerr.V("path", storagePath))
	}

	u.cacheEvict(storagePath)

	return "All memories have been deleted successfully.", nil
}
