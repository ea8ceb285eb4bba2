package entities

import "github.com/craftlab/skillforge/pkg/types/entity"

// Error sentinels re-exported from the shared types package so that callers
// of the repository can match without importing the backend packages.
var (
	ErrNotFound = entity.ErrNotFound
	ErrStorage  = entity.ErrStorage
)

func notFound(id string) error {
	return entity.NotFoundError(id)
}

func storageErr(err error, op string) error {
	return entity.StorageError(op, err)
}
