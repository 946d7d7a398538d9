package services

import (
	"context"
	"errors"

	"ledger/internal/core"
	"ledger/internal/storage"
)

// own loads id from repo and verifies it belongs to owner.
// Missing rows become core NotFound, foreign rows core Ownership.
func own[T core.Entity](ctx context.Context, repo storage.Repository[T], owner core.Owner, id int64) (T, error) {
	var zero T
	v, err := repo.FindByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return zero, core.NotFound(zero.EntityKind(), id)
	}
	if err != nil {
		return zero, err
	}
	if v.OwnedBy() != owner {
		return zero, core.Ownership(zero.EntityKind(), id)
	}
	return v, nil
}

// ownOptional is own for an optional reference. A nil id yields a nil result.
func ownOptional[T core.Entity](ctx context.Context, repo storage.Repository[T], owner core.Owner, id *int64) (*T, error) {
	if id == nil {
		return nil, nil
	}
	v, err := own(ctx, repo, owner, *id)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
