package service

import (
	"context"

	"readhub/internal/microservices/http-api/repository"
)

const maxTxAttempts = 3

// inTx runs fn in a transaction, retrying on serialization failures and
// deadlocks.
func inTx(ctx context.Context, store repository.Store, fn func(tx repository.Store) error) error {
	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = store.Transaction(ctx, fn)
		if err == nil || !repository.IsRetryable(err) {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return err
}
