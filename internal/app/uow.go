package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/neomorfeo/leadiq/internal/domain"
)

// runInUnitOfWork is the scoped-resource protocol around a unit of work:
// begin, run fn, commit on success, roll back on any error or panic. The
// transaction is always released; Rollback is a no-op after Commit.
func runInUnitOfWork(ctx context.Context, factory domain.UnitOfWorkFactory, fn func(uow domain.UnitOfWork) error) error {
	uow, err := factory.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning unit of work: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = uow.Rollback()
			panic(p)
		}
	}()

	if err := fn(uow); err != nil {
		if rbErr := uow.Rollback(); rbErr != nil {
			return errors.Join(err, rbErr)
		}
		return err
	}

	return uow.Commit(ctx)
}
