package service

import (
	"context"
	"errors"

	"github.com/prperemyshlev/exam-prep-accounts/internal/domain"
	"github.com/prperemyshlev/exam-prep-accounts/internal/repository"
)

// GetProgress returns the progress record of an account, or nil when none exists
func (m *Manager) GetProgress(ctx context.Context, accountID string) (*domain.Progress, error) {
	progress, err := m.store.Progress.GetByAccountID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, storeFailure("failed to get progress", err)
	}
	return progress, nil
}

// UpdateProgress merges patch onto the stored record. Present fields
// replace the stored value; a missing record is started fresh.
func (m *Manager) UpdateProgress(ctx context.Context, accountID string, patch domain.ProgressPatch) (*domain.Progress, error) {
	var merged *domain.Progress

	err := m.store.InTx(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		if _, err := repos.Account.GetByID(ctx, accountID); err != nil {
			return err
		}

		now := m.now()
		progress, err := repos.Progress.GetByAccountID(ctx, accountID)
		if errors.Is(err, repository.ErrNotFound) {
			progress, err = domain.NewProgress(accountID, now), nil
		}
		if err != nil {
			return err
		}

		patch.Apply(progress)
		progress.LastUpdated = now

		if err := repos.Progress.Upsert(ctx, progress); err != nil {
			return err
		}

		merged = progress
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, accountNotFound(accountID, err)
		}
		return nil, storeFailure("failed to update progress", err)
	}

	return merged, nil
}

// GetStats derives summary statistics, or nil when no progress exists
func (m *Manager) GetStats(ctx context.Context, accountID string) (*domain.Stats, error) {
	progress, err := m.GetProgress(ctx, accountID)
	if err != nil || progress == nil {
		return nil, err
	}
	return progress.Stats(), nil
}
