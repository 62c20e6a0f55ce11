package service

import (
	"context"
	"errors"
	"log/slog"

	"readhub/internal/gamification"
	"readhub/internal/microservices/http-api/models"
	"readhub/internal/microservices/http-api/repository"
)

// ResyncResult describes one recomputation of a user's XP.
type ResyncResult struct {
	UserID         string `json:"user_id"`
	PreviousXP     int64  `json:"previous_xp"`
	XP             int64  `json:"xp"`
	Level          int    `json:"level"`
	TotalPagesRead int64  `json:"total_pages_read"`
	Drift          int64  `json:"drift"`
}

type XPSyncService interface {
	// Resync overwrites profile XP with the value derived from the session
	// log and completed books.
	Resync(ctx context.Context, userID string) (*ResyncResult, error)
	// Check computes the same value without writing. It returns a
	// *DriftError alongside the result when the stored XP disagrees.
	Check(ctx context.Context, userID string) (*ResyncResult, error)
	UserIDs(ctx context.Context) ([]string, error)
}

type xpSyncService struct {
	store  repository.Store
	cache  ProgressCache
	locker UserLocker
	logger *slog.Logger
}

func NewXPSyncService(store repository.Store, cache ProgressCache, locker UserLocker, logger *slog.Logger) XPSyncService {
	if logger == nil {
		logger = slog.Default()
	}
	return &xpSyncService{store: store, cache: cache, locker: locker, logger: logger}
}

type canonical struct {
	xp    int64
	pages int64
}

// canonicalXP = pages read + completion bonuses + logged streak bonuses.
func canonicalXP(ctx context.Context, store repository.Store, userID string) (canonical, error) {
	totals, err := store.Sessions().Totals(ctx, userID)
	if err != nil {
		return canonical{}, storeErr("sum sessions", err)
	}
	completed, err := store.Books().ListByUser(ctx, userID, models.BookStatusCompleted)
	if err != nil {
		return canonical{}, storeErr("list completed books", err)
	}

	xp := totals.Pages*gamification.XPPerPage + totals.StreakBonusXP
	for _, b := range completed {
		xp += gamification.CompletionBonus(b.TotalPages)
	}
	return canonical{xp: xp, pages: totals.Pages}, nil
}

func (s *xpSyncService) Resync(ctx context.Context, userID string) (*ResyncResult, error) {
	unlock, err := lockUser(ctx, s.locker, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var result *ResyncResult
	err = inTx(ctx, s.store, func(tx repository.Store) error {
		profile, err := tx.Profiles().GetForUpdate(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrProfileNotFound
			}
			return storeErr("load profile", err)
		}
		c, err := canonicalXP(ctx, tx, userID)
		if err != nil {
			return err
		}
		level := gamification.LevelForXP(c.xp).Level
		if err := tx.Profiles().UpdateXP(ctx, userID, c.xp, level, c.pages); err != nil {
			return storeErr("update profile xp", err)
		}
		result = &ResyncResult{
			UserID:         userID,
			PreviousXP:     profile.XP,
			XP:             c.xp,
			Level:          level,
			TotalPagesRead: c.pages,
			Drift:          profile.XP - c.xp,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, userID); err != nil {
			s.logger.Warn("progress_cache_invalidate_failed", "user_id", userID, "error", err)
		}
	}
	if result.Drift != 0 {
		s.logger.Info("xp_drift_repaired", "user_id", userID, "previous_xp", result.PreviousXP, "xp", result.XP)
	}
	return result, nil
}

func (s *xpSyncService) Check(ctx context.Context, userID string) (*ResyncResult, error) {
	profile, err := s.store.Profiles().GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, storeErr("load profile", err)
	}
	c, err := canonicalXP(ctx, s.store, userID)
	if err != nil {
		return nil, err
	}
	result := &ResyncResult{
		UserID:         userID,
		PreviousXP:     profile.XP,
		XP:             c.xp,
		Level:          gamification.LevelForXP(c.xp).Level,
		TotalPagesRead: c.pages,
		Drift:          profile.XP - c.xp,
	}
	if result.Drift != 0 {
		return result, &DriftError{UserID: userID, StoredXP: profile.XP, CorrectXP: c.xp}
	}
	return result, nil
}

func (s *xpSyncService) UserIDs(ctx context.Context) ([]string, error) {
	ids, err := s.store.Profiles().ListUserIDs(ctx)
	if err != nil {
		return nil, storeErr("list users", err)
	}
	return ids, nil
}
