package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"readhub/internal/gamification"
	"readhub/internal/microservices/http-api/models"
	"readhub/internal/microservices/http-api/repository"

	"github.com/jonboulle/clockwork"
)

// BadgeEvent names what prompted an evaluation. It narrows which badge
// types are checked.
type BadgeEvent string

const (
	EventSessionSubmitted BadgeEvent = "session_submitted"
	EventBookCompleted    BadgeEvent = "book_completed"
	EventStreakUpdated    BadgeEvent = "streak_updated"
	EventManual           BadgeEvent = "manual"
)

func (e BadgeEvent) types() map[gamification.BadgeType]bool {
	switch e {
	case EventBookCompleted:
		return map[gamification.BadgeType]bool{
			gamification.BadgeTypeGenre:     true,
			gamification.BadgeTypeMilestone: true,
		}
	case EventStreakUpdated:
		return map[gamification.BadgeType]bool{gamification.BadgeTypeStreak: true}
	}
	return nil
}

// ParseBadgeEvent accepts the wire spelling of an event; empty means manual.
func ParseBadgeEvent(s string) (BadgeEvent, error) {
	switch e := BadgeEvent(s); e {
	case EventSessionSubmitted, EventBookCompleted, EventStreakUpdated, EventManual:
		return e, nil
	case "":
		return EventManual, nil
	}
	return "", invalid("event_type", "Unknown badge event %q.", s)
}

type BadgeService interface {
	Evaluate(ctx context.Context, userID string, event BadgeEvent, eventData map[string]any) ([]models.Badge, error)
	List(ctx context.Context, userID string) ([]models.Badge, error)
	Progress(ctx context.Context, userID string) ([]gamification.BadgeProgress, error)
	Catalog() []gamification.MasterBadge
}

type badgeService struct {
	store      repository.Store
	catalog    *gamification.Catalog
	locker     UserLocker
	defaultLoc *time.Location
	clock      clockwork.Clock
	logger     *slog.Logger
}

func NewBadgeService(store repository.Store, catalog *gamification.Catalog, locker UserLocker, defaultLoc *time.Location, clock clockwork.Clock, logger *slog.Logger) BadgeService {
	if catalog == nil {
		catalog = gamification.DefaultCatalog
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &badgeService{
		store:      store,
		catalog:    catalog,
		locker:     locker,
		defaultLoc: defaultLoc,
		clock:      clock,
		logger:     logger,
	}
}

func (s *badgeService) Evaluate(ctx context.Context, userID string, event BadgeEvent, eventData map[string]any) ([]models.Badge, error) {
	unlock, err := lockUser(ctx, s.locker, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var unlocked []models.Badge
	err = inTx(ctx, s.store, func(tx repository.Store) error {
		profile, err := tx.Profiles().GetByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrProfileNotFound
			}
			return storeErr("load profile", err)
		}
		unlocked, err = unlockBadges(ctx, tx, s.catalog, profile, event, profile.Location(s.defaultLoc), s.clock.Now())
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("badges_evaluated",
		"user_id", userID,
		"event", string(event),
		"event_data", eventData,
		"unlocked", len(unlocked),
	)
	return unlocked, nil
}

func (s *badgeService) List(ctx context.Context, userID string) ([]models.Badge, error) {
	badges, err := s.store.Badges().ListByUser(ctx, userID)
	if err != nil {
		return nil, storeErr("list badges", err)
	}
	return badges, nil
}

func (s *badgeService) Progress(ctx context.Context, userID string) ([]gamification.BadgeProgress, error) {
	profile, err := s.store.Profiles().GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, storeErr("load profile", err)
	}
	agg, held, err := loadAggregate(ctx, s.store, profile, profile.Location(s.defaultLoc))
	if err != nil {
		return nil, err
	}
	return gamification.Progress(s.catalog, agg, held), nil
}

func (s *badgeService) Catalog() []gamification.MasterBadge {
	return s.catalog.All()
}

// loadAggregate reads the user's books, sessions and unlocks.
func loadAggregate(ctx context.Context, store repository.Store, profile *models.UserProfile, loc *time.Location) (gamification.Aggregate, []gamification.Unlocked, error) {
	books, err := store.Books().ListByUser(ctx, profile.UserID, "")
	if err != nil {
		return gamification.Aggregate{}, nil, storeErr("list books", err)
	}
	sessions, err := store.Sessions().ListByUser(ctx, profile.UserID, 0)
	if err != nil {
		return gamification.Aggregate{}, nil, storeErr("list sessions", err)
	}
	badges, err := store.Badges().ListByUser(ctx, profile.UserID)
	if err != nil {
		return gamification.Aggregate{}, nil, storeErr("list badges", err)
	}

	bookFacts := make([]gamification.BookFacts, 0, len(books))
	for _, b := range books {
		bookFacts = append(bookFacts, gamification.BookFacts{
			Genres:     b.Genres,
			TotalPages: b.TotalPages,
			Completed:  b.IsCompleted(),
		})
	}
	sessionFacts := make([]gamification.SessionFacts, 0, len(sessions))
	for _, rs := range sessions {
		sessionFacts = append(sessionFacts, gamification.SessionFacts{PagesRead: rs.PagesRead, ReadAt: rs.ReadAt})
	}
	held := make([]gamification.Unlocked, 0, len(badges))
	for _, b := range badges {
		held = append(held, gamification.Unlocked{
			BadgeID: b.BadgeID,
			Type:    gamification.BadgeType(b.BadgeType),
			Name:    b.BadgeName,
		})
	}

	agg := gamification.BuildAggregate(bookFacts, sessionFacts, profile.Streak, loc)
	return agg, held, nil
}

// unlockBadges evaluates the catalog for profile and inserts new unlocks
// through tx. The unique indexes on badges make concurrent inserts of the
// same badge collapse to one row.
func unlockBadges(ctx context.Context, tx repository.Store, catalog *gamification.Catalog, profile *models.UserProfile, event BadgeEvent, loc *time.Location, now time.Time) ([]models.Badge, error) {
	agg, held, err := loadAggregate(ctx, tx, profile, loc)
	if err != nil {
		return nil, err
	}

	only := event.types()
	var unlocked []models.Badge
	for _, mb := range gamification.Evaluate(catalog, agg, held) {
		if only != nil && !only[mb.Type] {
			continue
		}
		badge := models.Badge{
			UserID:      profile.UserID,
			BadgeID:     mb.ID,
			BadgeType:   string(mb.Type),
			BadgeName:   mb.Name,
			BadgeTier:   mb.Tier,
			RewardXP:    mb.RewardXP,
			Description: mb.Description,
			UnlockedAt:  now,
		}
		inserted, err := tx.Badges().Insert(ctx, &badge)
		if err != nil {
			return nil, storeErr("insert badge", err)
		}
		if !inserted {
			continue
		}
		if err := tx.Notifications().Create(ctx, &models.Notification{
			UserID:  profile.UserID,
			Type:    models.NotificationBadgeUnlocked,
			BadgeID: mb.ID,
			Title:   fmt.Sprintf("Badge unlocked: %s", mb.Name),
			Message: mb.Description,
		}); err != nil {
			return nil, storeErr("create notification", err)
		}
		unlocked = append(unlocked, badge)
	}
	return unlocked, nil
}
