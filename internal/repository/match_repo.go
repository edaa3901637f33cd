package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/studybuddy/studybuddy-api/internal/db"
	apperr "github.com/studybuddy/studybuddy-api/internal/errors"
)

// MatchRepository provides data access for match records and their
// interaction history. It is the only writer of the matches table.
type MatchRepository struct {
	db *gorm.DB
}

// NewMatchRepository creates a new repository bound to the given DB connection.
func NewMatchRepository(database *gorm.DB) *MatchRepository {
	return &MatchRepository{db: database}
}

// canonicalPair returns the pair in storage order (lower ID first).
func canonicalPair(u1, u2 uint64) (uint64, uint64) {
	if u1 > u2 {
		return u2, u1
	}
	return u1, u2
}

// GetByID loads a match by primary key.
func (r *MatchRepository) GetByID(ctx context.Context, matchID uint64) (*db.Match, error) {
	var match db.Match
	err := r.db.WithContext(ctx).First(&match, matchID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrMatchNotFound
	}
	if err != nil {
		return nil, err
	}
	return &match, nil
}

// FindPair returns the match record for an unordered user pair.
//
// Both orderings are checked: callers do not know which side of the pair
// was stored as user_id, and the canonical ordering is fixed at creation
// time. Returns ErrMatchNotFound when no record exists.
func (r *MatchRepository) FindPair(ctx context.Context, u1, u2 uint64) (*db.Match, error) {
	var match db.Match
	err := r.db.WithContext(ctx).
		Where("(user_id = ? AND matched_user_id = ?) OR (user_id = ? AND matched_user_id = ?)",
			u1, u2, u2, u1).
		First(&match).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrMatchNotFound
	}
	if err != nil {
		return nil, err
	}
	return &match, nil
}

// Create inserts a new match for the pair with the given compatibility.
//
// The unique index on (user_id, matched_user_id) arbitrates concurrent
// creates: the loser of the race gets ErrDuplicateMatch, which discovery
// converts into a compatibility refresh.
func (r *MatchRepository) Create(ctx context.Context, u1, u2 uint64, compatibility int) (*db.Match, error) {
	userID, matchedUserID := canonicalPair(u1, u2)
	match := db.Match{
		UserID:            userID,
		MatchedUserID:     matchedUserID,
		Compatibility:     compatibility,
		Status:            db.MatchStatusPending,
		MatchType:         db.MatchTypeSuggested,
		LastInteractionAt: time.Now().UTC(),
	}

	err := r.db.WithContext(ctx).Create(&match).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, apperr.ErrDuplicateMatch
	}
	if err != nil {
		return nil, err
	}
	return &match, nil
}

// UpdateCompatibility refreshes the stored score for a pair. Status, like
// flags and history are left untouched, so a refresh never demotes a match.
func (r *MatchRepository) UpdateCompatibility(ctx context.Context, u1, u2 uint64, compatibility int) (*db.Match, error) {
	match, err := r.FindPair(ctx, u1, u2)
	if err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).Model(&db.Match{}).
		Where("id = ?", match.ID).
		UpdateColumn("compatibility", compatibility).Error
	if err != nil {
		return nil, err
	}

	match.Compatibility = compatibility
	return match, nil
}

// PairedUserIDs returns the counterpart IDs of every match the user is a
// party to, across all statuses.
func (r *MatchRepository) PairedUserIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	var a, b []uint64

	err := r.db.WithContext(ctx).Model(&db.Match{}).
		Where("user_id = ?", userID).
		Pluck("matched_user_id", &a).Error
	if err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).Model(&db.Match{}).
		Where("matched_user_id = ?", userID).
		Pluck("user_id", &b).Error
	if err != nil {
		return nil, err
	}

	return append(a, b...), nil
}

// ToggleLike flips the like flag of one side of the pair and recomputes
// mutual_like, each as a single atomic statement. A read-modify-write
// cycle here would lose updates under concurrent toggles from both sides.
//
// userSide selects the flag belonging to the canonical user_id side.
// Returns the reloaded match.
func (r *MatchRepository) ToggleLike(ctx context.Context, matchID uint64, userSide bool) (*db.Match, error) {
	column := "matched_user_liked"
	if userSide {
		column = "user_liked"
	}

	res := r.db.WithContext(ctx).Model(&db.Match{}).
		Where("id = ?", matchID).
		UpdateColumn(column, gorm.Expr("NOT "+column))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, apperr.ErrMatchNotFound
	}

	err := r.db.WithContext(ctx).Model(&db.Match{}).
		Where("id = ?", matchID).
		UpdateColumn("mutual_like", gorm.Expr("user_liked AND matched_user_liked")).Error
	if err != nil {
		return nil, err
	}

	return r.GetByID(ctx, matchID)
}

// PromoteIfMutual transitions a pending, mutually liked match to active
// with type mutual. The status guard in the WHERE clause makes the
// promotion idempotent under concurrent toggles; the return value reports
// whether this call performed the transition.
func (r *MatchRepository) PromoteIfMutual(ctx context.Context, matchID uint64) (bool, error) {
	res := r.db.WithContext(ctx).Model(&db.Match{}).
		Where("id = ? AND status = ? AND mutual_like = ?", matchID, db.MatchStatusPending, true).
		Updates(map[string]interface{}{
			"status":     db.MatchStatusActive,
			"match_type": db.MatchTypeMutual,
		})
	return res.RowsAffected > 0, res.Error
}

// SetMatchType updates the informational like-state label of the pair.
func (r *MatchRepository) SetMatchType(ctx context.Context, matchID uint64, matchType db.MatchType) error {
	return r.db.WithContext(ctx).Model(&db.Match{}).
		Where("id = ?", matchID).
		UpdateColumn("match_type", matchType).Error
}

// SetStatus transitions the match to the given lifecycle state.
func (r *MatchRepository) SetStatus(ctx context.Context, matchID uint64, status db.MatchStatus) error {
	res := r.db.WithContext(ctx).Model(&db.Match{}).
		Where("id = ?", matchID).
		UpdateColumn("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.ErrMatchNotFound
	}
	return nil
}

// AppendInteraction adds an entry to the append-only history and bumps the
// match's last-interaction timestamp. A session_completed event also
// increments session_count atomically; this is the only path that mutates
// the counter.
func (r *MatchRepository) AppendInteraction(ctx context.Context, event *db.MatchInteraction) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return err
	}

	updates := map[string]interface{}{
		"last_interaction_at": time.Now().UTC(),
	}
	if event.Type == db.InteractionSessionCompleted {
		updates["session_count"] = gorm.Expr("session_count + 1")
	}

	return r.db.WithContext(ctx).Model(&db.Match{}).
		Where("id = ?", event.MatchID).
		UpdateColumns(updates).Error
}

// Interactions returns the match's history in append order.
func (r *MatchRepository) Interactions(ctx context.Context, matchID uint64) ([]db.MatchInteraction, error) {
	var events []db.MatchInteraction
	err := r.db.WithContext(ctx).
		Where("match_id = ?", matchID).
		Order("id ASC").
		Find(&events).Error
	return events, err
}

// AddRating inserts a rating for one side of the match. The unique index
// on (match_id, rater_id) rejects a second rating from the same side;
// ratings have no update path.
func (r *MatchRepository) AddRating(ctx context.Context, rating *db.MatchRating) error {
	err := r.db.WithContext(ctx).Create(rating).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.ErrDuplicateRating
	}
	return err
}

// Ratings returns the ratings recorded for a match (at most two).
func (r *MatchRepository) Ratings(ctx context.Context, matchID uint64) ([]db.MatchRating, error) {
	var ratings []db.MatchRating
	err := r.db.WithContext(ctx).
		Where("match_id = ?", matchID).
		Order("id ASC").
		Find(&ratings).Error
	return ratings, err
}

// ListFilter narrows List results. Zero values mean "no constraint".
type ListFilter struct {
	Status           db.MatchStatus
	MinCompatibility int
}

// List returns matches where the user is either side of the pair, ordered
// by compatibility descending then last interaction descending, with an
// exact total count taken at query time. A negative limit disables
// pagination.
func (r *MatchRepository) List(ctx context.Context, userID uint64, filter ListFilter, offset, limit int) ([]db.Match, int64, error) {
	query := r.db.WithContext(ctx).Model(&db.Match{}).
		Where("user_id = ? OR matched_user_id = ?", userID, userID)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.MinCompatibility > 0 {
		query = query.Where("compatibility >= ?", filter.MinCompatibility)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("compatibility DESC, last_interaction_at DESC")
	if limit >= 0 {
		query = query.Offset(offset).Limit(limit)
	}

	var matches []db.Match
	if err := query.Find(&matches).Error; err != nil {
		return nil, 0, err
	}
	return matches, total, nil
}

// CountByStatus counts the user's matches in the given state.
func (r *MatchRepository) CountByStatus(ctx context.Context, userID uint64, status db.MatchStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&db.Match{}).
		Where("(user_id = ? OR matched_user_id = ?) AND status = ?", userID, userID, status).
		Count(&count).Error
	return count, err
}
