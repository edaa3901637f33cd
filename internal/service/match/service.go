package match

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/studybuddy/studybuddy-api/internal/app"
	"github.com/studybuddy/studybuddy-api/internal/db"
	apperr "github.com/studybuddy/studybuddy-api/internal/errors"
	"github.com/studybuddy/studybuddy-api/internal/repository"
	"github.com/studybuddy/studybuddy-api/internal/scoring"
)

// Compatibility floor for discovery. Strictly exclusive: a candidate
// scoring exactly 50 is not surfaced.
const discoveryThreshold = 50

const (
	defaultDiscoverLimit = 10
	maxDiscoverLimit     = 50

	defaultDeclineReason = "no reason given"
	maxCommentLength     = 300
)

// Notification types pushed to the sink.
const (
	NotificationMutualMatch = "match_mutual"
	NotificationInteraction = "match_interaction"
)

// Notification is the payload handed to the sink. Delivery is
// fire-and-forget; the sink must never block a lifecycle operation.
type Notification struct {
	Type    string `json:"type"`
	MatchID uint64 `json:"matchId"`
	ActorID uint64 `json:"actorId,omitempty"`
}

// Notifier fans a notification out to one user. Implemented by the
// WebSocket hub; a nil Notifier disables notifications.
type Notifier interface {
	Notify(userID uint64, n Notification)
}

// Service owns the match lifecycle: discovery, like toggling, ratings and
// status transitions. Reads for API consumption live in query.go.
type Service struct {
	appCtx    *app.AppContext
	matchRepo *repository.MatchRepository
	userRepo  *repository.UserRepository
	notifier  Notifier
}

// NewService creates a match service with dependencies from AppContext.
func NewService(appCtx *app.AppContext, notifier Notifier) *Service {
	return &Service{
		appCtx:    appCtx,
		matchRepo: repository.NewMatchRepository(appCtx.DB),
		userRepo:  repository.NewUserRepository(appCtx.DB),
		notifier:  notifier,
	}
}

// Discover scores candidates sharing at least one subject with the caller
// and materializes the best of them as match records.
//
// Behavior:
//   - candidates scoring <= 50 are dropped (strict threshold)
//   - users already paired with the caller, across all statuses, are
//     excluded unless forceRefresh is true
//   - the top `limit` candidates by score are created, or have their
//     stored compatibility refreshed if a record already exists; a
//     duplicate-pair race during creation is converted into a refresh
//   - results come back sorted by compatibility descending
func (s *Service) Discover(ctx context.Context, userID uint64, limit int, forceRefresh bool) ([]db.Match, error) {
	if limit <= 0 {
		limit = defaultDiscoverLimit
	}
	if limit > maxDiscoverLimit {
		limit = maxDiscoverLimit
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile := user.Profile()
	if !profile.Complete() {
		return nil, apperr.ErrIncompleteProfile
	}

	candidates, err := s.userRepo.FindCandidates(ctx, profile.Subjects, userID, 2*limit)
	if err != nil {
		return nil, err
	}

	excluded := map[uint64]struct{}{}
	if !forceRefresh {
		pairedIDs, err := s.matchRepo.PairedUserIDs(ctx, userID)
		if err != nil {
			return nil, err
		}
		for _, id := range pairedIDs {
			excluded[id] = struct{}{}
		}
	}

	type scored struct {
		candidate db.User
		score     int
	}
	var ranked []scored
	for _, c := range candidates {
		if _, skip := excluded[c.ID]; skip {
			continue
		}
		score := scoring.Score(profile, c.Profile())
		if score <= discoveryThreshold {
			continue
		}
		ranked = append(ranked, scored{candidate: c, score: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	matches := make([]db.Match, 0, len(ranked))
	for _, entry := range ranked {
		match, err := s.matchRepo.Create(ctx, userID, entry.candidate.ID, entry.score)
		if errors.Is(err, apperr.ErrDuplicateMatch) {
			match, err = s.matchRepo.UpdateCompatibility(ctx, userID, entry.candidate.ID, entry.score)
		}
		if err != nil {
			return nil, err
		}
		matches = append(matches, *match)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Compatibility > matches[j].Compatibility
	})
	return matches, nil
}

// ToggleLike flips the acting user's like flag on the match. It is a flip,
// not a set: two identical calls restore the original state.
//
// When the flip makes the pair mutually liked and the match is still
// pending, it is promoted to active/mutual and both parties are notified.
// Every call appends one like interaction event.
func (s *Service) ToggleLike(ctx context.Context, matchID, actorID uint64) (*db.Match, error) {
	match, err := s.loadForActor(ctx, matchID, actorID)
	if err != nil {
		return nil, err
	}

	updated, err := s.matchRepo.ToggleLike(ctx, matchID, match.UserID == actorID)
	if err != nil {
		return nil, err
	}

	promoted := false
	if updated.MutualLike && updated.Status == db.MatchStatusPending {
		promoted, err = s.matchRepo.PromoteIfMutual(ctx, matchID)
		if err != nil {
			return nil, err
		}
	}
	if !promoted {
		if mt := likeStateType(updated); mt != updated.MatchType {
			if err := s.matchRepo.SetMatchType(ctx, matchID, mt); err != nil {
				return nil, err
			}
		}
	}

	liked := updated.UserLiked
	if updated.MatchedUserID == actorID {
		liked = updated.MatchedUserLiked
	}
	event := &db.MatchInteraction{
		MatchID: matchID,
		ActorID: actorID,
		Type:    db.InteractionLike,
		Details: fmt.Sprintf(`{"liked":%t}`, liked),
	}
	if err := s.matchRepo.AppendInteraction(ctx, event); err != nil {
		return nil, err
	}

	if promoted {
		s.invalidateCounts(ctx, updated.UserID, updated.MatchedUserID)
		s.notify(updated.UserID, Notification{Type: NotificationMutualMatch, MatchID: matchID, ActorID: actorID})
		s.notify(updated.MatchedUserID, Notification{Type: NotificationMutualMatch, MatchID: matchID, ActorID: actorID})
	}

	return s.matchRepo.GetByID(ctx, matchID)
}

// AddRating records the acting user's one-off rating of the match. Ratings
// are immutable: a second submission from the same side fails with
// ErrDuplicateRating and leaves the first value untouched.
func (s *Service) AddRating(ctx context.Context, matchID, actorID uint64, score int, comment string) (*db.MatchRating, error) {
	if score < 1 || score > 5 {
		return nil, apperr.InvalidArgumentf("rating score must be between 1 and 5, got %d", score)
	}
	if len(comment) > maxCommentLength {
		return nil, apperr.InvalidArgumentf("rating comment must be at most %d characters", maxCommentLength)
	}

	if _, err := s.loadForActor(ctx, matchID, actorID); err != nil {
		return nil, err
	}

	rating := &db.MatchRating{
		MatchID: matchID,
		RaterID: actorID,
		Score:   score,
		Comment: comment,
	}
	if err := s.matchRepo.AddRating(ctx, rating); err != nil {
		return nil, err
	}

	event := &db.MatchInteraction{
		MatchID: matchID,
		ActorID: actorID,
		Type:    db.InteractionRating,
		Details: fmt.Sprintf(`{"score":%d}`, score),
	}
	if err := s.matchRepo.AppendInteraction(ctx, event); err != nil {
		return nil, err
	}
	return rating, nil
}

// Decline transitions the match to declined, unconditionally with respect
// to the prior status. Declined pairs stay out of discovery.
func (s *Service) Decline(ctx context.Context, matchID, actorID uint64, reason string) (*db.Match, error) {
	match, err := s.loadForActor(ctx, matchID, actorID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(reason) == "" {
		reason = defaultDeclineReason
	}

	if err := s.matchRepo.SetStatus(ctx, matchID, db.MatchStatusDeclined); err != nil {
		return nil, err
	}

	event := &db.MatchInteraction{
		MatchID: matchID,
		ActorID: actorID,
		Type:    db.InteractionDecline,
		Details: fmt.Sprintf(`{"reason":%q}`, reason),
	}
	if err := s.matchRepo.AppendInteraction(ctx, event); err != nil {
		return nil, err
	}

	s.invalidateCounts(ctx, match.UserID, match.MatchedUserID)
	return s.matchRepo.GetByID(ctx, matchID)
}

// Block transitions the match to blocked.
func (s *Service) Block(ctx context.Context, matchID, actorID uint64) (*db.Match, error) {
	return s.setBlocked(ctx, matchID, actorID, true)
}

// Unblock lifts a block, reverting the match to pending.
func (s *Service) Unblock(ctx context.Context, matchID, actorID uint64) (*db.Match, error) {
	return s.setBlocked(ctx, matchID, actorID, false)
}

func (s *Service) setBlocked(ctx context.Context, matchID, actorID uint64, blocked bool) (*db.Match, error) {
	match, err := s.loadForActor(ctx, matchID, actorID)
	if err != nil {
		return nil, err
	}

	status := db.MatchStatusPending
	if blocked {
		status = db.MatchStatusBlocked
	}
	if err := s.matchRepo.SetStatus(ctx, matchID, status); err != nil {
		return nil, err
	}

	event := &db.MatchInteraction{
		MatchID: matchID,
		ActorID: actorID,
		Type:    db.InteractionBlock,
		Details: fmt.Sprintf(`{"blocked":%t}`, blocked),
	}
	if err := s.matchRepo.AppendInteraction(ctx, event); err != nil {
		return nil, err
	}

	s.invalidateCounts(ctx, match.UserID, match.MatchedUserID)
	return s.matchRepo.GetByID(ctx, matchID)
}

// RecordInteraction appends a generic event to the match history. A
// session_completed event additionally increments the session counter,
// the only path that does so. The counterpart is notified best-effort.
func (s *Service) RecordInteraction(ctx context.Context, matchID, actorID uint64, eventType, details string) (*db.Match, error) {
	eventType = strings.TrimSpace(eventType)
	if eventType == "" {
		return nil, apperr.InvalidArgumentf("interaction type is required")
	}

	match, err := s.loadForActor(ctx, matchID, actorID)
	if err != nil {
		return nil, err
	}

	event := &db.MatchInteraction{
		MatchID: matchID,
		ActorID: actorID,
		Type:    eventType,
		Details: details,
	}
	if err := s.matchRepo.AppendInteraction(ctx, event); err != nil {
		return nil, err
	}

	s.notify(match.OtherUserID(actorID), Notification{
		Type:    NotificationInteraction,
		MatchID: matchID,
		ActorID: actorID,
	})

	return s.matchRepo.GetByID(ctx, matchID)
}

// loadForActor fetches the match and verifies the actor is a party to it.
func (s *Service) loadForActor(ctx context.Context, matchID, actorID uint64) (*db.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !match.HasParticipant(actorID) {
		return nil, apperr.ErrNotParticipant
	}
	return match, nil
}

// likeStateType derives the informational match type from the like flags.
func likeStateType(m *db.Match) db.MatchType {
	switch {
	case m.UserLiked && m.MatchedUserLiked:
		return db.MatchTypeMutual
	case m.UserLiked || m.MatchedUserLiked:
		return db.MatchTypeOneWay
	default:
		return db.MatchTypeSuggested
	}
}

func (s *Service) notify(userID uint64, n Notification) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(userID, n)
}

func (s *Service) invalidateCounts(ctx context.Context, userIDs ...uint64) {
	for _, id := range userIDs {
		if err := s.appCtx.RedisCache.InvalidateMatchCount(ctx, id); err != nil {
			s.appCtx.Logger.Warn("failed to invalidate match count cache", "user_id", id, "err", err)
		}
	}
}
