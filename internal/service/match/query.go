package match

import (
	"context"

	"github.com/studybuddy/studybuddy-api/internal/db"
	apperr "github.com/studybuddy/studybuddy-api/internal/errors"
	"github.com/studybuddy/studybuddy-api/internal/repository"
	"github.com/studybuddy/studybuddy-api/internal/utils/pagination"
)

// Filter narrows the read-side listing.
type Filter struct {
	Status           string
	MinCompatibility int
	Subjects         []string
}

// PartnerInfo is the public slice of the counterpart's record attached to
// each listed match.
type PartnerInfo struct {
	ID       uint64   `json:"id"`
	Username string   `json:"username"`
	Subjects []string `json:"subjects"`
}

// View is one listed match from the perspective of the requesting user.
type View struct {
	db.Match
	Partner *PartnerInfo `json:"partner,omitempty"`
}

// List returns the user's matches with filtering, offset pagination and an
// exact total. Records are ordered by compatibility descending, then by
// last interaction descending. The total is taken at query time and may be
// stale under concurrent writes.
func (s *Service) List(ctx context.Context, userID uint64, filter Filter, page pagination.Params) ([]View, int64, error) {
	repoFilter, err := toRepoFilter(filter)
	if err != nil {
		return nil, 0, err
	}

	var (
		matches []db.Match
		total   int64
	)
	if len(filter.Subjects) > 0 {
		// subject filtering needs the counterpart profiles; fetch the
		// full filtered set and paginate after the intersection check
		matches, _, err = s.matchRepo.List(ctx, userID, repoFilter, 0, -1)
	} else {
		matches, total, err = s.matchRepo.List(ctx, userID, repoFilter, page.Offset(), page.Limit)
	}
	if err != nil {
		return nil, 0, err
	}

	partners, err := s.loadPartners(ctx, userID, matches)
	if err != nil {
		return nil, 0, err
	}

	if len(filter.Subjects) > 0 {
		matches = filterBySubjects(matches, partners, userID, filter.Subjects)
		total = int64(len(matches))
		matches = pagination.Slice(matches, page)
	}

	views := make([]View, 0, len(matches))
	for _, m := range matches {
		view := View{Match: m}
		if partner, ok := partners[m.OtherUserID(userID)]; ok {
			view.Partner = &PartnerInfo{
				ID:       partner.ID,
				Username: partner.Username,
				Subjects: partner.Subjects,
			}
		}
		views = append(views, view)
	}
	return views, total, nil
}

// Get returns a single match with its history and ratings, restricted to
// participants.
func (s *Service) Get(ctx context.Context, matchID, actorID uint64) (*db.Match, error) {
	match, err := s.loadForActor(ctx, matchID, actorID)
	if err != nil {
		return nil, err
	}

	if match.Interactions, err = s.matchRepo.Interactions(ctx, matchID); err != nil {
		return nil, err
	}
	if match.Ratings, err = s.matchRepo.Ratings(ctx, matchID); err != nil {
		return nil, err
	}
	return match, nil
}

// Count returns the user's active match count, cache-first with a DB
// fallback that repopulates the cache (1h TTL, refreshed on access).
func (s *Service) Count(ctx context.Context, userID uint64) (int64, error) {
	if cached, err := s.appCtx.RedisCache.GetMatchCount(ctx, userID); err == nil && cached >= 0 {
		return cached, nil
	}

	count, err := s.matchRepo.CountByStatus(ctx, userID, db.MatchStatusActive)
	if err != nil {
		return 0, err
	}

	if err := s.appCtx.RedisCache.SetMatchCount(ctx, userID, count); err != nil {
		s.appCtx.Logger.Warn("failed to cache match count", "user_id", userID, "err", err)
	}
	return count, nil
}

func toRepoFilter(filter Filter) (repoFilter repository.ListFilter, err error) {
	if filter.MinCompatibility < 0 || filter.MinCompatibility > 100 {
		return repoFilter, apperr.InvalidArgumentf("min_compatibility must be between 0 and 100")
	}
	repoFilter.MinCompatibility = filter.MinCompatibility

	if filter.Status != "" {
		status := db.MatchStatus(filter.Status)
		switch status {
		case db.MatchStatusPending, db.MatchStatusActive, db.MatchStatusBlocked, db.MatchStatusDeclined:
			repoFilter.Status = status
		default:
			return repoFilter, apperr.InvalidArgumentf("unknown status %q", filter.Status)
		}
	}
	return repoFilter, nil
}

func (s *Service) loadPartners(ctx context.Context, userID uint64, matches []db.Match) (map[uint64]*db.User, error) {
	ids := make([]uint64, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.OtherUserID(userID))
	}
	return s.userRepo.GetByIDs(ctx, ids)
}

func filterBySubjects(matches []db.Match, partners map[uint64]*db.User, userID uint64, subjects []string) []db.Match {
	filtered := matches[:0]
	for _, m := range matches {
		partner, ok := partners[m.OtherUserID(userID)]
		if !ok {
			continue
		}
		if partner.Profile().SharesSubject(subjects) {
			filtered = append(filtered, m)
		}
	}
	return filtered
}
