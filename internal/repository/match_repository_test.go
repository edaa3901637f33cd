package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/studybuddy/studybuddy-api/internal/db"
	apperr "github.com/studybuddy/studybuddy-api/internal/errors"
	"github.com/studybuddy/studybuddy-api/internal/repository"
)

// setup in-memory DB
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		NowFunc:        func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := database.AutoMigrate(&db.User{}, &db.Match{}, &db.MatchInteraction{}, &db.MatchRating{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return database
}

func TestCreateAndFindPairBothOrders(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMatchRepository(setupTestDB(t))

	created, err := repo.Create(ctx, 7, 3, 80)
	require.NoError(t, err)

	// canonical ordering puts the lower ID first
	assert.Equal(t, uint64(3), created.UserID)
	assert.Equal(t, uint64(7), created.MatchedUserID)
	assert.Equal(t, db.MatchStatusPending, created.Status)
	assert.Equal(t, db.MatchTypeSuggested, created.MatchType)

	forward, err := repo.FindPair(ctx, 3, 7)
	require.NoError(t, err)
	reverse, err := repo.FindPair(ctx, 7, 3)
	require.NoError(t, err)
	assert.Equal(t, forward.ID, reverse.ID)

	_, err = repo.FindPair(ctx, 3, 99)
	assert.ErrorIs(t, err, apperr.ErrMatchNotFound)
}

func TestCreateDuplicatePair(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMatchRepository(setupTestDB(t))

	_, err := repo.Create(ctx, 1, 2, 75)
	require.NoError(t, err)

	// same pair in either order must hit the unique index
	_, err = repo.Create(ctx, 1, 2, 80)
	assert.ErrorIs(t, err, apperr.ErrDuplicateMatch)
	_, err = repo.Create(ctx, 2, 1, 80)
	assert.ErrorIs(t, err, apperr.ErrDuplicateMatch)
}

func TestUpdateCompatibilityKeepsStatus(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewMatchRepository(dbase)

	created, err := repo.Create(ctx, 1, 2, 60)
	require.NoError(t, err)
	require.NoError(t, repo.SetStatus(ctx, created.ID, db.MatchStatusActive))

	updated, err := repo.UpdateCompatibility(ctx, 2, 1, 90)
	require.NoError(t, err)
	assert.Equal(t, 90, updated.Compatibility)

	reloaded, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 90, reloaded.Compatibility)
	assert.Equal(t, db.MatchStatusActive, reloaded.Status)
}

func TestToggleLikeFlipsAndRecomputesMutual(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMatchRepository(setupTestDB(t))

	created, err := repo.Create(ctx, 1, 2, 70)
	require.NoError(t, err)

	m, err := repo.ToggleLike(ctx, created.ID, true)
	require.NoError(t, err)
	assert.True(t, m.UserLiked)
	assert.False(t, m.MatchedUserLiked)
	assert.False(t, m.MutualLike)

	m, err = repo.ToggleLike(ctx, created.ID, false)
	require.NoError(t, err)
	assert.True(t, m.UserLiked)
	assert.True(t, m.MatchedUserLiked)
	assert.True(t, m.MutualLike)

	// flip back: mutual must follow
	m, err = repo.ToggleLike(ctx, created.ID, true)
	require.NoError(t, err)
	assert.False(t, m.UserLiked)
	assert.False(t, m.MutualLike)

	_, err = repo.ToggleLike(ctx, 9999, true)
	assert.ErrorIs(t, err, apperr.ErrMatchNotFound)
}

func TestPromoteIfMutual(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMatchRepository(setupTestDB(t))

	created, err := repo.Create(ctx, 1, 2, 70)
	require.NoError(t, err)

	// not mutual yet: no-op
	promoted, err := repo.PromoteIfMutual(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, promoted)

	_, err = repo.ToggleLike(ctx, created.ID, true)
	require.NoError(t, err)
	_, err = repo.ToggleLike(ctx, created.ID, false)
	require.NoError(t, err)

	promoted, err = repo.PromoteIfMutual(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, promoted)

	m, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, db.MatchStatusActive, m.Status)
	assert.Equal(t, db.MatchTypeMutual, m.MatchType)

	// idempotent: the guard stops a second promotion
	promoted, err = repo.PromoteIfMutual(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, promoted)
}

func TestAppendInteractionSessionCount(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMatchRepository(setupTestDB(t))

	created, err := repo.Create(ctx, 1, 2, 70)
	require.NoError(t, err)

	require.NoError(t, repo.AppendInteraction(ctx, &db.MatchInteraction{
		MatchID: created.ID, ActorID: 1, Type: db.InteractionLike,
	}))
	require.NoError(t, repo.AppendInteraction(ctx, &db.MatchInteraction{
		MatchID: created.ID, ActorID: 1, Type: db.InteractionSessionCompleted,
	}))
	require.NoError(t, repo.AppendInteraction(ctx, &db.MatchInteraction{
		MatchID: created.ID, ActorID: 2, Type: db.InteractionSessionCompleted,
	}))

	m, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, m.SessionCount)

	events, err := repo.Interactions(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, db.InteractionLike, events[0].Type)
	assert.Equal(t, db.InteractionSessionCompleted, events[1].Type)
}

func TestAddRatingOncePerSide(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMatchRepository(setupTestDB(t))

	created, err := repo.Create(ctx, 1, 2, 70)
	require.NoError(t, err)

	require.NoError(t, repo.AddRating(ctx, &db.MatchRating{MatchID: created.ID, RaterID: 1, Score: 5}))
	require.NoError(t, repo.AddRating(ctx, &db.MatchRating{MatchID: created.ID, RaterID: 2, Score: 3}))

	err = repo.AddRating(ctx, &db.MatchRating{MatchID: created.ID, RaterID: 1, Score: 1})
	assert.ErrorIs(t, err, apperr.ErrDuplicateRating)

	ratings, err := repo.Ratings(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, ratings, 2)
	assert.Equal(t, 5, ratings[0].Score) // first rating untouched
}

func TestPairedUserIDs(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMatchRepository(setupTestDB(t))

	_, err := repo.Create(ctx, 5, 1, 70)
	require.NoError(t, err)
	_, err = repo.Create(ctx, 5, 9, 70)
	require.NoError(t, err)
	_, err = repo.Create(ctx, 2, 3, 70)
	require.NoError(t, err)

	ids, err := repo.PairedUserIDs(ctx, 5)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint64{1, 9}, ids)
}

func TestListFiltersAndOrdering(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMatchRepository(setupTestDB(t))

	a, err := repo.Create(ctx, 1, 2, 90)
	require.NoError(t, err)
	b, err := repo.Create(ctx, 1, 3, 60)
	require.NoError(t, err)
	_, err = repo.Create(ctx, 1, 4, 75)
	require.NoError(t, err)
	_, err = repo.Create(ctx, 2, 3, 99) // not user 1's match
	require.NoError(t, err)

	require.NoError(t, repo.SetStatus(ctx, b.ID, db.MatchStatusDeclined))

	matches, total, err := repo.List(ctx, 1, repository.ListFilter{}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, matches, 3)
	assert.Equal(t, a.ID, matches[0].ID) // highest compatibility first

	matches, total, err = repo.List(ctx, 1, repository.ListFilter{Status: db.MatchStatusDeclined}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, b.ID, matches[0].ID)

	matches, total, err = repo.List(ctx, 1, repository.ListFilter{MinCompatibility: 70}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	// pagination
	matches, total, err = repo.List(ctx, 1, repository.ListFilter{}, 1, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, matches, 1)
}
