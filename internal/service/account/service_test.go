package account_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/studybuddy/studybuddy-api/internal/app"
	"github.com/studybuddy/studybuddy-api/internal/auth"
	"github.com/studybuddy/studybuddy-api/internal/config"
	"github.com/studybuddy/studybuddy-api/internal/db"
	apperr "github.com/studybuddy/studybuddy-api/internal/errors"
	"github.com/studybuddy/studybuddy-api/internal/service/account"
)

func setupService(t *testing.T) (*account.Service, config.AuthConfig) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	sqlDB, err := database.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(&db.User{}))

	authCfg := config.AuthConfig{JWTSecret: "test-secret", JWTExpiry: time.Hour}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	appCtx := app.New(database, nil, logger)

	return account.NewService(appCtx, authCfg), authCfg
}

func TestRegisterAndLogin(t *testing.T) {
	svc, authCfg := setupService(t)
	ctx := context.Background()

	user, token, err := svc.Register(ctx, "  alice  ", "Alice@Example.COM", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEqual(t, "hunter22", user.PasswordHash)

	claims, err := auth.ValidateToken(token, authCfg)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)

	logged, _, err := svc.Login(ctx, "alice", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)
}

func TestLoginBadCredentials(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "alice", "alice@test.local", "hunter22")
	require.NoError(t, err)

	// same error for unknown user and wrong password
	_, _, err = svc.Login(ctx, "nobody", "hunter22")
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
	_, _, err = svc.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
}

func TestRegisterDuplicates(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "alice", "alice@test.local", "hunter22")
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, "alice", "other@test.local", "hunter22")
	assert.ErrorIs(t, err, apperr.ErrUsernameTaken)
	_, _, err = svc.Register(ctx, "bob", "alice@test.local", "hunter22")
	assert.ErrorIs(t, err, apperr.ErrEmailTaken)
}

func TestUpdateProfile(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	user, _, err := svc.Register(ctx, "alice", "alice@test.local", "hunter22")
	require.NoError(t, err)

	_, complete, err := svc.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, complete)

	updated, err := svc.UpdateProfile(ctx, user.ID, account.ProfileUpdate{
		Subjects:         []string{" Math ", "physics", "math"},
		LearningStyle:    2,
		Availability:     []string{"Monday", "FRIDAY", "monday"},
		PerformanceLevel: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Math", "physics"}, []string(updated.Subjects))
	assert.Equal(t, []string{"monday", "friday"}, []string(updated.Availability))

	_, complete, err = svc.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, complete)
}

func TestUpdateProfileValidation(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	user, _, err := svc.Register(ctx, "alice", "alice@test.local", "hunter22")
	require.NoError(t, err)

	cases := []account.ProfileUpdate{
		{Subjects: nil, LearningStyle: 2, Availability: []string{"monday"}, PerformanceLevel: 3},
		{Subjects: []string{"math"}, LearningStyle: 0, Availability: []string{"monday"}, PerformanceLevel: 3},
		{Subjects: []string{"math"}, LearningStyle: 2, Availability: []string{"someday"}, PerformanceLevel: 3},
		{Subjects: []string{"math"}, LearningStyle: 2, Availability: []string{"monday"}, PerformanceLevel: 6},
	}
	for _, update := range cases {
		_, err := svc.UpdateProfile(ctx, user.ID, update)
		assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
	}

	_, err = svc.UpdateProfile(ctx, 9999, account.ProfileUpdate{
		Subjects: []string{"math"}, LearningStyle: 2, Availability: []string{"monday"}, PerformanceLevel: 3,
	})
	assert.ErrorIs(t, err, apperr.ErrUserNotFound)
}
