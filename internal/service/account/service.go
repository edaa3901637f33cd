package account

import (
	"context"
	"errors"
	"strings"

	"github.com/studybuddy/studybuddy-api/internal/app"
	"github.com/studybuddy/studybuddy-api/internal/auth"
	"github.com/studybuddy/studybuddy-api/internal/config"
	"github.com/studybuddy/studybuddy-api/internal/db"
	apperr "github.com/studybuddy/studybuddy-api/internal/errors"
	"github.com/studybuddy/studybuddy-api/internal/repository"
	"github.com/studybuddy/studybuddy-api/internal/scoring"
)

// Service handles registration, login, and study-profile management.
type Service struct {
	appCtx   *app.AppContext
	userRepo *repository.UserRepository
	authCfg  config.AuthConfig
}

// NewService creates an account service with dependencies from AppContext.
func NewService(appCtx *app.AppContext, authCfg config.AuthConfig) *Service {
	return &Service{
		appCtx:   appCtx,
		userRepo: repository.NewUserRepository(appCtx.DB),
		authCfg:  authCfg,
	}
}

// Register creates a user with a hashed password and returns it together
// with a signed access token.
func (s *Service) Register(ctx context.Context, username, email, password string) (*db.User, string, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, "", err
	}

	user := &db.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Active:       true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := auth.GenerateToken(user.ID, user.Username, s.authCfg)
	if err != nil {
		return nil, "", err
	}

	s.appCtx.Logger.Info("user registered", "user_id", user.ID, "username", user.Username)
	return user, token, nil
}

// Login verifies credentials and returns the user with a fresh token.
// Unknown usernames and bad passwords both map to ErrInvalidCredentials
// so the response does not reveal which one failed.
func (s *Service) Login(ctx context.Context, username, password string) (*db.User, string, error) {
	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, apperr.ErrUserNotFound) {
			return nil, "", apperr.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, "", apperr.ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.ID, user.Username, s.authCfg)
	if err != nil {
		return nil, "", err
	}

	if err := s.userRepo.TouchLastLogin(ctx, user.ID); err != nil {
		s.appCtx.Logger.Warn("failed to record login time", "user_id", user.ID, "err", err)
	}
	return user, token, nil
}

// GetProfile returns the user's record including profile completeness.
func (s *Service) GetProfile(ctx context.Context, userID uint64) (*db.User, bool, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	return user, user.Profile().Complete(), nil
}

// ProfileUpdate carries the study-profile fields a user may change.
type ProfileUpdate struct {
	Subjects         []string
	LearningStyle    int
	Availability     []string
	PerformanceLevel int
}

// UpdateProfile validates and persists the study profile. Subjects are
// trimmed, availability days are lowercased and checked against the week.
func (s *Service) UpdateProfile(ctx context.Context, userID uint64, update ProfileUpdate) (*db.User, error) {
	subjects := normalizeSubjects(update.Subjects)
	if len(subjects) == 0 {
		return nil, apperr.InvalidArgumentf("at least one subject is required")
	}

	if update.LearningStyle < scoring.StyleVisual || update.LearningStyle > scoring.StyleKinesthetic {
		return nil, apperr.InvalidArgumentf("learning style must be between 1 and 4")
	}
	if update.PerformanceLevel < 1 || update.PerformanceLevel > 5 {
		return nil, apperr.InvalidArgumentf("performance level must be between 1 and 5")
	}

	availability, err := normalizeAvailability(update.Availability)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Subjects = subjects
	user.LearningStyle = update.LearningStyle
	user.Availability = availability
	user.PerformanceLevel = update.PerformanceLevel

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func normalizeSubjects(subjects []string) []string {
	seen := make(map[string]struct{}, len(subjects))
	out := make([]string, 0, len(subjects))
	for _, s := range subjects {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

func normalizeAvailability(days []string) ([]string, error) {
	valid := make(map[string]struct{}, len(scoring.Weekdays))
	for _, d := range scoring.Weekdays {
		valid[d] = struct{}{}
	}

	seen := make(map[string]struct{}, len(days))
	out := make([]string, 0, len(days))
	for _, d := range days {
		d = strings.ToLower(strings.TrimSpace(d))
		if _, ok := valid[d]; !ok {
			return nil, apperr.InvalidArgumentf("unknown weekday %q", d)
		}
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	if len(out) == 0 {
		return nil, apperr.InvalidArgumentf("at least one availability day is required")
	}
	return out, nil
}
