package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/studybuddy/studybuddy-api/internal/db"
	apperr "github.com/studybuddy/studybuddy-api/internal/errors"
)

// Candidate scan cap. The subject sets live in JSON columns, which neither
// the MySQL runtime nor the SQLite test database can index portably, so
// overlap is evaluated in memory over a bounded scan of complete profiles.
const candidateScanCap = 500

// UserRepository provides data access for user records and their study
// profiles.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new repository bound to the given DB connection.
func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{db: database}
}

// GetByID loads a user by primary key.
func (r *UserRepository) GetByID(ctx context.Context, userID uint64) (*db.User, error) {
	var user db.User
	err := r.db.WithContext(ctx).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByUsername loads a user by username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*db.User, error) {
	var user db.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByIDs loads a batch of users keyed by ID.
func (r *UserRepository) GetByIDs(ctx context.Context, userIDs []uint64) (map[uint64]*db.User, error) {
	if len(userIDs) == 0 {
		return map[uint64]*db.User{}, nil
	}

	var users []db.User
	if err := r.db.WithContext(ctx).Where("id IN ?", userIDs).Find(&users).Error; err != nil {
		return nil, err
	}

	byID := make(map[uint64]*db.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}
	return byID, nil
}

// Create inserts a new user, translating unique-index violations on
// username/email into the matching domain error.
func (r *UserRepository) Create(ctx context.Context, user *db.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		var count int64
		r.db.WithContext(ctx).Model(&db.User{}).Where("username = ?", user.Username).Count(&count)
		if count > 0 {
			return apperr.ErrUsernameTaken
		}
		return apperr.ErrEmailTaken
	}
	return err
}

// UpdateProfile persists the study-profile fields of the user row.
func (r *UserRepository) UpdateProfile(ctx context.Context, user *db.User) error {
	res := r.db.WithContext(ctx).Model(&db.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"subjects":          user.Subjects,
			"learning_style":    user.LearningStyle,
			"availability":      user.Availability,
			"performance_level": user.PerformanceLevel,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.ErrUserNotFound
	}
	return nil
}

// TouchLastLogin records a successful login.
func (r *UserRepository) TouchLastLogin(ctx context.Context, userID uint64) error {
	return r.db.WithContext(ctx).Model(&db.User{}).
		Where("id = ?", userID).
		UpdateColumn("last_login_at", gorm.Expr("CURRENT_TIMESTAMP")).Error
}

// FindCandidates returns up to limit active users, excluding excludeUserID,
// whose profile is complete and shares at least one subject with the given
// set.
func (r *UserRepository) FindCandidates(ctx context.Context, subjects []string, excludeUserID uint64, limit int) ([]db.User, error) {
	var scanned []db.User
	err := r.db.WithContext(ctx).
		Where("id <> ? AND active = ?", excludeUserID, true).
		Where("learning_style BETWEEN 1 AND 4 AND performance_level BETWEEN 1 AND 5").
		Limit(candidateScanCap).
		Find(&scanned).Error
	if err != nil {
		return nil, err
	}

	candidates := make([]db.User, 0, limit)
	for _, u := range scanned {
		profile := u.Profile()
		if !profile.Complete() || !profile.SharesSubject(subjects) {
			continue
		}
		candidates = append(candidates, u)
		if len(candidates) >= limit {
			break
		}
	}
	return candidates, nil
}
