package db

import (
	"time"

	"gorm.io/datatypes"

	"github.com/studybuddy/studybuddy-api/internal/scoring"
)

// User table. Profile fields live directly on the user row; the subject
// and availability sets are JSON columns so the schema works on both the
// MySQL runtime and the SQLite test database.
type User struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Email        string `gorm:"uniqueIndex;size:128;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	Active       bool   `gorm:"default:true" json:"active"`

	Subjects         datatypes.JSONSlice[string] `json:"subjects"`
	LearningStyle    int                         `gorm:"default:0" json:"learningStyle"`
	Availability     datatypes.JSONSlice[string] `json:"availability"`
	PerformanceLevel int                         `gorm:"default:0" json:"performanceLevel"`

	LastLoginAt time.Time `json:"lastLoginAt"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// Profile returns the scoring view of the user record.
func (u *User) Profile() scoring.Profile {
	return scoring.Profile{
		Subjects:         u.Subjects,
		LearningStyle:    u.LearningStyle,
		Availability:     u.Availability,
		PerformanceLevel: u.PerformanceLevel,
	}
}

// MatchStatus is the lifecycle state of a match record.
type MatchStatus string

const (
	MatchStatusPending  MatchStatus = "pending"
	MatchStatusActive   MatchStatus = "active"
	MatchStatusBlocked  MatchStatus = "blocked"
	MatchStatusDeclined MatchStatus = "declined"
)

// MatchType describes the like state of a pair. Informational only.
type MatchType string

const (
	MatchTypeSuggested MatchType = "suggested"
	MatchTypeOneWay    MatchType = "one-way"
	MatchTypeMutual    MatchType = "mutual"
)

// Interaction event types appended to a match's history.
const (
	InteractionLike             = "like"
	InteractionRating           = "rating"
	InteractionDecline          = "decline"
	InteractionBlock            = "block"
	InteractionSessionCompleted = "session_completed"
)

// Match is the single record per unordered user pair.
//
// Canonical ordering: the lower user ID is stored as UserID, the higher as
// MatchedUserID, fixed at creation time. The unique index on
// (user_id, matched_user_id) is the sole arbiter of concurrent creates.
//
// Like flags are per side of the canonical pair; MutualLike is recomputed
// whenever either flag changes. Matches are never hard-deleted; removal is
// a transition to declined or blocked.
type Match struct {
	ID            uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        uint64 `gorm:"not null;uniqueIndex:idx_match_pair,priority:1;index:idx_match_user_status,priority:1" json:"userId"`
	MatchedUserID uint64 `gorm:"not null;uniqueIndex:idx_match_pair,priority:2;index" json:"matchedUserId"`

	Compatibility int         `gorm:"not null;default:0" json:"compatibility"`
	Status        MatchStatus `gorm:"type:varchar(16);not null;default:'pending';index:idx_match_user_status,priority:2" json:"status"`
	MatchType     MatchType   `gorm:"type:varchar(16);not null;default:'suggested'" json:"matchType"`

	UserLiked        bool `gorm:"not null;default:false" json:"userLiked"`
	MatchedUserLiked bool `gorm:"not null;default:false" json:"matchedUserLiked"`
	MutualLike       bool `gorm:"not null;default:false" json:"mutualLike"`

	SessionCount      int       `gorm:"not null;default:0" json:"sessionCount"`
	LastInteractionAt time.Time `json:"lastInteractionAt"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	Interactions []MatchInteraction `gorm:"foreignKey:MatchID" json:"interactions,omitempty"`
	Ratings      []MatchRating      `gorm:"foreignKey:MatchID" json:"ratings,omitempty"`
}

// OtherUserID returns the counterpart of userID within the pair.
func (m *Match) OtherUserID(userID uint64) uint64 {
	if m.UserID == userID {
		return m.MatchedUserID
	}
	return m.UserID
}

// HasParticipant reports whether userID is a party to the pair.
func (m *Match) HasParticipant(userID uint64) bool {
	return m.UserID == userID || m.MatchedUserID == userID
}

// MatchInteraction is one entry of the append-only interaction history.
// Rows are never updated or pruned.
type MatchInteraction struct {
	ID      uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	MatchID uint64 `gorm:"not null;index" json:"matchId"`
	ActorID uint64 `gorm:"not null" json:"actorId"`
	Type    string `gorm:"type:varchar(32);not null" json:"type"`
	Details string `gorm:"type:text" json:"details,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// MatchRating holds at most one rating per side of a match. The unique
// index on (match_id, rater_id) makes the immutability guarantee cheap to
// enforce: a second insert for the same rater violates the constraint.
type MatchRating struct {
	ID      uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	MatchID uint64 `gorm:"not null;uniqueIndex:idx_rating_per_side,priority:1" json:"matchId"`
	RaterID uint64 `gorm:"not null;uniqueIndex:idx_rating_per_side,priority:2" json:"raterId"`
	Score   int    `gorm:"not null" json:"score"`
	Comment string `gorm:"size:300" json:"comment,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}
