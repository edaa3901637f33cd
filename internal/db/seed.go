package db

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/studybuddy/studybuddy-api/internal/scoring"
)

var seedSubjects = [][]string{
	{"Math", "Physics"},
	{"Math", "Computer Science"},
	{"Physics", "Chemistry"},
	{"Biology", "Chemistry"},
	{"Computer Science", "Statistics"},
	{"Math", "Statistics", "Economics"},
	{"History", "Literature"},
	{"Economics", "Statistics"},
}

var seedAvailability = [][]string{
	{"monday", "wednesday", "friday"},
	{"tuesday", "thursday"},
	{"saturday", "sunday"},
	{"monday", "tuesday", "wednesday", "thursday"},
	{"friday", "saturday"},
}

// SeedTestData resets the database and populates it with demo students and
// pre-scored matches.
//
// Behavior:
//  1. Clears existing data in all match-related tables and `users`.
//  2. Creates 20 students with hashed passwords and complete profiles.
//  3. Scores every pair and materializes matches above the discovery
//     threshold; roughly every third match is promoted to mutual/active.
//
// Compatible with both MySQL and SQLite (AUTO_INCREMENT reset skipped for
// SQLite).
func SeedTestData(db *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	for _, table := range []string{"match_ratings", "match_interactions", "matches", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	switch db.Dialector.Name() {
	case "mysql":
		db.Exec("ALTER TABLE matches AUTO_INCREMENT = 1")
		db.Exec("ALTER TABLE users AUTO_INCREMENT = 1")
	case "sqlite":
		db.Exec("DELETE FROM sqlite_sequence WHERE name IN ('matches', 'users')")
	}

	log.Println("Cleared existing data")

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	users := make([]User, 0, 20)
	for i := 1; i <= 20; i++ {
		user := User{
			Username:         fmt.Sprintf("student%d", i),
			Email:            fmt.Sprintf("student%d@example.com", i),
			PasswordHash:     string(hash),
			Active:           true,
			Subjects:         seedSubjects[r.Intn(len(seedSubjects))],
			LearningStyle:    r.Intn(4) + 1,
			Availability:     seedAvailability[r.Intn(len(seedAvailability))],
			PerformanceLevel: r.Intn(5) + 1,
			LastLoginAt:      time.Now().Add(-time.Duration(r.Intn(500)) * time.Hour),
		}
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}
		users = append(users, user)
	}
	log.Printf("Seeded %d students.", len(users))

	counter := 0
	for i := range users {
		for j := i + 1; j < len(users); j++ {
			a, b := users[i], users[j]
			score := scoring.Score(a.Profile(), b.Profile())
			if score <= 50 {
				continue
			}

			match := Match{
				UserID:            a.ID,
				MatchedUserID:     b.ID,
				Compatibility:     score,
				Status:            MatchStatusPending,
				MatchType:         MatchTypeSuggested,
				LastInteractionAt: time.Now(),
			}

			// promote roughly every third seeded match to mutual
			if counter%3 == 0 {
				match.UserLiked = true
				match.MatchedUserLiked = true
				match.MutualLike = true
				match.Status = MatchStatusActive
				match.MatchType = MatchTypeMutual
			} else if r.Intn(2) == 0 {
				match.UserLiked = true
				match.MatchType = MatchTypeOneWay
			}

			if err := db.Create(&match).Error; err != nil {
				return fmt.Errorf("failed to seed match: %w", err)
			}

			if match.MutualLike {
				events := []MatchInteraction{
					{MatchID: match.ID, ActorID: a.ID, Type: InteractionLike},
					{MatchID: match.ID, ActorID: b.ID, Type: InteractionLike},
				}
				if err := db.Create(&events).Error; err != nil {
					return fmt.Errorf("failed to seed interactions: %w", err)
				}
			}

			counter++
		}
	}
	log.Printf("Seeded %d matches.", counter)

	return nil
}
