// seed.go populates a fresh deployment with decoy data. An empty honeypot is a dead
// giveaway, so first boot fabricates a believable set of user accounts and bait file
// links for the simulator to attribute events to. Seeding is idempotent: it is skipped
// whenever any users already exist.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/decoydrop/decoydrop/internal/db/models"
	"github.com/decoydrop/decoydrop/internal/db/repositories"
	"github.com/decoydrop/decoydrop/internal/simulator"
	"github.com/decoydrop/decoydrop/pkg/checksum"
	"github.com/google/uuid"
)

const (
	seedUserCount     = 12
	seedFileLinkCount = 8
)

// Seed creates the initial decoy users and bait file links if the database is
// empty. Each link gets a fabricated size and a real SHA-256 checksum over its
// own identity so the advertised metadata holds up to casual inspection.
func Seed(ctx context.Context, database *sql.DB) error {
	userRepo := repositories.NewUserRepository(database)
	fileRepo := repositories.NewFileLinkRepository(database)

	count, err := userRepo.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		slog.Debug("seed skipped: decoy data already present", "users", count)
		return nil
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	users := make([]*models.User, 0, seedUserCount)
	seen := make(map[string]bool)
	for len(users) < seedUserCount {
		name := simulator.RandomFullName(rng)
		email := emailFor(name)
		if seen[email] {
			continue
		}
		seen[email] = true

		user := &models.User{Email: email, Name: name}
		if err := userRepo.CreateUser(ctx, user); err != nil {
			return fmt.Errorf("failed to seed user %s: %w", email, err)
		}
		users = append(users, user)
	}

	for i := 0; i < seedFileLinkCount; i++ {
		owner := users[rng.Intn(len(users))]
		fileName := simulator.RandomFileName(rng)
		token := uuid.New().String()

		sum, err := checksum.CalculateSHA256(strings.NewReader(fileName + ":" + token))
		if err != nil {
			return fmt.Errorf("failed to fabricate checksum: %w", err)
		}

		link := &models.FileLink{
			OwnerID:   &owner.ID,
			FileName:  fileName,
			SizeBytes: 4096 + rng.Int63n(48*1024*1024),
			Checksum:  sum,
			Token:     token,
			ExpiresAt: simulator.RandomExpiry(rng, time.Now()),
		}
		if err := fileRepo.CreateFileLink(ctx, link); err != nil {
			return fmt.Errorf("failed to seed file link %s: %w", fileName, err)
		}
	}

	slog.Info("seeded decoy data", "users", seedUserCount, "file_links", seedFileLinkCount)
	return nil
}

// emailFor derives a company-style address from a decoy name.
func emailFor(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@decoydrop.example.com"
}
