package server

import (
	"context"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/campusquest/api/internal/campus"
	"github.com/campusquest/api/internal/docstore"
	"github.com/campusquest/api/internal/users"
)

// SeedDemo creates an admin account, two demo players, and a sample
// quest if no users exist. Idempotent: does nothing on a populated DB.
func SeedDemo(ctx context.Context, logger *slog.Logger, docs *docstore.Store, us *users.Store) error {
	n, err := docs.Count(ctx, docstore.Users)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	accounts := []struct {
		name     string
		email    string
		password string
		admin    bool
	}{
		{"Admin", "admin@campusquest.local", "change-me-now", true},
		{"Alice", "alice@campusquest.local", "demo-password", false},
		{"Bob", "bob@campusquest.local", "demo-password", false},
	}

	var adminID string
	for _, a := range accounts {
		hash, err := bcrypt.GenerateFromPassword([]byte(a.password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		u := campus.User{
			ID:           docstore.NewID(),
			Name:         a.name,
			Email:        a.email,
			PasswordHash: string(hash),
			Admin:        a.admin,
		}
		if err := us.Create(ctx, u); err != nil {
			return err
		}
		if a.admin {
			adminID = u.ID
		}
	}

	// Sample quest created directly, skipping the image upload.
	q := campus.Quest{
		ID:          docstore.NewID(),
		Name:        "Find the sundial",
		Description: "Take a photo of the old sundial behind the main library.",
		Emoji:       "🕰️",
		Color:       "#f59e0b",
		Lat:         49.41045,
		Lng:         8.69304,
		Radius:      60,
		Reward:      25,
		ImageURL:    "/uploads/seed/sundial.jpg",
		CreatorID:   adminID,
		Active:      true,
		CreatedAt:   docstore.NowUTC(),
	}
	if err := docs.Set(ctx, docstore.Quests, q.ID, q); err != nil {
		return err
	}

	logger.Info("demo accounts and quest seeded")
	return nil
}
