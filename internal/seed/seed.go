package seed

import (
	"context"
	"fmt"
	"log/slog"

	"lireddit/internal/middleware"
	"lireddit/internal/models"

	"gorm.io/gorm"
)

// baseUsers are always created first so demos have predictable logins.
var baseUsers = []string{"ben", "alice", "test"}

// Result reports what a seeding run created.
type Result struct {
	Users []*models.User
	Posts []*models.Post
}

// Seed populates the database with demo users and posts.
func Seed(ctx context.Context, db *gorm.DB, opts Options) (*Result, error) {
	middleware.Logger.InfoContext(ctx, "Starting database seeding",
		slog.Int("users", opts.NumUsers),
		slog.Int("posts", opts.NumPosts),
	)

	if opts.Clean && !opts.DryRun {
		if err := ClearAll(ctx, db); err != nil {
			return nil, fmt.Errorf("failed to clear data: %w", err)
		}
	}

	f, err := NewFactory(db.WithContext(ctx), opts)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	for i := 0; i < opts.NumUsers; i++ {
		var overrides []func(*models.User)
		if i < len(baseUsers) {
			name := baseUsers[i]
			overrides = append(overrides, func(u *models.User) { u.Username = name })
		}
		user, err := f.CreateUser(overrides...)
		if err != nil {
			middleware.Logger.WarnContext(ctx, "Skipping seed user", slog.String("error", err.Error()))
			continue
		}
		res.Users = append(res.Users, user)
	}

	posts := make([]*models.Post, 0, opts.NumPosts)
	for i := 0; i < opts.NumPosts; i++ {
		posts = append(posts, f.BuildPost())
	}
	if err := f.CreatePostsBatch(posts); err != nil {
		return nil, fmt.Errorf("failed to create posts: %w", err)
	}
	res.Posts = posts

	middleware.Logger.InfoContext(ctx, "Database seeding completed",
		slog.Int("users", len(res.Users)),
		slog.Int("posts", len(res.Posts)),
	)
	return res, nil
}

// ClearAll deletes every post and user.
func ClearAll(ctx context.Context, db *gorm.DB) error {
	tx := db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true})
	if err := tx.Delete(&models.Post{}).Error; err != nil {
		return err
	}
	return tx.Delete(&models.User{}).Error
}
