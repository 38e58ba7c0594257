// Package seed creates demo users and posts for development databases.
package seed

import (
	"fmt"
	"log"

	"lireddit/internal/auth"
	"lireddit/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// DefaultPassword is the plaintext password of every seeded user.
const DefaultPassword = "password123"

// Options controls a seeding run.
type Options struct {
	NumUsers   int
	NumPosts   int
	Clean      bool
	SkipBcrypt bool
	DryRun     bool
	Seed       int64
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db     *gorm.DB
	opts   Options
	faker  *gofakeit.Faker
	hash   string
	nextID uint
}

// NewFactory creates a new Factory bound to the provided Gorm DB. A zero
// opts.Seed picks a random seed.
func NewFactory(db *gorm.DB, opts Options) (*Factory, error) {
	f := &Factory{db: db, opts: opts, faker: gofakeit.New(opts.Seed), nextID: 1000}

	if opts.SkipBcrypt {
		f.hash = DefaultPassword
		return f, nil
	}
	hash, err := auth.NewBcryptHasher(0).Hash(DefaultPassword)
	if err != nil {
		return nil, err
	}
	f.hash = hash
	return f, nil
}

// BuildUser returns an unsaved user with a unique-looking username.
func (f *Factory) BuildUser(overrides ...func(*models.User)) *models.User {
	user := &models.User{
		Username: fmt.Sprintf("%s%d", f.faker.Username(), f.faker.Number(100, 999)),
		Password: f.hash,
	}
	for _, override := range overrides {
		override(user)
	}
	return user
}

// CreateUser constructs and persists a sample user.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := f.BuildUser(overrides...)

	if f.opts.DryRun {
		f.nextID++
		user.ID = f.nextID
		log.Printf("[dry-run] CreateUser: %s", user.Username)
		return user, nil
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost returns an unsaved post with a generated title.
func (f *Factory) BuildPost(overrides ...func(*models.Post)) *models.Post {
	post := &models.Post{Title: f.faker.Sentence(f.faker.Number(3, 8))}
	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePostsBatch persists posts in a single insert.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	if f.opts.DryRun {
		for _, p := range posts {
			f.nextID++
			p.ID = f.nextID
		}
		log.Printf("[dry-run] CreatePostsBatch: %d posts", len(posts))
		return nil
	}
	return f.db.CreateInBatches(posts, 100).Error
}
