package db

import (
	"context"
	"log"

	"taskhive/internal/domain"
	"taskhive/internal/user"
)

// Migrate runs database migrations
func Migrate() {
	err := AppDb.AutoMigrate(
		&domain.User{},
		&domain.Task{},
		&domain.Collaboration{},
		&domain.ShareLink{},
		&domain.Notification{},
		&domain.PushSubscription{},
	)

	if err != nil {
		log.Fatal(err)
	}

	// One live invitation per (entity, email). Partial index so removed and
	// expired rows don't block a re-invite; the database arbitrates races
	// between concurrent invites.
	err = AppDb.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_live_collaboration
		ON collaborations (entity_type, entity_id, collaborator_email)
		WHERE status IN ('pending', 'active')
	`).Error
	if err != nil {
		log.Fatal(err)
	}

	log.Println("Database schema migrated successfully")
}

// SeedData seeds the database with initial data (for development only)
func SeedData() {
	ctx := context.Background()
	userRepo := user.NewRepository(AppDb)

	testUser := &domain.User{
		Name:     "Test User",
		Email:    "test@example.com",
		Password: "password123",
		IsActive: true,
	}

	// Check if user exists
	_, err := userRepo.FindByEmail(ctx, testUser.Email)
	if err != nil {
		userService := user.NewService(userRepo, nil)
		if err := userService.Register(ctx, testUser); err != nil {
			log.Printf("Error creating test user: %v", err)
		} else {
			log.Printf("Created test user: %s", testUser.Email)
		}
	} else {
		log.Printf("Test user already exists: %s", testUser.Email)
	}
}
