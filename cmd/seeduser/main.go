// cmd/seeduser/main.go creates or resets the bootstrap administrator.
// Usage: SEED_PASSWORD=... go run ./cmd/seeduser
package main

import (
	"context"
	"os"

	"github.com/Jassur2025/metallerp-sub000/internal/config"
	"github.com/Jassur2025/metallerp-sub000/internal/infra"
	"github.com/Jassur2025/metallerp-sub000/internal/model"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm/clause"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	username := envOr("SEED_USERNAME", "admin")
	password := os.Getenv("SEED_PASSWORD")
	if password == "" {
		log.Fatal().Msg("SEED_PASSWORD is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt failed")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	user := model.User{
		Username:     username,
		FullName:     envOr("SEED_FULL_NAME", "Administrator"),
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
		Active:       true,
	}
	err = db.WithContext(context.Background()).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoUpdates: clause.AssignmentColumns([]string{"password_hash", "full_name", "role", "active"}),
	}).Create(&user).Error
	if err != nil {
		log.Fatal().Err(err).Msg("upsert failed")
	}
	log.Info().Str("username", username).Msg("administrator created or updated")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
