package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every runtime setting the server needs. The JWT secret is
// required so that tokens survive restarts instead of being invalidated
// by a freshly generated process secret.
type Config struct {
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`
	DatabaseURL string `env:"DATABASE_URL" envDefault:"host=localhost user=postgres password=postgres dbname=inkwell port=5432 sslmode=disable"`

	JWTSecret       string        `env:"JWT_SECRET,required,notEmpty"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"30m"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"`

	PostsDir          string `env:"POSTS_DIR" envDefault:"./blog/_posts"`
	AssetsDir         string `env:"ASSETS_DIR" envDefault:"./blog/public/assets/blog"`
	DefaultCoverImage string `env:"DEFAULT_COVER_IMAGE" envDefault:"/assets/blog/dynamic-routing/cover.webp"`
}

// Load reads an optional .env file and parses the environment into a
// Config struct.
func Load() (*Config, error) {
	// Missing .env is fine, environment variables take over.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
