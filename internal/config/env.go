package config

import (
	"fmt"
	"log/slog"

	"github.com/kelseyhightower/envconfig"
)

type BaseEnv struct {
	Env      string `envconfig:"ENV" default:"local"`
	HTTPHost string `envconfig:"HTTP_HOST" default:""`
	HTTPPort string `envconfig:"HTTP_PORT" default:"3200"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"debug"`
	APIKey   string `envconfig:"API_KEY" required:"true"`
}

type DatabaseEnv struct {
	DSN string `envconfig:"DB_DSN" default:".buildboard/buildboard.db"`
}

type CatalogEnv struct {
	Type    string `envconfig:"CATALOG_TYPE" default:"local"`
	BaseDir string `envconfig:"CATALOG_BASE_DIR" default:"catalog"`
	// S3 settings (used when Type == "s3")
	S3Bucket string `envconfig:"CATALOG_S3_BUCKET"`
	S3Prefix string `envconfig:"CATALOG_S3_PREFIX" default:"buildboard/catalog/"`
	S3Region string `envconfig:"CATALOG_S3_REGION" default:"ap-northeast-1"`
}

type VAPIDEnv struct {
	VAPIDPublicKey  string `envconfig:"VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string `envconfig:"VAPID_PRIVATE_KEY"`
	VAPIDContact    string `envconfig:"VAPID_CONTACT" default:"mailto:ops@iehaus.example"`
}

type DigestEnv struct {
	// Local time of day (HH:MM) for the daily overdue digest.
	DigestAt string `envconfig:"DIGEST_AT" default:"08:00"`
	Timezone string `envconfig:"TIMEZONE" default:"Asia/Tokyo"`
}

type Env struct {
	BaseEnv
	DatabaseEnv
	CatalogEnv
	VAPIDEnv
	DigestEnv
}

const namespace = "BUILDBOARD"

func LoadEnv() (*Env, error) {
	var env Env
	if err := envconfig.Process(namespace, &env); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}
	return &env, nil
}

func (e *BaseEnv) SlogLevel() slog.Level {
	if e == nil {
		return slog.LevelDebug
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(e.LogLevel)); err != nil {
		return slog.LevelDebug
	}
	return level
}

func BaseEnvFromEnv(env *Env) *BaseEnv {
	return &env.BaseEnv
}

func CatalogEnvFromEnv(env *Env) *CatalogEnv {
	return &env.CatalogEnv
}

func VAPIDEnvFromEnv(env *Env) *VAPIDEnv {
	return &env.VAPIDEnv
}
