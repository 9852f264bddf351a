package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	DatabaseURL string // SENSELOG_DATABASE_URL (required)
	HTTPAddr    string // SENSELOG_HTTP_ADDR (default ":8080")
	NATSURL     string // SENSELOG_NATS_URL (optional, empty = no events)

	// Backup settings
	BackupInterval   time.Duration // SENSELOG_BACKUP_INTERVAL (default 0 = disabled)
	BackupS3Bucket   string        // SENSELOG_BACKUP_S3_BUCKET (enables S3 when set)
	BackupS3Endpoint string        // SENSELOG_BACKUP_S3_ENDPOINT (custom endpoint for MinIO)
	BackupS3Region   string        // SENSELOG_BACKUP_S3_REGION (default "eu-north-1")
	BackupS3Key      string        // SENSELOG_BACKUP_S3_KEY (default "senselog/backup.jsonl")
	BackupGitRepo    string        // SENSELOG_BACKUP_GIT_REPO (enables git when set; path to clone)
	BackupGitFile    string        // SENSELOG_BACKUP_GIT_FILE (default "senselog.jsonl")
	BackupGitBranch  string        // SENSELOG_BACKUP_GIT_BRANCH (default "main")
}

// fileConfig is the TOML shape of an optional config file named by
// SENSELOG_CONFIG_FILE. File values act as defaults; env vars win.
type fileConfig struct {
	DatabaseURL      string `toml:"database_url"`
	HTTPAddr         string `toml:"http_addr"`
	NATSURL          string `toml:"nats_url"`
	BackupInterval   string `toml:"backup_interval"`
	BackupS3Bucket   string `toml:"backup_s3_bucket"`
	BackupS3Endpoint string `toml:"backup_s3_endpoint"`
	BackupS3Region   string `toml:"backup_s3_region"`
	BackupS3Key      string `toml:"backup_s3_key"`
	BackupGitRepo    string `toml:"backup_git_repo"`
	BackupGitFile    string `toml:"backup_git_file"`
	BackupGitBranch  string `toml:"backup_git_branch"`
}

func Load() (*Config, error) {
	var file fileConfig
	if path := os.Getenv("SENSELOG_CONFIG_FILE"); path != "" {
		if _, err := toml.DecodeFile(path, &file); err != nil {
			return nil, fmt.Errorf("SENSELOG_CONFIG_FILE: %w", err)
		}
	}

	c := &Config{
		DatabaseURL:      envOr("SENSELOG_DATABASE_URL", file.DatabaseURL),
		HTTPAddr:         envOr("SENSELOG_HTTP_ADDR", or(file.HTTPAddr, ":8080")),
		NATSURL:          envOr("SENSELOG_NATS_URL", file.NATSURL),
		BackupS3Bucket:   envOr("SENSELOG_BACKUP_S3_BUCKET", file.BackupS3Bucket),
		BackupS3Endpoint: envOr("SENSELOG_BACKUP_S3_ENDPOINT", file.BackupS3Endpoint),
		BackupS3Region:   envOr("SENSELOG_BACKUP_S3_REGION", or(file.BackupS3Region, "eu-north-1")),
		BackupS3Key:      envOr("SENSELOG_BACKUP_S3_KEY", or(file.BackupS3Key, "senselog/backup.jsonl")),
		BackupGitRepo:    envOr("SENSELOG_BACKUP_GIT_REPO", file.BackupGitRepo),
		BackupGitFile:    envOr("SENSELOG_BACKUP_GIT_FILE", or(file.BackupGitFile, "senselog.jsonl")),
		BackupGitBranch:  envOr("SENSELOG_BACKUP_GIT_BRANCH", or(file.BackupGitBranch, "main")),
	}
	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("SENSELOG_DATABASE_URL is required")
	}

	intervalStr := envOr("SENSELOG_BACKUP_INTERVAL", file.BackupInterval)
	if intervalStr != "" {
		d, err := time.ParseDuration(intervalStr)
		if err != nil {
			return nil, fmt.Errorf("SENSELOG_BACKUP_INTERVAL: %w", err)
		}
		c.BackupInterval = d
	}

	return c, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func or(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
