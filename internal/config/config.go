package config

import "time"

// Config is the root application configuration.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Storage   StorageConfig   `yaml:"storage"`
	Ingestion IngestionConfig `yaml:"ingestion"`
	Log       LogConfig       `yaml:"log"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"5"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"1"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// StorageConfig holds the S3-compatible object store (Cloudflare R2) settings.
// Every field except Endpoint and Region is required for uploads to be enabled.
type StorageConfig struct {
	AccountID       string `yaml:"account_id"        env:"R2_ACCOUNT_ID"`
	Bucket          string `yaml:"bucket"            env:"R2_BUCKET"`
	AccessKeyID     string `yaml:"access_key_id"     env:"R2_ACCESS_KEY_ID"`
	SecretAccessKey string `yaml:"secret_access_key" env:"R2_SECRET_ACCESS_KEY"`
	PublicBaseURL   string `yaml:"public_base_url"   env:"R2_PUBLIC_BASE_URL"`
	// Endpoint overrides the account-derived R2 endpoint (MinIO, local testing).
	Endpoint string `yaml:"endpoint" env:"R2_ENDPOINT"`
	Region   string `yaml:"region"   env:"R2_REGION" env-default:"auto"`
}

// IngestionConfig holds defaults for ingestion and removal runs.
type IngestionConfig struct {
	Environment     string        `yaml:"environment"       env:"INGESTION_ENVIRONMENT"       env-default:"development"`
	AudioDir        string        `yaml:"audio_dir"         env:"INGESTION_AUDIO_DIR"         env-default:"./audio"`
	TxTimeout       time.Duration `yaml:"tx_timeout"        env:"INGESTION_TX_TIMEOUT"        env-default:"10m"`
	DeleteChunkSize int           `yaml:"delete_chunk_size" env:"INGESTION_DELETE_CHUNK_SIZE" env-default:"1000"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}

// Enabled reports whether the object store configuration is complete.
// An endpoint override replaces the account id.
func (s StorageConfig) Enabled() bool {
	hasTarget := s.AccountID != "" || s.Endpoint != ""
	return hasTarget && s.Bucket != "" && s.AccessKeyID != "" && s.SecretAccessKey != "" && s.PublicBaseURL != ""
}

// Missing lists the fields that keep a partly filled storage section from
// being enabled. It is empty when the section is complete or entirely unset.
func (s StorageConfig) Missing() []string {
	if s.Enabled() {
		return nil
	}
	var missing []string
	if s.AccountID == "" && s.Endpoint == "" {
		missing = append(missing, "account_id")
	}
	if s.Bucket == "" {
		missing = append(missing, "bucket")
	}
	if s.AccessKeyID == "" {
		missing = append(missing, "access_key_id")
	}
	if s.SecretAccessKey == "" {
		missing = append(missing, "secret_access_key")
	}
	if s.PublicBaseURL == "" {
		missing = append(missing, "public_base_url")
	}
	if len(missing) == 5 {
		return nil
	}
	return missing
}

// EndpointURL returns the S3 API endpoint for the configured account.
func (s StorageConfig) EndpointURL() string {
	if s.Endpoint != "" {
		return s.Endpoint
	}
	return "https://" + s.AccountID + ".r2.cloudflarestorage.com"
}
