package conf

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	HttpAddr       string   `toml:"http_addr"`
	JwtKey         string   `toml:"jwt_key"`
	Env            string   `toml:"env"`
	LogLevel       string   `toml:"log_level"`
	AllowedOrigins []string `toml:"allowed_origins"`

	Postgres Postgres `toml:"postgres"`
	Aws      Aws      `toml:"aws"`
}

type Postgres struct {
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"` // local development only
	DB       string `toml:"db"`
	SslMode  string `toml:"sslmode"`
	// secret holding {"password": ...} when not on localhost
	PasswordSecretName string `toml:"password_secret_name"`
}

type Aws struct {
	Region string `toml:"region"`
	// run requests for the execution collaborator
	SubmQueueUrl string `toml:"subm_queue_url"`
	// status and score callbacks from the execution collaborator
	StatusQueueUrl string `toml:"status_queue_url"`
	DataBucket     string `toml:"data_bucket"`
}

func defaults() Config {
	return Config{
		HttpAddr:       ":8080",
		Env:            "dev",
		LogLevel:       "info",
		AllowedOrigins: []string{"http://localhost:3000"},
		Postgres: Postgres{
			Host:    "localhost",
			Port:    "5432",
			SslMode: "disable",
		},
		Aws: Aws{Region: "eu-central-1"},
	}
}

// Load reads .env when present, then the optional toml file named by
// COMP_CONF_FILE, then lets environment variables override both.
func Load() (Config, error) {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := defaults()
	if path := os.Getenv("COMP_CONF_FILE"); path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		err = toml.Unmarshal(content, &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if cfg.JwtKey == "" {
		return Config{}, errors.New("JWT_KEY is not set")
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	override := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	override(&cfg.HttpAddr, "HTTP_ADDR")
	override(&cfg.JwtKey, "JWT_KEY")
	override(&cfg.Env, "ENV")
	override(&cfg.LogLevel, "LOG_LEVEL")
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = strings.Split(v, ",")
	}

	override(&cfg.Postgres.Host, "POSTGRES_HOST")
	override(&cfg.Postgres.Port, "POSTGRES_PORT")
	override(&cfg.Postgres.User, "POSTGRES_USER")
	override(&cfg.Postgres.Password, "POSTGRES_PW")
	override(&cfg.Postgres.DB, "POSTGRES_DB")
	override(&cfg.Postgres.SslMode, "POSTGRES_SSLMODE")
	override(&cfg.Postgres.PasswordSecretName, "POSTGRES_PASSWORD_SECRET_NAME")

	override(&cfg.Aws.Region, "AWS_REGION")
	override(&cfg.Aws.SubmQueueUrl, "SUBM_SQS_QUEUE_URL")
	override(&cfg.Aws.StatusQueueUrl, "RESPONSE_SQS_URL")
	override(&cfg.Aws.DataBucket, "DATA_S3_BUCKET")
}

func (c Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
