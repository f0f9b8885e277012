package conf

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"google.golang.org/protobuf/types/known/durationpb"
)

// Bootstrap is the root of configs/config.yaml.
type Bootstrap struct {
	Server   *Server   `json:"server"`
	Data     *Data     `json:"data"`
	Metadata *Metadata `json:"metadata"`
	Auth     *Auth     `json:"auth"`
	Tracker  *Tracker  `json:"tracker"`
	Log      *Log      `json:"log"`
}

type Server struct {
	HTTP *HTTP `json:"http"`
}

type HTTP struct {
	Network string               `json:"network"`
	Addr    string               `json:"addr"`
	Timeout *durationpb.Duration `json:"timeout"`
}

type Data struct {
	Database *Database `json:"database"`
	Redis    *Redis    `json:"redis"`
}

type Database struct {
	Driver  string `json:"driver"`
	Source  string `json:"source"`
	Migrate bool   `json:"migrate"`
}

type Redis struct {
	Addr         string               `json:"addr"`
	Password     string               `json:"password"`
	ReadTimeout  *durationpb.Duration `json:"read_timeout"`
	WriteTimeout *durationpb.Duration `json:"write_timeout"`
	TTL          *durationpb.Duration `json:"ttl"`
}

// Metadata configures the OMDb title metadata API.
type Metadata struct {
	URL     string               `json:"url"`
	APIKey  string               `json:"api_key"`
	Timeout *durationpb.Duration `json:"timeout"`
}

// Auth configures session token verification.
type Auth struct {
	JWTSecret string `json:"jwt_secret"`
	Audience  string `json:"audience"`
	Issuer    string `json:"issuer"`
}

type Tracker struct {
	RatingMin          int32    `json:"rating_min"`
	RatingMax          int32    `json:"rating_max"`
	Breakpoint         int32    `json:"breakpoint"`
	HydrateConcurrency int32    `json:"hydrate_concurrency"`
	NotificationBuffer int32    `json:"notification_buffer"`
	TopPicks           []string `json:"top_picks"`
}

type Log struct {
	Level      string `json:"level"`
	File       string `json:"file"`
	MaxSizeMB  int32  `json:"max_size_mb"`
	MaxBackups int32  `json:"max_backups"`
}

// Env holds the values that may be overridden from the environment.
type Env struct {
	DatabaseURL string `envconfig:"DATABASE_URL"`
	RedisAddr   string `envconfig:"REDIS_ADDR"`
	OMDbAPIKey  string `envconfig:"OMDB_API_KEY"`
	JWTSecret   string `envconfig:"JWT_SECRET"`
	HTTPAddr    string `envconfig:"HTTP_ADDR"`
	LogLevel    string `envconfig:"LOG_LEVEL"`
}

// ApplyEnv loads .env when present and overlays CINENOTE_* variables onto bc.
func ApplyEnv(bc *Bootstrap) error {
	_ = godotenv.Load()
	var env Env
	if err := envconfig.Process("cinenote", &env); err != nil {
		return err
	}
	bc.Overlay(env)
	return bc.Tracker.Validate()
}

// Overlay copies every non-empty value of env into bc and fills defaults.
func (bc *Bootstrap) Overlay(env Env) {
	bc.setDefaults()
	if env.DatabaseURL != "" {
		bc.Data.Database.Source = env.DatabaseURL
	}
	if env.RedisAddr != "" {
		bc.Data.Redis.Addr = env.RedisAddr
	}
	if env.OMDbAPIKey != "" {
		bc.Metadata.APIKey = env.OMDbAPIKey
	}
	if env.JWTSecret != "" {
		bc.Auth.JWTSecret = env.JWTSecret
	}
	if env.HTTPAddr != "" {
		bc.Server.HTTP.Addr = env.HTTPAddr
	}
	if env.LogLevel != "" {
		bc.Log.Level = env.LogLevel
	}
}

func (bc *Bootstrap) setDefaults() {
	if bc.Server == nil {
		bc.Server = &Server{}
	}
	if bc.Server.HTTP == nil {
		bc.Server.HTTP = &HTTP{Addr: "127.0.0.1:8000"}
	}
	if bc.Data == nil {
		bc.Data = &Data{}
	}
	if bc.Data.Database == nil {
		bc.Data.Database = &Database{Driver: "postgres"}
	}
	if bc.Data.Redis == nil {
		bc.Data.Redis = &Redis{}
	}
	if bc.Metadata == nil {
		bc.Metadata = &Metadata{}
	}
	if bc.Metadata.URL == "" {
		bc.Metadata.URL = "https://www.omdbapi.com/"
	}
	if bc.Metadata.Timeout == nil {
		bc.Metadata.Timeout = durationpb.New(10 * time.Second)
	}
	if bc.Auth == nil {
		bc.Auth = &Auth{Audience: "authenticated"}
	}
	if bc.Tracker == nil {
		bc.Tracker = &Tracker{}
	}
	bc.Tracker.setDefaults()
	if bc.Log == nil {
		bc.Log = &Log{Level: "info"}
	}
}

// Validate rejects settings no review could satisfy.
func (t *Tracker) Validate() error {
	if t.RatingMin > t.RatingMax {
		return fmt.Errorf("tracker: rating_min %d is greater than rating_max %d", t.RatingMin, t.RatingMax)
	}
	return nil
}

func (t *Tracker) setDefaults() {
	if t.RatingMin == 0 && t.RatingMax == 0 {
		t.RatingMax = 10
	}
	if t.Breakpoint <= 0 {
		t.Breakpoint = 768
	}
	if t.HydrateConcurrency <= 0 {
		t.HydrateConcurrency = 4
	}
	if t.NotificationBuffer <= 0 {
		t.NotificationBuffer = 50
	}
}
