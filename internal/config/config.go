package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates all runtime settings required by the extension server.
type Config struct {
	AppName     string
	Environment string
	HTTP        HTTPConfig
	Grader      GraderConfig
	Sync        SyncConfig
	Context     ContextConfig
	Logger      LoggerConfig
}

type HTTPConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	// Concurrency caps simultaneous connections; 0 keeps the server default.
	Concurrency int
	// AccessToken guards the UI-facing endpoints. Empty disables the check
	// (local development only).
	AccessToken string
}

// GraderConfig describes how to reach the remote grading service.
type GraderConfig struct {
	APIURL string
	// SocketURL is the push-channel endpoint. Derived from APIURL when empty.
	SocketURL string
	UserOnyen string
	// AutogenPassword enables password auth when set (e.g. running locally).
	AutogenPassword string
	// AccessToken is the appstore token used when no password is configured.
	AccessToken string
	// JWTRefreshLeeway refreshes the grader token this long before expiry.
	JWTRefreshLeeway time.Duration
}

// SyncConfig tunes the synchronization engine.
type SyncConfig struct {
	AssignmentPollInterval time.Duration
	CoursePollInterval     time.Duration
	RosterPollInterval     time.Duration
	ReconnectDelay         time.Duration
	DebounceWindow         time.Duration
	// InstructorMode additionally polls the course roster.
	InstructorMode bool
}

type ContextConfig struct {
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

// Load reads configuration from environment variables (optionally .env)
// and applies sane defaults so the extension can boot in any environment.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		AppName:     getString("APP_NAME", "eduhelx-student-ext"),
		Environment: getString("APP_ENV", "development"),
		HTTP: HTTPConfig{
			Host:         getString("SERVER_HOST", "127.0.0.1"),
			Port:         getString("SERVER_PORT", "8040"),
			ReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			Concurrency:  getInt("SERVER_CONCURRENCY", 0),
			AccessToken:  os.Getenv("SERVER_ACCESS_TOKEN"),
		},
		Grader: GraderConfig{
			APIURL:           getString("GRADER_API_URL", "http://localhost:8000"),
			SocketURL:        os.Getenv("GRADER_SOCKET_URL"),
			UserOnyen:        os.Getenv("USER_NAME"),
			AutogenPassword:  os.Getenv("USER_AUTOGEN_PASSWORD"),
			AccessToken:      os.Getenv("ACCESS_TOKEN"),
			JWTRefreshLeeway: getDuration("JWT_REFRESH_LEEWAY", 60*time.Second),
		},
		Sync: SyncConfig{
			AssignmentPollInterval: getDuration("ASSIGNMENT_POLL_INTERVAL", 5*time.Second),
			CoursePollInterval:     getDuration("COURSE_POLL_INTERVAL", 15*time.Second),
			RosterPollInterval:     getDuration("ROSTER_POLL_INTERVAL", 30*time.Second),
			ReconnectDelay:         getDuration("SOCKET_RECONNECT_DELAY", time.Second),
			DebounceWindow:         getDuration("EDIT_DEBOUNCE_WINDOW", time.Second),
			InstructorMode:         getBool("INSTRUCTOR_MODE", false),
		},
		Context: ContextConfig{
			RequestTimeout:  getDuration("REQUEST_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
		},
		Logger: LoggerConfig{
			Level:    getString("LOG_LEVEL", "info"),
			Encoding: getString("LOG_ENCODING", "json"),
		},
	}

	if cfg.Grader.UserOnyen == "" {
		return nil, fmt.Errorf("config: USER_NAME is required")
	}
	if cfg.Grader.AutogenPassword == "" && cfg.Grader.AccessToken == "" {
		return nil, fmt.Errorf("config: either USER_AUTOGEN_PASSWORD or ACCESS_TOKEN must be set")
	}

	return cfg, nil
}

// Address returns the host:port pair the API server binds to.
func (c *Config) Address() string {
	return c.HTTP.Host + ":" + c.HTTP.Port
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
