package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Settings holds every environment-driven knob of the API.
type Settings struct {
	Environment string
	GinMode     string
	ServerPort  string

	DBHost         string
	DBPort         string
	DBDatabase     string
	DBUsername     string
	DBPassword     string
	DBMaxOpenConns int
	DBMaxIdleConns int
	DebugSQL       bool

	JWTSecret      string
	JWTExpireHours int

	CORSOrigins []string
	FrontendURL string

	StorageDriver  string // local|s3
	UploadPath     string
	UploadMaxBytes int64
	S3Endpoint     string
	S3Region       string
	S3Bucket       string
	S3AccessKey    string
	S3SecretKey    string
	S3PathStyle    bool

	NATSURL string

	SMTPHost      string
	SMTPPort      int
	SMTPUser      string
	SMTPPass      string
	SMTPFrom      string
	SMTPSkipTLS   bool
	MonitorToken  string
	SweepInterval time.Duration

	ReminderWindow time.Duration
	DueSoonWindow  time.Duration
}

// Load reads .env (when present) and then the process environment.
func Load() Settings {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return Settings{
		Environment: strings.ToLower(os.Getenv("ENVIRONMENT")),
		GinMode:     os.Getenv("GIN_MODE"),
		ServerPort:  envOr("SERVER_PORT", "8080"),

		DBHost:         envOr("DB_HOST", "localhost"),
		DBPort:         envOr("DB_PORT", "3306"),
		DBDatabase:     envOr("DB_DATABASE", "discovery"),
		DBUsername:     envOr("DB_USERNAME", "root"),
		DBPassword:     os.Getenv("DB_PASSWORD"),
		DBMaxOpenConns: envInt("DB_MAX_OPEN_CONNS", 10),
		DBMaxIdleConns: envInt("DB_MAX_IDLE_CONNS", 5),
		DebugSQL:       strings.ToLower(os.Getenv("DEBUG_SQL")) == "true",

		JWTSecret:      os.Getenv("JWT_SECRET"),
		JWTExpireHours: envInt("JWT_EXPIRE_HOURS", 24),

		CORSOrigins: splitList(envOr("CORS_ORIGINS", "http://localhost:3000")),
		FrontendURL: envOr("FRONTEND_URL", "http://localhost:3000"),

		StorageDriver:  strings.ToLower(envOr("STORAGE_DRIVER", "local")),
		UploadPath:     envOr("UPLOAD_PATH", "./uploads"),
		UploadMaxBytes: int64(envInt("UPLOAD_MAX_BYTES", 25*1024*1024)),
		S3Endpoint:     os.Getenv("S3_ENDPOINT"),
		S3Region:       os.Getenv("AWS_REGION"),
		S3Bucket:       os.Getenv("S3_BUCKET_NAME"),
		S3AccessKey:    os.Getenv("AWS_ACCESS_KEY_ID"),
		S3SecretKey:    os.Getenv("AWS_SECRET_ACCESS_KEY"),
		S3PathStyle:    os.Getenv("S3_USE_PATH_STYLE") == "true",

		NATSURL: os.Getenv("NATS_URL"),

		SMTPHost:      os.Getenv("SMTP_HOST"),
		SMTPPort:      envInt("SMTP_PORT", 587),
		SMTPUser:      os.Getenv("SMTP_USER"),
		SMTPPass:      os.Getenv("SMTP_PASS"),
		SMTPFrom:      os.Getenv("SMTP_FROM"),
		SMTPSkipTLS:   os.Getenv("SMTP_SKIP_TLS_VERIFY") == "1",
		MonitorToken:  os.Getenv("MONITOR_TOKEN"),
		SweepInterval: envDuration("SWEEP_INTERVAL", 15*time.Minute),

		ReminderWindow: time.Duration(envInt("REMINDER_WINDOW_HOURS", 48)) * time.Hour,
		DueSoonWindow:  time.Duration(envInt("DELIVERABLE_DUE_SOON_HOURS", 0)) * time.Hour,
	}
}

// IsProduction reports whether ENVIRONMENT=production.
func (s Settings) IsProduction() bool {
	return s.Environment == "production"
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Warning: invalid %s=%q, using %s", key, raw, fallback)
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
