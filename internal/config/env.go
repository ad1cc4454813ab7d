package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Env struct {
	AppAddr string
	GinMode string
	Debug   bool

	StoreDriver string
	MySQLDSN    string
	PostgresDSN string

	SessionStore  string
	SessionTTL    time.Duration
	SessionSecret string
	CookieSecure  bool

	AdminUsername string
	AdminPassword string
	AdminEmail    string

	StrictStatus bool

	NotifyTransport  string
	NotifyMaxRetries int
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	KafkaBrokers     []string

	SMTPServer    string
	SMTPPort      int
	EmailUser     string
	EmailPassword string
	CompanyEmail  string

	CORSOrigins []string
}

func LoadEnv() Env {
	env := Env{
		AppAddr: getenv("APP_ADDR", ":8080"),
		GinMode: getenv("GIN_MODE", ""),
		Debug:   getbool("DEBUG", false),

		StoreDriver: strings.ToLower(getenv("STORE_DRIVER", "mysql")),
		MySQLDSN:    getenv("DB_DSN", ""),
		PostgresDSN: getenv("POSTGRES_DSN", "host=localhost user=postgres password=postgres dbname=rides port=5432 sslmode=disable"),

		SessionStore:  strings.ToLower(getenv("SESSION_STORE", "memory")),
		SessionTTL:    getduration("SESSION_TTL", 24*time.Hour),
		SessionSecret: getenv("SESSION_SECRET", "change-me-session-secret"),
		CookieSecure:  getbool("COOKIE_SECURE", false),

		AdminUsername: getenv("ADMIN_USERNAME", "admin"),
		AdminPassword: getenv("ADMIN_PASSWORD", "admin123"),
		AdminEmail:    getenv("ADMIN_EMAIL", "admin@zoomgorides.com"),

		StrictStatus: getbool("BOOKING_STRICT_STATUS", true),

		NotifyTransport:  strings.ToLower(getenv("NOTIFY_TRANSPORT", "gochannel")),
		NotifyMaxRetries: getint("NOTIFY_MAX_RETRIES", 3),
		RedisAddr:        getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    getenv("REDIS_PASSWORD", ""),
		RedisDB:          getint("REDIS_DB", 0),
		KafkaBrokers:     getlist("KAFKA_BROKERS", []string{"localhost:9092"}),

		SMTPServer:    getenv("SMTP_SERVER", ""),
		SMTPPort:      getint("SMTP_PORT", 587),
		EmailUser:     getenv("EMAIL_USER", ""),
		EmailPassword: getenv("EMAIL_PASSWORD", ""),
		CompanyEmail:  getenv("COMPANY_EMAIL", "bookings@zoomgorides.com"),

		CORSOrigins: getlist("CORS_ALLOWED_ORIGINS", []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
			"http://localhost:5173",
			"http://127.0.0.1:5173",
		}),
	}

	if env.MySQLDSN == "" {
		env.MySQLDSN = fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&charset=utf8mb4&timeout=5s&readTimeout=30s&writeTimeout=30s",
			getenv("DB_USER", "root"),
			getenv("DB_PASSWORD", ""),
			getenv("DB_HOST", "127.0.0.1:3306"),
			getenv("DB_NAME", "rides"),
		)
	}
	return env
}

// SMTPEnabled reports whether real email delivery is configured.
func (e Env) SMTPEnabled() bool {
	return e.SMTPServer != "" && e.EmailUser != ""
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getbool(key string, def bool) bool {
	v, err := strconv.ParseBool(getenv(key, ""))
	if err != nil {
		return def
	}
	return v
}

func getint(key string, def int) int {
	v, err := strconv.Atoi(getenv(key, ""))
	if err != nil {
		return def
	}
	return v
}

func getduration(key string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(getenv(key, ""))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func getlist(key string, def []string) []string {
	raw := getenv(key, "")
	if raw == "" {
		return def
	}
	out := []string{}
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
