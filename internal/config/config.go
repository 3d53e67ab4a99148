package config // package config loads application configuration from environment variables

import (
    "errors"  // errors joins every missing/invalid variable into one report
    "fmt"     // fmt formats the error messages
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types

    "github.com/joho/godotenv" // godotenv loads a local .env file into the environment
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The values are read once at startup and passed
// by value afterwards; nothing mutates them while the process runs.
type Config struct {
    Env          string // application environment (e.g. "dev", "prod")
    Port         string // HTTP port to listen on
    DBDriver     string // "mysql" or "sqlite"
    DatabaseURL  string // driver specific DSN
    JWTSecret    string // secret used to sign JWTs
    JWTAlgorithm string // HMAC signing algorithm name (HS256, HS384, HS512)
    AccessTTLMin int    // access token time‑to‑live in minutes
    BcryptCost   int    // bcrypt cost for password hashing
    LogLevel     string // zerolog level name
    RabbitURL    string // AMQP url for domain events; empty disables publishing
}

// DefaultAccessTTLMin is used when ACCESS_TOKEN_EXPIRE_MINUTES is unset.
const DefaultAccessTTLMin = 1440

// Load reads configuration values from the environment and returns a
// Config.  A .env file in the working directory is loaded first when
// present; variables already set in the environment win.  Every missing
// required variable and every malformed number is reported in the
// returned error so the process can fail fast with a single message.
func Load() (Config, error) {
    _ = godotenv.Load() // a missing .env file is fine

    var errs []error
    must := func(key string) string {
        v, ok := os.LookupEnv(key)
        if !ok || v == "" {
            errs = append(errs, fmt.Errorf("missing required env var: %s", key))
        }
        return v
    }
    intOr := func(key string, def int) int {
        s := os.Getenv(key)
        if s == "" {
            return def
        }
        n, err := strconv.Atoi(s)
        if err != nil {
            errs = append(errs, fmt.Errorf("invalid int for %s: %q", key, s))
            return def
        }
        return n
    }

    cfg := Config{
        Env:          getenv("APP_ENV", "dev"),
        Port:         getenv("APP_PORT", "8000"),
        DBDriver:     getenv("DB_DRIVER", "mysql"),
        DatabaseURL:  must("DATABASE_URL"),
        JWTSecret:    must("JWT_SECRET_KEY"),
        JWTAlgorithm: must("ALGORITHM"),
        AccessTTLMin: intOr("ACCESS_TOKEN_EXPIRE_MINUTES", DefaultAccessTTLMin),
        BcryptCost:   intOr("BCRYPT_COST", 10),
        LogLevel:     getenv("LOG_LEVEL", "info"),
        RabbitURL:    rabbitURL(),
    }
    if cfg.AccessTTLMin <= 0 {
        errs = append(errs, fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be positive, got %d", cfg.AccessTTLMin))
    }
    switch cfg.DBDriver {
    case "mysql", "sqlite":
    default:
        errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver))
    }
    if len(errs) > 0 {
        return Config{}, errors.Join(errs...)
    }
    return cfg, nil
}

// rabbitURL returns the broker url from RABBITMQ_URL or AMQP_URL.  Unlike
// the queue consumer defaults there is no localhost fallback: publishing is
// opt‑in.
func rabbitURL() string {
    if v := os.Getenv("RABBITMQ_URL"); v != "" {
        return v
    }
    return os.Getenv("AMQP_URL")
}
