package cfg

import (
	"cmp"
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Document store configuration
	StoreBackend         string `long:"store" env:"STORE_BACKEND" default:"sqlite" choice:"sqlite" choice:"firestore" description:"Document store backend"`
	SQLitePath           string `long:"sqlite-path" env:"SQLITE_PATH" default:"./data/radio.db" description:"Path of the sqlite database file"`
	FirestoreProject     string `long:"firestore-project" env:"FIRESTORE_PROJECT" description:"Google Cloud project of the Firestore database"`
	FirestoreCredentials string `long:"firestore-credentials" env:"GOOGLE_APPLICATION_CREDENTIALS" description:"Service account credentials file (optional)"`

	// Session configuration
	SessionSecret string        `long:"session-secret" env:"SESSION_SECRET" description:"Secret used to sign session tokens, at least 32 characters (required)" required:"true"`
	SessionTTL    time.Duration `long:"session-ttl" env:"SESSION_TTL" default:"24h" description:"Lifetime of an admin session"`
	SecureCookies bool          `long:"secure-cookies" env:"SECURE_COOKIES" description:"Mark session cookies as Secure (enable behind HTTPS)"`
	LoginBurst    int           `long:"login-burst" env:"LOGIN_BURST" default:"5" description:"Sign-in attempts allowed per client before throttling"`

	// Application configuration
	Port              string        `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseUrl           string        `long:"base-url" env:"BASE_URL" description:"Public base URL of the site (e.g., https://radio.example.com)"`
	WorkerCount       int           `long:"worker-count" env:"WORKER_COUNT" default:"2" description:"Number of background workers"`
	SchedulerInterval int           `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"900" description:"Scheduler interval in seconds"`
	SettingsTimeout   time.Duration `long:"settings-timeout" env:"SETTINGS_TIMEOUT" default:"3s" description:"Timeout for reading the site settings document"`
	UpstreamTimeout   time.Duration `long:"upstream-timeout" env:"UPSTREAM_TIMEOUT" default:"10s" description:"Timeout for radio provider and feed requests"`

	// Song link finder
	AIAPIKey string `long:"ai-api-key" env:"GEMINI_API_KEY" description:"Gemini API key for the song link finder (optional)"`
	AIModel  string `long:"ai-model" env:"AI_MODEL" default:"gemini-2.5-flash" description:"Model used by the song link finder"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"radio-site/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/Lima)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	return LoadArgs(os.Args[1:])
}

// LoadArgs parses args and the environment. It returns nil without an
// error when help was requested.
func LoadArgs(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		StoreBackend:         raw.StoreBackend,
		SQLitePath:           raw.SQLitePath,
		FirestoreProject:     raw.FirestoreProject,
		FirestoreCredentials: raw.FirestoreCredentials,
		SessionSecret:        raw.SessionSecret,
		SessionTTL:           raw.SessionTTL,
		SecureCookies:        raw.SecureCookies,
		LoginBurst:           raw.LoginBurst,
		Port:                 raw.Port,
		BaseUrl:              raw.BaseUrl,
		WorkerCount:          raw.WorkerCount,
		SchedulerInterval:    raw.SchedulerInterval,
		SettingsTimeout:      raw.SettingsTimeout,
		UpstreamTimeout:      raw.UpstreamTimeout,
		AIAPIKey:             raw.AIAPIKey,
		AIModel:              raw.AIModel,
		UserAgent:            raw.UserAgent,
		Timezone:             raw.Timezone,
		Debug:                raw.Debug,
		Version:              GetVersion(),
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func validate(cfg *Cfg) error {
	if len(cfg.SessionSecret) < 32 {
		return fmt.Errorf("session secret must be at least 32 characters")
	}
	if cfg.StoreBackend == StoreFirestore && cfg.FirestoreProject == "" {
		return fmt.Errorf("firestore project is required when the firestore store is selected")
	}
	if cfg.LoginBurst < 1 {
		return fmt.Errorf("login burst must be at least 1")
	}
	return nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

// SiteURL is the public base URL, or the local address when none is set.
func (c *Cfg) SiteURL() string {
	if c.BaseUrl != "" {
		return c.BaseUrl
	}
	return fmt.Sprintf("http://localhost:%s", c.Port)
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			fmt.Printf("Timezone configured: %s\n", timezone)
		}
	}
	return nil
}
