package cfg

import "time"

const (
	StoreSQLite    = "sqlite"
	StoreFirestore = "firestore"
)

type Cfg struct {
	// Document store configuration
	StoreBackend         string
	SQLitePath           string
	FirestoreProject     string
	FirestoreCredentials string

	// Session configuration
	SessionSecret string
	SessionTTL    time.Duration
	SecureCookies bool
	LoginBurst    int

	// Application configuration
	Port              string
	BaseUrl           string
	WorkerCount       int
	SchedulerInterval int
	SettingsTimeout   time.Duration
	UpstreamTimeout   time.Duration

	// Song link finder
	AIAPIKey string
	AIModel  string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
