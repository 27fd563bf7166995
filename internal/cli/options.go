package cli

// Backend names accepted by --backend.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// RunOptions contains all the configuration for the run command.
type RunOptions struct {
	ConfigPath string
	Debug      bool
	JSON       bool
	Quiet      bool

	Storage StorageOptions

	// Page load the chat is attached to.
	URL       string
	Title     string
	Referrer  string
	UserAgent string
	Mobile    bool

	// StartClosed keeps the chat closed so notifications play first.
	StartClosed bool

	// MetricsAddr, when set, serves /metrics and /healthz on that address.
	MetricsAddr string
}

// StorageOptions selects the ledger backend.
type StorageOptions struct {
	Backend       string
	Path          string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	EncryptionKey string
}
