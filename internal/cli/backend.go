package cli

import (
	"fmt"
	"io"

	"github.com/aretw0/leadchat/pkg/adapters/file"
	"github.com/aretw0/leadchat/pkg/adapters/memory"
	"github.com/aretw0/leadchat/pkg/adapters/redis"
	"github.com/aretw0/leadchat/pkg/adapters/sqlite"
	"github.com/aretw0/leadchat/pkg/ports"
)

// Default locations of the file and sqlite ledgers.
const (
	DefaultLedgerFile = ".leadchat/ledger.json"
	DefaultLedgerDB   = ".leadchat/ledger.db"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// OpenBackend creates the ledger storage selected by opts. The returned closer
// releases connections and is never nil.
func OpenBackend(opts StorageOptions) (ports.Backend, io.Closer, error) {
	switch opts.Backend {
	case "", BackendMemory:
		return memory.NewStore(), nopCloser{}, nil
	case BackendFile:
		path := opts.Path
		if path == "" {
			path = DefaultLedgerFile
		}
		return file.New(path), nopCloser{}, nil
	case BackendSQLite:
		path := opts.Path
		if path == "" {
			path = DefaultLedgerDB
		}
		store, err := sqlite.Open(path)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite ledger: %w", err)
		}
		return store, store, nil
	case BackendRedis:
		if opts.RedisAddr == "" {
			return nil, nil, fmt.Errorf("--redis-addr is required for the redis backend")
		}
		store := redis.New(opts.RedisAddr, opts.RedisPassword, opts.RedisDB)
		return store, store, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend %q (want memory, file, sqlite or redis)", opts.Backend)
	}
}
