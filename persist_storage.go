package tivity

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/goliatone/go-tivity/pkg/storage"
	"github.com/goliatone/go-tivity/pkg/storage/badgerstore"
)

// Built-in backends are opened once per process and shared, since badger
// holds an exclusive lock on its directory.
var builtins = struct {
	sync.Mutex
	local   map[string]storage.Storage
	session storage.Storage
}{local: make(map[string]storage.Storage)}

// DefaultLocalDir is where the local backend lives when LocalDir is empty.
func DefaultLocalDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "tivity")
}

func resolveStorage(cfg PersistConfig, logger Logger) storage.Storage {
	if cfg.Storage != nil {
		return cfg.Storage
	}
	name := cfg.StorageName
	if name == "" {
		name = StorageLocal
	}
	s, err := openBuiltin(name, cfg.LocalDir)
	if err != nil {
		logger.Warn(ErrorPrefix+" failed to build "+name+"Storage falling back to noopStorage", "err", err)
		return storage.Noop{}
	}
	return s
}

func openBuiltin(name, dir string) (storage.Storage, error) {
	builtins.Lock()
	defer builtins.Unlock()

	if name == StorageSession {
		if builtins.session != nil {
			return builtins.session, nil
		}
		s, err := badgerstore.OpenInMemory()
		if err != nil {
			return nil, err
		}
		builtins.session = s
		return s, nil
	}

	if dir == "" {
		dir = DefaultLocalDir()
	}
	dir = filepath.Clean(dir)
	if s, ok := builtins.local[dir]; ok {
		return s, nil
	}
	s, err := badgerstore.Open(badgerstore.Config{Path: dir, SyncWrites: true})
	if err != nil {
		return nil, err
	}
	builtins.local[dir] = s
	return s, nil
}
