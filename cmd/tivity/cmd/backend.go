package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-tivity"
	"github.com/goliatone/go-tivity/pkg/storage"
	"github.com/goliatone/go-tivity/pkg/storage/badgerstore"
	"github.com/goliatone/go-tivity/pkg/storage/leveldbstore"
	"github.com/goliatone/go-tivity/pkg/storage/pebblestore"
	"github.com/goliatone/go-tivity/pkg/storage/redisstore"
)

type backendName string

const (
	backendBadger  backendName = "badger"
	backendLevelDB backendName = "leveldb"
	backendPebble  backendName = "pebble"
	backendRedis   backendName = "redis"
	backendMemory  backendName = "memory"
)

// openBackend returns the configured storage and a func releasing it.
func (o *options) openBackend() (storage.Storage, func(), error) {
	if o.storage != nil {
		return o.storage, func() {}, nil
	}

	name := backendName(strings.ToLower(strings.TrimSpace(o.backend)))
	var (
		s   storage.Storage
		err error
	)
	switch name {
	case backendBadger:
		s, err = badgerstore.Open(badgerstore.Config{Path: o.dir("badger"), SyncWrites: true, Logger: o.log})
	case backendLevelDB:
		s, err = leveldbstore.OpenFile(o.dir("leveldb"))
	case backendPebble:
		s, err = pebblestore.Open(o.dir("pebble"))
	case backendRedis:
		var opts []redisstore.Option
		if o.redisPrefix != "" {
			opts = append(opts, redisstore.WithPrefix(o.redisPrefix))
		}
		s = redisstore.Dial(o.redisAddr, opts...)
	case backendMemory:
		s = storage.NewMemory()
	default:
		return nil, nil, fmt.Errorf("unknown backend %q", o.backend)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open %s backend: %w", name, err)
	}

	o.log.Debug("backend opened", "backend", name, "path", o.path)
	return s, func() {
		if err := storage.Close(s); err != nil {
			o.log.Warn("failed to close backend", "backend", name, "error", err)
		}
	}, nil
}

// dir resolves the database directory, defaulting to a per-backend folder
// under the local store directory.
func (o *options) dir(name string) string {
	if o.path != "" {
		return o.path
	}
	return filepath.Join(tivity.DefaultLocalDir(), name)
}
