package tivity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/goliatone/go-tivity/pkg/codec"
	"github.com/goliatone/go-tivity/pkg/storage"
)

const (
	// StatusKey is the bookkeeping field flipped to true once hydration ends.
	StatusKey = "_status"
	// VersionKey is stamped on every persisted payload.
	VersionKey = "version"
)

// Built-in storage names accepted by PersistConfig.StorageName.
const (
	StorageLocal   = "local"
	StorageSession = "session"
)

// MigrateFunc upgrades a persisted payload whose version differs from the
// configured one. current is a copy of the in-memory defaults.
type MigrateFunc func(current, persisted map[string]any) (map[string]any, error)

// PersistConfig describes where and how a store is persisted.
type PersistConfig struct {
	// Key is the storage key holding the payload.
	Key string `validate:"required"`
	// Storage takes precedence over StorageName.
	Storage storage.Storage
	// StorageName selects a built-in backend when Storage is nil. Empty
	// selects local.
	StorageName string `validate:"omitempty,oneof=local session"`
	// LocalDir is the directory of the local backend.
	LocalDir   string
	Serializer codec.Serializer
	// Blacklist keys are never persisted. StatusKey is always excluded.
	Blacklist []string `validate:"dive,required"`
	Version   int      `validate:"gte=0"`
	Migrate   MigrateFunc
}

var configValidator = validator.New()

func (c PersistConfig) validate() error {
	err := configValidator.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &ConfigError{
			Field: "config." + strings.ToLower(fe.Field()),
			Err:   fmt.Errorf("failed on %q", fe.Tag()),
		}
	}
	return &ConfigError{Field: "config", Err: err}
}

func (c PersistConfig) withDefaults() PersistConfig {
	out := c
	if out.Serializer == nil {
		out.Serializer = codec.JSON{}
	}
	out.Blacklist = append([]string(nil), c.Blacklist...)
	for _, key := range out.Blacklist {
		if key == StatusKey {
			return out
		}
	}
	out.Blacklist = append(out.Blacklist, StatusKey)
	return out
}

func checkReservedFields(fields Fields) error {
	for _, field := range fields {
		if field.Key == StatusKey || field.Key == VersionKey {
			return &ConfigError{Field: field.Key, Err: ErrReservedKey}
		}
	}
	return nil
}
