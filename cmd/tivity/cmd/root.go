package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	logging "github.com/inconshreveable/log15"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-tivity/pkg/codec"
	"github.com/goliatone/go-tivity/pkg/storage"
)

const (
	defaultBackend  = backendBadger
	defaultLogLevel = logging.LvlWarn
)

// fileConfig mirrors the flags that may be set from a --config file.
type fileConfig struct {
	Backend  string `yaml:"backend"`
	Path     string `yaml:"path"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	LogLevel string `yaml:"log_level"`
	Redis    struct {
		Addr   string `yaml:"addr"`
		Prefix string `yaml:"prefix"`
	} `yaml:"redis"`
}

type options struct {
	backend     string
	path        string
	redisAddr   string
	redisPrefix string
	format      string
	output      string
	logLevel    string
	configFile  string

	log logging.Logger

	// storage replaces the configured backend when set.
	storage storage.Storage
}

func (o *options) serializer() (codec.Serializer, error) {
	return codec.ByName(o.format)
}

// NewRootCmd builds the command tree. A non-nil backend is used instead of
// the one selected by flags.
func NewRootCmd(backend storage.Storage) *cobra.Command {
	opts := &options{storage: backend}

	root := &cobra.Command{
		Use:           "tivity",
		Short:         "Inspect and edit persisted store payloads",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(c *cobra.Command, args []string) error {
			if err := opts.loadConfig(c); err != nil {
				return err
			}
			return opts.setupLogging(c.ErrOrStderr())
		},
		Run: func(c *cobra.Command, args []string) {
			if len(args) < 1 {
				c.Usage()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.backend, "backend", string(defaultBackend), "storage backend, {badger, leveldb, pebble, redis, memory}")
	flags.StringVar(&opts.path, "path", "", "database directory for file backends")
	flags.StringVar(&opts.redisAddr, "redis-addr", "localhost:6379", "redis address")
	flags.StringVar(&opts.redisPrefix, "redis-prefix", "", "prefix prepended to redis keys")
	flags.StringVar(&opts.format, "format", string(codec.FormatJSON), "payload format, {json, yaml, msgpack}")
	flags.StringVar(&opts.output, "output", "json", "output format, {json, yaml}")
	flags.StringVar(&opts.logLevel, "log-level", defaultLogLevel.String(), "log level, {crit, error, warn, info, debug}")
	flags.StringVar(&opts.configFile, "config", "", "yaml file with flag defaults")

	root.AddCommand(newGetCmd(opts))
	root.AddCommand(newPutCmd(opts))
	root.AddCommand(newClearCmd(opts))
	return root
}

// loadConfig applies values from the config file to flags the user did not
// set explicitly.
func (o *options) loadConfig(c *cobra.Command) error {
	if o.configFile == "" {
		return nil
	}
	raw, err := os.ReadFile(o.configFile)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", o.configFile, err)
	}

	flags := c.Flags()
	apply := func(name, value string, target *string) {
		if value != "" && !flags.Changed(name) {
			*target = value
		}
	}
	apply("backend", cfg.Backend, &o.backend)
	apply("path", cfg.Path, &o.path)
	apply("format", cfg.Format, &o.format)
	apply("output", cfg.Output, &o.output)
	apply("log-level", cfg.LogLevel, &o.logLevel)
	apply("redis-addr", cfg.Redis.Addr, &o.redisAddr)
	apply("redis-prefix", cfg.Redis.Prefix, &o.redisPrefix)
	return nil
}

func (o *options) setupLogging(w io.Writer) error {
	level, err := logging.LvlFromString(strings.ToLower(o.logLevel))
	if err != nil {
		return fmt.Errorf("invalid log-level %q: %w", o.logLevel, err)
	}
	o.log = logging.New("module", "tivity-cli")
	o.log.SetHandler(logging.LvlFilterHandler(level, logging.StreamHandler(w, logging.LogfmtFormat())))
	return nil
}

// Execute runs the command tree against os.Args.
func Execute() {
	root := NewRootCmd(nil)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}
