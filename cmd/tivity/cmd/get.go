package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// maxParallelReads bounds concurrent backend reads for one get.
const maxParallelReads = 8

func newGetCmd(opts *options) *cobra.Command {
	var skipMissing bool

	c := &cobra.Command{
		Use:   "get <key> [key...]",
		Short: "Print decoded payloads",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(c *cobra.Command, keys []string) error {
			serializer, err := opts.serializer()
			if err != nil {
				return err
			}
			backend, release, err := opts.openBackend()
			if err != nil {
				return err
			}
			defer release()

			states := make([]map[string]any, len(keys))
			found := make([]bool, len(keys))
			g, ctx := errgroup.WithContext(c.Context())
			g.SetLimit(maxParallelReads)
			for i, key := range keys {
				i, key := i, key
				g.Go(func() error {
					raw, ok, err := backend.GetItem(ctx, key)
					if err != nil {
						return fmt.Errorf("get %q: %w", key, err)
					}
					if !ok {
						return nil
					}
					state, err := serializer.Deserialize(raw)
					if err != nil {
						return fmt.Errorf("decode %q: %w", key, err)
					}
					states[i], found[i] = state, true
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			out := make(map[string]any, len(keys))
			for i, key := range keys {
				if !found[i] {
					if skipMissing {
						continue
					}
					return fmt.Errorf("key %q not found", key)
				}
				out[key] = states[i]
			}
			return writeOutput(c.OutOrStdout(), opts.output, out)
		},
	}
	c.Flags().BoolVar(&skipMissing, "skip-missing", false, "omit keys that are not stored instead of failing")
	return c
}

func writeOutput(w io.Writer, format string, v any) error {
	switch format {
	case "", "json":
		e := json.NewEncoder(w)
		e.SetIndent("", "  ")
		return e.Encode(v)
	case "yaml":
		e := yaml.NewEncoder(w)
		defer e.Close()
		return e.Encode(v)
	default:
		return fmt.Errorf("unknown output %q", format)
	}
}
