package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-tivity"
	"github.com/goliatone/go-tivity/pkg/codec"
)

func newPutCmd(opts *options) *cobra.Command {
	var (
		version int
		merge   bool
	)

	c := &cobra.Command{
		Use:   "put <key> <json|->",
		Short: "Encode a JSON object and store it under key",
		Long: "Encode a JSON object with the configured payload format and store it.\n" +
			"The version field is stamped unless the object carries one. Pass - to read stdin.",
		Args: cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			key := args[0]
			input := args[1]
			if input == "-" {
				raw, err := io.ReadAll(c.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				input = string(raw)
			}

			var state map[string]any
			if err := json.Unmarshal([]byte(strings.TrimSpace(input)), &state); err != nil {
				return fmt.Errorf("parse state: %w", err)
			}
			if state == nil {
				return fmt.Errorf("state must be a JSON object")
			}

			serializer, err := opts.serializer()
			if err != nil {
				return err
			}
			backend, release, err := opts.openBackend()
			if err != nil {
				return err
			}
			defer release()

			if merge {
				raw, ok, err := backend.GetItem(c.Context(), key)
				if err != nil {
					return fmt.Errorf("get %q: %w", key, err)
				}
				if ok {
					current, err := serializer.Deserialize(raw)
					if err != nil {
						return fmt.Errorf("decode %q: %w", key, err)
					}
					for k, v := range state {
						current[k] = v
					}
					state = current
				}
			}
			delete(state, tivity.StatusKey)
			if _, ok := state[tivity.VersionKey]; !ok || c.Flags().Changed("version") {
				state[tivity.VersionKey] = version
			}

			keys := make([]string, 0, len(state))
			for k := range state {
				if k != tivity.VersionKey {
					keys = append(keys, k)
				}
			}
			sort.Strings(keys)
			payload, err := codec.SerializeOrdered(serializer, append(keys, tivity.VersionKey), state)
			if err != nil {
				return fmt.Errorf("encode %q: %w", key, err)
			}
			if err := backend.SetItem(c.Context(), key, payload); err != nil {
				return fmt.Errorf("set %q: %w", key, err)
			}
			opts.log.Info("payload stored", "key", key, "bytes", len(payload))
			return nil
		},
	}
	c.Flags().IntVar(&version, "version", 0, "version stamped on the payload")
	c.Flags().BoolVar(&merge, "merge", false, "shallow merge into the stored payload")
	return c
}
