package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newClearCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "clear <key> [key...]",
		Short: "Remove stored payloads",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(c *cobra.Command, keys []string) error {
			backend, release, err := opts.openBackend()
			if err != nil {
				return err
			}
			defer release()

			for _, key := range keys {
				if err := backend.RemoveItem(c.Context(), key); err != nil {
					return fmt.Errorf("remove %q: %w", key, err)
				}
				opts.log.Info("payload removed", "key", key)
			}
			return nil
		},
	}
}
