package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"
)

// defaultTimeout bounds a single network-facing command.
const defaultTimeout = 60 * time.Second

// contextWithTimeout returns a timeout context rooted in the command context.
func contextWithTimeout(cmd *cobra.Command, d time.Duration) (context.Context, context.CancelFunc) {
	base := cmd.Context()
	if base == nil {
		base = context.Background()
	}
	return context.WithTimeout(base, d)
}
