package commands

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/schemadoc/pkg/adapter"
	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display schemadoc version, build information and the compiled-in metadata adapters.`,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "schemadoc v%s\n", version)
			_, _ = fmt.Fprintf(out, "commit %s, built %s\n", commit, date)
			_, _ = fmt.Fprintf(out, "adapters: %s\n", strings.Join(adapter.ListAdapters(), ", "))
		},
	}
}
