package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version 构建时通过 -ldflags "-X sumry/cmd/sumry/cli.Version=..." 设置
var Version = "0.1.0"

// VersionCmd 打印版本
func VersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the current version and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "sumry %s\n", Version)
			return err
		},
	}

	return cmd
}
