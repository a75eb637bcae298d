package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/rogersnm/taskdesk/internal/repofile"
	"github.com/spf13/cobra"
)

var linkCmd = &cobra.Command{
	Use:   "link <api-url>",
	Short: "Use a tasks API for the current directory tree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u := strings.TrimSpace(args[0])
		if err := validateURL(u); err != nil {
			return err
		}
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		if err := repofile.Write(cwd, u); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Linked %s to %s\n", repofile.FileName, u)
		return nil
	},
}

var unlinkCmd = &cobra.Command{
	Use:   "unlink",
	Short: "Remove the directory-local API link",
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		if err := repofile.Remove(cwd); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", repofile.FileName)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(linkCmd)
	rootCmd.AddCommand(unlinkCmd)
}
