package cmd

import (
	"fmt"

	"github.com/rogersnm/taskdesk/internal/notify"
	"github.com/rogersnm/taskdesk/internal/tui"
	"github.com/spf13/cobra"
)

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Open the interactive task board",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !interactive() {
			return fmt.Errorf("the board needs a terminal; use: taskdesk list")
		}
		logFile, err := openLogFile()
		if err != nil {
			return err
		}
		defer logFile.Close()

		latest := &notify.Latest{}
		vm, err := newListViewModel(latest)
		if err != nil {
			return err
		}
		return tui.Run(cmd.Context(), vm, latest)
	},
}

func init() {
	rootCmd.AddCommand(uiCmd)
}
