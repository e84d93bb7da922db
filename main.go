package main

import (
	"os"

	"github.com/spf13/cobra"

	"devmatch-service/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "devmatch",
	Short: "DevMatch API server",
	Long:  `DevMatch matches developers by swiping, then lets matched pairs chat over REST and websockets.`,
	// serve is the default action
	RunE: runServe,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
