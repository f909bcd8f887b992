package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

const defaultAPIURL = "http://localhost:8080/api/v1"

// NewRootCmd creates the root command for the threadline CLI
func NewRootCmd() *cobra.Command {
	opts := &clientOptions{}

	cmd := &cobra.Command{
		Use:           "threadline",
		Short:         "Command-line client for the threadline comment API",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().StringVar(&opts.apiURL, "api", envOr("THREADLINE_API_URL", defaultAPIURL), "API base URL")
	cmd.PersistentFlags().StringVar(&opts.tokenFile, "token-file", defaultTokenFile(), "where the access token is stored")

	cmd.AddCommand(newAuthCmd(opts))
	cmd.AddCommand(newCommentsCmd(opts))

	return cmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".threadline-token"
	}
	return filepath.Join(home, ".threadline", "token")
}
