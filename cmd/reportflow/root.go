package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Environment fallbacks for the persistent flags.
const (
	EnvLogLevel   = "REPORTFLOW_LOG_LEVEL"
	EnvRedisAddr  = "REPORTFLOW_REDIS_ADDR"
	EnvBackendURL = "REPORTFLOW_BACKEND_URL"
	EnvEncryption = "REPORTFLOW_ENCRYPTION_KEY"
)

var rootCmd = &cobra.Command{
	Use:   "reportflow",
	Short: "reportflow runs the content report dialog",
	Long: `reportflow walks a user through reporting content: pick a reason,
refine it, describe the problem, and get a confirmation once the report is
received. The flow can be driven from the terminal, over HTTP, or by MCP agents.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("log-level", envOr(EnvLogLevel, "info"), "Log level: debug, info, warn or error [$"+EnvLogLevel+"]")
	flags.String("catalog", "", "YAML file with the report reasons (defaults to the built-in table)")
	flags.String("catalog-dir", "", "Directory of category documents with the report reasons")
	flags.String("messages", "", "YAML file with message overrides")
	flags.String("redis-addr", os.Getenv(EnvRedisAddr), "Redis address for sessions and locks [$"+EnvRedisAddr+"]")
	flags.String("sessions-dir", "", "Directory for file-backed sessions")
	flags.String("backend-url", os.Getenv(EnvBackendURL), "URL receiving submitted reports; empty logs them instead [$"+EnvBackendURL+"]")
	flags.String("submit-exec", "", "YAML or JSON file describing a local command receiving submitted reports")
	flags.String("encryption-key", os.Getenv(EnvEncryption), "Base64 AES-256 key sealing stored sessions [$"+EnvEncryption+"]")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
