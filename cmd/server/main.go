package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	envFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "interpreter-gateway",
	Short: "Real-time medical interpreter gateway",
	Long: `interpreter-gateway serves live speech capture sessions over WebSocket.

Each session transcribes what the speaker says, translates every finalized
phrase into the listener's language and can read the translation aloud.

Endpoints:
  /ws/session  - interpreter session (WebSocket)
  /languages   - supported languages
  /health      - liveness
  /ready       - readiness of translator, synthesizer and event brokers
  /metrics     - Prometheus metrics`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Load environment variables from this file instead of ./.env")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override LOG_LEVEL (debug, info, warn, error)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Use fmt for fatal errors before logger is initialized
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
