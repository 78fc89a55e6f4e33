package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/warpgrid/warpgrid/internal/logger"
)

var (
	logLevel string = "info"
	logFile  string = "warpgrid.log"
)

var rootCmd = &cobra.Command{
	Use:   "warpgrid",
	Short: "Warpgrid - session clip launcher and time-stretch engine",
	Long: `Warpgrid launches audio and MIDI clips on a beat-quantized grid and
time-stretches audio with warp markers. The binary bundles analysis,
offline rendering, and a real-time session driver.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Load environment variables
		if err := godotenv.Load(); err != nil {
			fmt.Fprintln(os.Stderr, "Warning: .env file not found, using system environment variables")
		}

		if err := logger.Initialize(logLevel, logFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to initialize logger: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", logLevel, "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", logFile, "Log file path")

	rootCmd.AddCommand(markersCmd)
	rootCmd.AddCommand(stretchCmd)
	rootCmd.AddCommand(bounceCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(waveformCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
