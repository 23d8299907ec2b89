package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	topologyPath string
	settingsPath string
	logPath      string
	verbose      bool
	useDemo      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dtnsim",
	Short: "Delay-Tolerant Network bundle relay simulator",
	Long: `dtnsim simulates store-and-forward bundle relay across a disrupted
network: it enumerates and ranks candidate paths, injects per-hop link
disruptions, buffers bundles at intermediate nodes, and recovers via
retry-then-reroute until the bundle is delivered or the run fails.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddGroup(&cobra.Group{
		ID:    "sim",
		Title: "Simulation Commands",
	})
	rootCmd.PersistentFlags().StringVarP(&topologyPath, "topology", "t", "topology.json", "topology document (JSON)")
	rootCmd.PersistentFlags().StringVarP(&settingsPath, "settings", "s", "", "settings file (YAML)")
	rootCmd.PersistentFlags().StringVarP(&logPath, "log-path", "l", "", "also write logs to this file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&useDemo, "demo", false, "use the built-in Mars-Earth demo topology")
}
