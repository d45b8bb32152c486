// Package cmd implements the CLI commands for port-resolver.
package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	apiclient "github.com/cploetz77/port-to-port-map-generator/internal/api/client"
)

const envPrefix = "PORT_RESOLVER"

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "port-resolver",
		Short: "Resolve cruise itineraries for paid map orders",
		Long: "port-resolver receives order paid webhooks, reads the cruise booking the\n" +
			"customer entered, and resolves the sailing's ports of call either from the\n" +
			"customer's own list or from an Apify itinerary scrape.",
		SilenceUsage: true,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().
		StringVar(&cfgFile, "config", "config.yaml", "service config file path")
	rootCmd.PersistentFlags().
		String("api-url", "http://localhost:3000", "API server URL")
	rootCmd.PersistentFlags().
		String("output", "table", "output format (table, json)")

	cobra.CheckErr(viper.BindPFlag("api-url", rootCmd.PersistentFlags().Lookup("api-url")))
	cobra.CheckErr(viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output")))

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(resolveCmd())
	rootCmd.AddCommand(eventsCmd())
	rootCmd.AddCommand(quotaCmd())
}

// Root returns the root cobra command for documentation generation.
func Root() *cobra.Command {
	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func initConfig() {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func newClient() *apiclient.Client {
	return apiclient.New(viper.GetString("api-url"))
}

func jsonOutput() bool {
	return viper.GetString("output") == "json"
}
