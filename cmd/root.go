package cmd

import (
	"github.com/platform-mesh/golang-commons/logger"
	"github.com/spf13/cobra"

	"github.com/solo-io/graphql-console/common/config"
)

var log *logger.Logger

// version is set at build time with -ldflags "-X github.com/solo-io/graphql-console/cmd.version=...".
var version = "0.0.0-dev"

var rootCmd = &cobra.Command{
	Use:          "console",
	Short:        "GraphQL console for the gateway control plane",
	SilenceUsage: true,
	Version:      version,
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newSchemaCmd())
	rootCmd.AddCommand(newResolverCmd())

	cobra.OnInitialize(func() {
		var err error
		log, err = setupLogger(config.NewViper().GetString("log-level"))
		if err != nil {
			panic("failed to initialize logger: " + err.Error())
		}
	})
}

// setupLogger initializes the logger with the given log level
func setupLogger(logLevel string) (*logger.Logger, error) {
	loggerCfg := logger.DefaultConfig()
	loggerCfg.Name = "graphqlConsole"
	loggerCfg.Level = logLevel
	return logger.New(loggerCfg)
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
