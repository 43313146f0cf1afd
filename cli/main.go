package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/awslabs/open-hostfactory-plugin-sub000/bootstrap"
	"github.com/awslabs/open-hostfactory-plugin-sub000/cli/flags"
	"github.com/awslabs/open-hostfactory-plugin-sub000/cli/log"
	"github.com/awslabs/open-hostfactory-plugin-sub000/handler/machine"
	"github.com/awslabs/open-hostfactory-plugin-sub000/handler/request"
	"github.com/awslabs/open-hostfactory-plugin-sub000/handler/template"
)

// Versioning information set at build time
var version, commit = "dev", "n/a"

// runtime is wired once per invocation, before any subcommand runs.
var runtime *bootstrap.Runtime

var rootCmd = &cobra.Command{
	Use:   "hostfactory",
	Short: "Host Factory provisioning plugin",

	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := log.Init(); err != nil {
			return err
		}

		var err error
		runtime, err = bootstrap.New(bootstrap.Options{
			Logger:        log.Base,
			TemplatesPath: viper.GetString(flags.TemplatesFile),
			Scheduler:     viper.GetString(flags.Scheduler),
			Modules: []bootstrap.Module{
				request.Module(),
				machine.Module(),
				template.Module(),
			},
		})
		if err != nil {
			return fmt.Errorf("failed to boot runtime: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(machinesCmd)
	rootCmd.AddCommand(requestCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(templatesCmd)
	rootCmd.AddCommand(versionCmd)

	flags.Setup(rootCmd.PersistentFlags())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetOut(os.Stdout)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		lo.Must(fmt.Fprintln(os.Stderr, color.HiRedString(fmt.Sprint(err))))
		os.Exit(1)
	}
}
