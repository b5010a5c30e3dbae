package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/forest-guardian/atcor/internal/logging"
	"github.com/forest-guardian/atcor/internal/notification"
	"github.com/forest-guardian/atcor/internal/properties"
)

func printBanner() {
	banner := figure.NewFigure("atcor", "isometric1", true)
	color.Cyan(banner.String())
	fmt.Println()
}

func newRootCmd() *cobra.Command {
	var noBanner bool
	root := &cobra.Command{
		Use:           "atcor",
		Short:         "DOS1 atmospheric correction for Landsat and Sentinel-2 tiles",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(properties.LogLevel(), properties.LogFormat())
			if !noBanner {
				printBanner()
			}
		},
	}
	root.PersistentFlags().BoolVar(&noBanner, "no-banner", false, "do not print the banner")
	root.AddCommand(newCorrectCmd(), newBatchCmd(), newInspectCmd())
	return root
}

func loadEnv() {
	for _, path := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(path); err == nil {
			return
		}
	}
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			color.Red("PANIC: %v", r)
			msg := fmt.Sprintf("atcor panic:\n\n%v\n\nStack trace:\n%s", r, debug.Stack())
			if err := notification.SendDiscordErrorNotification(msg); err != nil {
				color.Red("Failed to send notification: %s", err)
			}
			os.Exit(2)
		}
	}()

	loadEnv()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		color.Red("Error: %s", err)
		os.Exit(1)
	}
}
