package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	loomerrors "github.com/loomui/loom/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╦  ┌─┐┌─┐┌┬┐
  ║  │ ││ ││││
  ╩═╝└─┘└─┘┴ ┴
`

func main() {
	rootCmd := &cobra.Command{
		Use:   "loom",
		Short: "Server-driven UI components for Go",
		Long: `Loom renders component trees on the server, hydrates them in the
browser, and keeps live sessions in sync over a websocket.

  • Virtual-tree reconciliation with keyed minimal moves
  • Suspense boundaries with off-tree retention
  • SSR with comment-marker hydration
  • Static export with incremental page cache`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		exportCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		var lerr *loomerrors.Error
		if errors.As(err, &lerr) {
			fmt.Fprint(os.Stderr, lerr.Format())
		} else {
			errorMsg("%s", err)
		}
		os.Exit(1)
	}
}

func printBanner() {
	fmt.Print(banner)
}

var (
	okMark   = color.New(color.FgGreen).Sprint("✓")
	warnMark = color.New(color.FgYellow).Sprint("⚠")
	errMark  = color.New(color.FgRed, color.Bold).Sprint("Error:")
)

func success(format string, args ...any) {
	fmt.Printf("%s %s\n", okMark, fmt.Sprintf(format, args...))
}

func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

func warn(format string, args ...any) {
	fmt.Printf("%s %s\n", warnMark, fmt.Sprintf(format, args...))
}

func errorMsg(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s %s\n", errMark, fmt.Sprintf(format, args...))
}
