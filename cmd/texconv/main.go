// Command texconv inspects, converts and watches texture files.
//
// Usage:
//
//	texconv info a.dds b.png
//	texconv convert -f BC7_UNORM_SRGB -m 0 -o out/ albedo.png
//	texconv convert --presets presets.toml --preset ui icons/*.tga
//	texconv watch --presets presets.toml --preset ui -o out/ assets/
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/gogpu/dxtex"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:          "texconv",
		Short:        "Inspect and convert DDS, TGA, HDR, EXR and image files",
		SilenceUsage: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			dxtex.SetLogger(newLogger(verbose))
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output")
	root.AddCommand(newInfoCmd(), newConvertCmd(), newWatchCmd())
	return root
}

// newLogger returns a slog logger backed by a charmbracelet handler on
// stderr.
func newLogger(verbose bool) *slog.Logger {
	h := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          "texconv",
	})
	h.SetLevel(log.InfoLevel)
	if verbose {
		h.SetLevel(log.DebugLevel)
	}
	return slog.New(h)
}
