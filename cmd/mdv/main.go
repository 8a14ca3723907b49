package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/pflag"
	"golang.org/x/term"
	"pkt.systems/mdf"
	"pkt.systems/mdv"
	"pkt.systems/version"
)

const (
	defaultThemeName = "default"
	exitHint         = "Press q to exit"
)

func init() {
	version.SetDefaultModule("pkt.systems/mdv")
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	var (
		themeName   string
		widthFlag   int
		osc8Flag    string
		imagesFlag  string
		boring      bool
		noWait      bool
		listThemes  bool
		debug       bool
		showVersion bool
	)

	flags := pflag.NewFlagSet("mdv", pflag.ContinueOnError)
	flags.StringVarP(&themeName, "theme", "t", defaultThemeName, "Theme name")
	flags.IntVarP(&widthFlag, "width", "w", 0, "Output width override (0 uses terminal width if available)")
	flags.StringVarP(&osc8Flag, "osc8", "8", "auto", "OSC8 hyperlinks: auto|on|off")
	flags.StringVarP(&imagesFlag, "images", "i", "auto", "Inline images: auto|on|off")
	flags.BoolVarP(&boring, "boring", "b", false, "Generate non-ANSI output")
	flags.BoolVarP(&noWait, "no-wait", "n", false, "Exit right after rendering")
	flags.BoolVar(&listThemes, "list-themes", false, "List available themes")
	flags.BoolVarP(&debug, "debug", "d", false, "Debug logging on stderr")
	flags.BoolVarP(&showVersion, "version", "v", false, "Print version and exit")
	flags.SetOutput(stderr)
	flags.Usage = func() {
		fmt.Fprintln(stderr, version.Module(), version.Current())
		fmt.Fprintf(stderr, "Usage: mdv [flags] <file|url>\n")
		fmt.Fprintln(stderr, "\nRender Markdown in the terminal with inline images.")
		fmt.Fprintln(stderr, "\nFlags:")
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	if showVersion {
		fmt.Fprintln(stdout, version.Module(), version.Current())
		return 0
	}
	if listThemes {
		printThemes(stdout)
		return 0
	}
	if flags.NArg() != 1 {
		flags.Usage()
		return 2
	}

	theme, ok := mdf.ThemeByName(themeName)
	if !ok {
		fmt.Fprintf(stderr, "unknown theme %q\n\n", themeName)
		printThemes(stderr)
		return 2
	}
	osc8, err := resolveMode(osc8Flag, mdf.DetectOSC8Support)
	if err != nil {
		fmt.Fprintf(stderr, "invalid --osc8 %q: %v\n", osc8Flag, err)
		return 2
	}
	images, err := resolveMode(imagesFlag, mdv.DetectInlineImageSupport)
	if err != nil {
		fmt.Fprintf(stderr, "invalid --images %q: %v\n", imagesFlag, err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := newLogger(stderr, debug)
	ua := userAgent()
	fallbackStyle := mdv.DefaultFallbackStyle
	if boring {
		theme = mdv.BoringTheme()
		fallbackStyle = mdf.Style{}
	}

	err = mdv.Render(ctx, mdv.RenderRequest{
		Source: flags.Arg(0),
		Writer: stdout,
		Width:  resolveWidth(widthFlag),
		Theme:  theme,
		Options: []mdv.RenderOption{
			mdv.WithOSC8(osc8),
			mdv.WithInlineImages(images),
			mdv.WithFallbackStyle(fallbackStyle),
			mdv.WithLogger(logger),
			mdv.WithLoader(&mdv.Loader{UserAgent: ua}),
			mdv.WithFetcher(mdv.NewFetcher(mdv.WithUserAgent(ua))),
		},
	})
	if err != nil {
		if ctx.Err() != nil {
			return 0
		}
		fmt.Fprintf(stderr, "mdv: %v\n", err)
		return 1
	}

	if noWait || !term.IsTerminal(int(os.Stdin.Fd())) {
		return 0
	}
	hint := exitHint
	if !boring {
		hint = mdv.DefaultFallbackStyle.Prefix + hint + "\x1b[0m"
	}
	fmt.Fprint(stdout, "\n"+strings.Repeat(" ", mdv.DefaultMargin)+hint)
	waitErr := mdv.NewExitWaiter(os.Stdin).Wait(ctx)
	fmt.Fprintln(stdout)
	if waitErr != nil {
		logger.Debug("exit wait", "error", waitErr)
	}
	return 0
}

func newLogger(w io.Writer, debug bool) *slog.Logger {
	if !debug {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func userAgent() string {
	v := strings.TrimSpace(version.Current())
	if v == "" {
		return mdv.DefaultUserAgent
	}
	return mdv.DefaultUserAgent + "/" + v
}

func printThemes(w io.Writer) {
	names := mdf.AvailableThemes()
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintln(w, name)
	}
}

func resolveWidth(width int) int {
	if width > 0 {
		return width
	}
	return mdv.TerminalWidth(int(os.Stdout.Fd()), mdv.DefaultWidth)
}

// resolveMode parses an auto|on|off flag; auto defers to detect.
func resolveMode(mode string, detect func() bool) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "auto":
		return detect(), nil
	case "on", "true", "1", "yes":
		return true, nil
	case "off", "false", "0", "no":
		return false, nil
	default:
		return false, fmt.Errorf("expected auto|on|off")
	}
}
