package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"

	"github.com/turkoid/zipadeedoodah/internal/config"
	"github.com/turkoid/zipadeedoodah/internal/download"
	"github.com/turkoid/zipadeedoodah/internal/http"
	ioutils "github.com/turkoid/zipadeedoodah/internal/io"
	"github.com/turkoid/zipadeedoodah/internal/logging"
	"github.com/turkoid/zipadeedoodah/internal/metrics"
	"github.com/turkoid/zipadeedoodah/internal/progress"
	"github.com/turkoid/zipadeedoodah/internal/resolve"
)

var errBothSources = errors.New("--file and --links cannot be used together")
var errNoLinks = errors.New("No links found!")

var (
	errorColor   = color.New(color.FgRed)
	warningColor = color.New(color.FgYellow)
	successColor = color.New(color.FgGreen)
	infoColor    = color.New(color.FgCyan)
	dimColor     = color.New(color.Faint)
)

func main() {
	os.Exit(run())
}

// run returns the exit code, so deferred cleanup happens before exiting.
func run() int {
	var (
		linksFlag, fileFlag, dirFlag string

		configFlag   = flag.String("config", config.DefaultPath(), "Path to config file")
		envFlag      = flag.String("env", ".env", "Path to .env file")
		engineFlag   = flag.String("engine", "", "Script engine: chrome or otto (overrides config)")
		downloadFlag = flag.Bool("download", false, "Download the resolved files")
		playlistFlag = flag.Bool("playlist", false, "Create playlist file of downloaded files")
		verboseFlag  = flag.Bool("verbose", false, "Show verbose output")
		metricsFlag  = flag.String("metrics-addr", "", "Serve Prometheus metrics on this address")
		logFileFlag  = flag.String("log-file", "", "Write JSON logs to this rotating file")
		logLevelFlag = flag.String("log-level", "", "Log level: debug, info, warn, error")
	)
	flag.StringVar(&linksFlag, "l", "", "Zippyshare links (comma or newline separated)")
	flag.StringVar(&linksFlag, "links", "", "Zippyshare links (comma or newline separated)")
	flag.StringVar(&fileFlag, "f", "", "File with one Zippyshare link per line")
	flag.StringVar(&fileFlag, "file", "", "File with one Zippyshare link per line")
	flag.StringVar(&dirFlag, "d", "", "Target directory (overrides config)")
	flag.StringVar(&dirFlag, "directory", "", "Target directory (overrides config)")

	flag.Usage = func() {
		out := flag.CommandLine.Output()
		fmt.Fprintln(out, "zipadeedoodah - Resolve Zippyshare download links")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Usage:")
		fmt.Fprintln(out, "  zipadeedoodah [options] -l <URL>[,<URL>...]")
		fmt.Fprintln(out, "  zipadeedoodah [options] -f <file>")
		fmt.Fprintln(out, "  zipadeedoodah [options] <URL>...")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "For interactive mode, use: zipadeedoodah-tui")
		fmt.Fprintln(out)
		flag.PrintDefaults()
	}

	flag.Parse()

	links, err := collectLinks(fileFlag, linksFlag, flag.Args())
	if err != nil {
		errorColor.Fprintln(os.Stderr, err)
		return 1
	}

	// Load config, then env, then flags
	settings, err := config.Load(*configFlag)
	if err != nil {
		errorColor.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return 1
	}
	if err := settings.ApplyEnv(*envFlag); err != nil {
		errorColor.Fprintf(os.Stderr, "Error loading environment: %v\n", err)
		return 1
	}

	if dirFlag != "" {
		settings.DownloadsPath = dirFlag
	}
	if *engineFlag != "" {
		settings.Engine = *engineFlag
	}
	if *downloadFlag {
		settings.Download = true
	}
	if *playlistFlag {
		settings.CreatePlaylist = true
	}
	if *metricsFlag != "" {
		settings.MetricsAddr = *metricsFlag
	}
	if *logFileFlag != "" {
		settings.LogFile = *logFileFlag
	}
	if *logLevelFlag != "" {
		settings.LogLevel = *logLevelFlag
	}
	if err := settings.Validate(); err != nil {
		errorColor.Fprintf(os.Stderr, "Invalid settings: %v\n", err)
		return 1
	}

	if err := ensureDirectory(settings.DownloadsPath, os.Stdin, os.Stdout); err != nil {
		errorColor.Fprintln(os.Stderr, err)
		return 1
	}

	closer, err := logging.Setup(logging.Options{
		Service: "zipadeedoodah",
		RunID:   uuid.NewString(),
		Level:   settings.LogLevel,
		File:    settings.LogFile,
	})
	if err != nil {
		errorColor.Fprintf(os.Stderr, "Error setting up logging: %v\n", err)
		return 1
	}
	defer closer.Close()

	if settings.MetricsAddr != "" {
		go metrics.Expose(settings.MetricsAddr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := http.NewClient(settings.ToHTTPOptions())

	// Outcomes are printed in input order once the batch is done, so
	// per-link events are only shown in verbose mode.
	coord, err := resolve.FromSettings(settings, client, func(event progress.Event) {
		if *verboseFlag {
			printEvent(event)
		}
	})
	if err != nil {
		errorColor.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	slog.Info("Starting batch", "links", len(links), "engine", settings.Engine)
	start := time.Now()
	outcomes, err := coord.Run(ctx, links)
	if err != nil {
		errorColor.Fprintf(os.Stderr, "Error starting %s engine: %v\n", settings.Engine, err)
		return 1
	}
	elapsed := time.Since(start)

	scraped := printOutcomes(os.Stdout, outcomes)
	fmt.Printf("Scraped %d links in %.2f seconds.\n", scraped, elapsed.Seconds())

	if ctx.Err() != nil {
		fmt.Println("\nCancelled.")
		return 130
	}

	if !settings.Download || scraped == 0 {
		return 0
	}

	fmt.Println()
	infoColor.Println("Starting downloads...")

	manager := download.NewManager(settings, settings.DownloadsPath, client, func(event progress.Event) {
		if event.Level == progress.LevelVerbose && !*verboseFlag {
			return
		}
		printEvent(event)
	})

	if _, err := manager.Download(ctx, outcomes); err != nil {
		if ctx.Err() != nil {
			fmt.Println("\nDownload cancelled.")
			return 130
		}
		errorColor.Fprintf(os.Stderr, "Error during download: %v\n", err)
		return 1
	}

	received, filesReceived, filesTotal := manager.GetProgress()
	successColor.Printf("Complete! Downloaded %d/%d files (%.2f MB)\n", filesReceived, filesTotal, float64(received)/1024/1024)
	return 0
}

// collectLinks returns the links given by file, or by links plus args.
func collectLinks(file, links string, args []string) ([]string, error) {
	if file != "" && (links != "" || len(args) > 0) {
		return nil, errBothSources
	}

	var out []string
	if file != "" {
		var err error
		if out, err = ioutils.ReadLinkFile(file); err != nil {
			return nil, err
		}
	} else {
		out = ioutils.SplitLinks(links)
		for _, arg := range args {
			out = append(out, ioutils.SplitLinks(arg)...)
		}
	}

	if len(out) == 0 {
		return nil, errNoLinks
	}
	return out, nil
}

// ensureDirectory asks before creating a missing dir.
func ensureDirectory(dir string, in io.Reader, out io.Writer) error {
	if ioutils.DirExists(dir) {
		return nil
	}

	fmt.Fprintf(out, "%s does not exist. Do you want to create it? ", dir)
	answer, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return ioutils.EnsureDir(dir)
	default:
		return fmt.Errorf("%s does not exist.", dir)
	}
}

// printOutcomes writes one line per outcome and returns how many resolved.
func printOutcomes(w io.Writer, outcomes []resolve.Outcome) int {
	var ok int
	for _, o := range outcomes {
		if !o.OK() {
			errorColor.Fprintf(w, "✗ %v\n", o.Err)
			continue
		}
		ok++
		u, _ := o.Link.DownloadURL()
		successColor.Fprint(w, "✓ ")
		fmt.Fprintln(w, u)
	}
	return ok
}

func printEvent(event progress.Event) {
	var (
		c      *color.Color
		prefix string
	)
	switch event.Level {
	case progress.LevelError:
		c, prefix = errorColor, "✗ "
	case progress.LevelWarning:
		c, prefix = warningColor, "! "
	case progress.LevelSuccess:
		c, prefix = successColor, "✓ "
	case progress.LevelInfo:
		c, prefix = infoColor, "› "
	default:
		c, prefix = dimColor, "  "
	}
	c.Println(prefix + event.Message)
}
