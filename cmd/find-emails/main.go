package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/briandowns/spinner"
	"github.com/sirupsen/logrus"

	"github.com/alvmarrod/find-emails/internal/config"
	"github.com/alvmarrod/find-emails/internal/crawler"
	"github.com/alvmarrod/find-emails/internal/engine"
	"github.com/alvmarrod/find-emails/internal/index"
	"github.com/alvmarrod/find-emails/internal/metrics"
	"github.com/alvmarrod/find-emails/internal/output"
	"github.com/alvmarrod/find-emails/internal/storage"
	"github.com/alvmarrod/find-emails/internal/version"
)

type args struct {
	URLs            []string `arg:"positional" help:"URL(s) to crawl"`
	Output          string   `arg:"-o,--output" placeholder:"FILE" help:"write results to FILE"`
	JSON            bool     `arg:"-j,--json" help:"JSON output"`
	Quiet           bool     `arg:"-q,--quiet" help:"minimal output"`
	MaxDepth        int      `arg:"--max-depth" default:"2" help:"max crawl depth"`
	MaxPages        int      `arg:"--max-pages" default:"25" help:"max pages to crawl"`
	FromFile        string   `arg:"--from-file" placeholder:"FILE" help:"extract emails from a local file (skip crawl)"`
	Verbose         bool     `arg:"-v,--verbose" help:"verbose crawl output"`
	Patterns        string   `arg:"--patterns" placeholder:"FILE" help:"URL pattern file [default: url_patterns.json beside the binary]; patterns match path and query unless they start with a host (example.com/...) or scheme"`
	Render          bool     `arg:"--render" help:"render pages in headless Chrome"`
	Timeout         int      `arg:"--timeout" default:"15000" placeholder:"MS" help:"per-page timeout in milliseconds"`
	UserAgent       string   `arg:"--user-agent" help:"User-Agent header for requests"`
	RespectRobots   bool     `arg:"--respect-robots" help:"honor robots.txt"`
	IncludeExternal bool     `arg:"--include-external" help:"follow links to other sites"`
	FullURLs        bool     `arg:"--full-urls" help:"record full URLs instead of paths"`
	DB              string   `arg:"--db" placeholder:"FILE" help:"record the run in a SQLite database"`
	Metrics         string   `arg:"--metrics" placeholder:"FILE" help:"write run metrics as JSON"`
	History         bool     `arg:"--history" help:"print every email stored in --db instead of crawling"`
}

func (args) Version() string {
	return "find-emails " + version.Version
}

func (args) Description() string {
	return "Crawl websites and extract contact emails with the pages they were found on."
}

// config builds the runtime configuration from flags. Flag values
// override the defaults verbatim so out-of-range values fail validation.
func (a args) config() *config.Config {
	cfg := config.Default()
	cfg.MaxDepth = a.MaxDepth
	cfg.MaxPages = a.MaxPages
	cfg.RequestTimeoutMs = a.Timeout
	if a.UserAgent != "" {
		cfg.UserAgent = a.UserAgent
	}
	cfg.RespectRobots = a.RespectRobots
	cfg.IncludeExternal = a.IncludeExternal
	cfg.Render = a.Render
	cfg.FullURLs = a.FullURLs
	cfg.PatternsPath = a.Patterns
	cfg.DBPath = a.DB
	cfg.MetricsPath = a.Metrics
	return cfg
}

func (a args) showSpinner() bool {
	return !a.Quiet && !a.Verbose
}

// check rejects flag combinations that cannot run
func (a args) check() error {
	if len(a.URLs) == 0 && a.FromFile == "" && !a.History {
		return errors.New("Either provide URLs or use --from-file")
	}
	if a.History && a.DB == "" {
		return errors.New("--history requires --db")
	}
	return a.config().Validate()
}

func main() {
	var a args
	p := arg.MustParse(&a)
	if err := a.check(); err != nil {
		p.Fail(err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, a, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one invocation and returns the process exit code. Results
// go to stdout; logs and diagnostics go to stderr.
func run(ctx context.Context, a args, stdout, stderr io.Writer) int {
	setupLogging(a, stderr)

	cfg := a.config()
	tracker := metrics.NewTracker()

	var (
		idx    *index.EmailIndex
		mode   string
		reason string
		seeds  []string
	)

	switch {
	case a.History:
		if len(a.URLs) > 0 || a.FromFile != "" {
			logrus.Warnf("Ignoring crawl input: --history only reads %s", cfg.DBPath)
		}
		stored, err := history(cfg.DBPath)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		return emit(a, stored, stdout, stderr)

	case a.FromFile != "":
		if len(a.URLs) > 0 {
			logrus.Warnf("Ignoring %d URL(s): --from-file skips the crawl", len(a.URLs))
		}
		if _, err := os.Stat(a.FromFile); errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(stderr, "Error: File not found: %s\n", a.FromFile)
			return 1
		}

		page, err := engine.ReadDocument(a.FromFile)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}

		idx = crawler.ExtractDocument(page)
		tracker.IncrementPagesVisited()
		tracker.IncrementPagesFetched()
		tracker.AddEmailsFound(idx.Len())
		mode, reason = "file", "file"
		seeds = []string{a.FromFile}
		logrus.Infof("Extracted %d emails from %s", idx.Len(), page.Path)

	default:
		res, err := crawl(ctx, cfg, a, tracker, stderr)
		if err != nil {
			fmt.Fprintf(stderr, "Crawl failed: %v\n", err)
			return 1
		}
		idx = res.Index
		mode, reason = "crawl", res.Reason
		seeds = a.URLs
	}

	if code := emit(a, idx, stdout, stderr); code != 0 {
		return code
	}

	if cfg.DBPath != "" {
		if err := record(cfg.DBPath, mode, seeds, idx, tracker, reason); err != nil {
			logrus.Errorf("Failed to record run: %v", err)
		}
	}
	if cfg.MetricsPath != "" {
		if err := tracker.WriteToFile(cfg.MetricsPath, reason); err != nil {
			logrus.Errorf("Failed to write metrics: %v", err)
		} else {
			logrus.Infof("Metrics written to %s", cfg.MetricsPath)
		}
	}
	return 0
}

// emit formats idx and writes it to stdout or to the --output file
func emit(a args, idx *index.EmailIndex, stdout, stderr io.Writer) int {
	outMode := output.Human
	if a.JSON {
		outMode = output.JSON
	}
	text, err := output.Format(idx, outMode, a.Quiet)
	if err != nil {
		logrus.Errorf("Failed to format results: %v", err)
		return 1
	}

	if a.Output == "" {
		fmt.Fprintln(stdout, text)
		return 0
	}
	if err := os.WriteFile(a.Output, []byte(text), 0644); err != nil {
		logrus.Errorf("Failed to write output: %v", err)
		return 1
	}
	if !a.Quiet {
		fmt.Fprintf(stderr, "→ %s\n", a.Output)
	}
	return 0
}

func setupLogging(a args, w io.Writer) {
	logrus.SetOutput(w)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	switch {
	case a.Verbose:
		logrus.SetLevel(logrus.DebugLevel)
	case a.Quiet:
		logrus.SetLevel(logrus.ErrorLevel)
	default:
		logrus.SetLevel(logrus.InfoLevel)
	}
}

// crawl wires patterns, engine and progress reporting into one traversal
func crawl(ctx context.Context, cfg *config.Config, a args, tracker *metrics.Tracker, stderr io.Writer) (*crawler.Result, error) {
	patterns, warning := config.ResolvePatterns(cfg.PatternsPath)
	if warning != nil {
		logrus.Warnf("Using default URL patterns: %v", warning)
	}

	matcher, err := crawler.NewMatcher(patterns)
	if err != nil {
		return nil, err
	}

	eng, closeEngine, err := newEngine(cfg)
	if err != nil {
		return nil, err
	}
	defer closeEngine()

	opts := []crawler.Option{crawler.WithTracker(tracker)}

	// The spinner needs a terminal, so it only draws on a real file
	if f, ok := stderr.(*os.File); ok && a.showSpinner() {
		s := spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriterFile(f))
		s.Suffix = " starting crawl"
		s.Start()
		defer s.Stop()

		// Page logs would tear the spinner line
		if s.Active() {
			logrus.SetLevel(logrus.WarnLevel)
			defer logrus.SetLevel(logrus.InfoLevel)
		}

		opts = append(opts, crawler.WithProgress(func(visited, maxPages int, url string) {
			s.Lock()
			s.Suffix = fmt.Sprintf(" [%d/%d] %s", visited, maxPages, url)
			s.Unlock()
		}))
	} else {
		done := make(chan struct{})
		defer close(done)
		go logProgress(tracker, done)
	}

	return crawler.New(cfg, eng, matcher, opts...).Run(ctx, a.URLs)
}

// logProgress prints the counters periodically until done is closed
func logProgress(tracker *metrics.Tracker, done <-chan struct{}) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			logrus.Info(tracker.LogProgress())
		case <-done:
			return
		}
	}
}

func newEngine(cfg *config.Config) (engine.Engine, func(), error) {
	opts := engine.Options{
		Timeout:       time.Duration(cfg.RequestTimeoutMs) * time.Millisecond,
		UserAgent:     cfg.UserAgent,
		RespectRobots: cfg.RespectRobots,
	}

	if cfg.Render {
		b, err := engine.NewBrowserEngine(opts)
		if err != nil {
			return nil, nil, err
		}
		return b, b.Close, nil
	}
	return engine.NewCollyEngine(opts), func() {}, nil
}

// record stores the run and its locations in the history database
func record(dbPath, mode string, seeds []string, idx *index.EmailIndex, tracker *metrics.Tracker, reason string) error {
	store, err := storage.NewStorage(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	runID, err := store.StartRun(mode, seeds)
	if err != nil {
		return err
	}
	if err := idx.Flush(store, runID); err != nil {
		return err
	}
	if err := store.FinishRun(runID, tracker.Finish(reason)); err != nil {
		return err
	}

	stored, err := store.GetRun(runID)
	if err != nil {
		return err
	}
	if stored == nil {
		return fmt.Errorf("run %d missing after finish", runID)
	}
	logrus.Infof("Run %d recorded in %s: %s, %d pages visited, %d emails (%s)",
		stored.RunID, dbPath, stored.Mode, stored.PagesVisited, stored.EmailsFound, stored.TerminationReason)
	return nil
}

// history loads every email and location stored by earlier runs
func history(dbPath string) (*index.EmailIndex, error) {
	store, err := storage.NewStorage(dbPath)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	return index.Load(store)
}
