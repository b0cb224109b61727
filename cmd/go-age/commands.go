package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/tartampluch/go-age/internal/config"
	"github.com/tartampluch/go-age/internal/engine"
	"github.com/tartampluch/go-age/internal/feed"
	"github.com/tartampluch/go-age/internal/metrics"
	"github.com/tartampluch/go-age/internal/render"
	"github.com/tartampluch/go-age/internal/server"
	"golang.org/x/sync/errgroup"
)

// outputFlags are shared by the calc and contacts commands.
type outputFlags struct {
	format string
	leap   string
	lang   string
}

func (o *outputFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&o.format, config.FlagFormat, config.FormatText, config.FlagDescFormat)
	fs.StringVar(&o.leap, config.FlagLeap, config.DefaultLeapPolicy, config.FlagDescLeap)
	fs.StringVar(&o.lang, config.FlagLang, config.DefaultLanguage, config.FlagDescLang)
}

func (o *outputFlags) validate() (*engine.Engine, error) {
	if o.format != config.FormatText && o.format != config.FormatJSON {
		return nil, fmt.Errorf("%w: %s: %q", errUsage, config.ErrFormatUnsupport, o.format)
	}
	policy, err := engine.ParseLeapDayPolicy(o.leap)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errUsage, err)
	}
	return engine.New(policy), nil
}

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

// runCalc prints the age report for -dob as of -ref (default today).
func runCalc(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet(config.CmdCalc, stderr)
	dob := fs.String(config.FlagDOB, "", config.FlagDescDOB)
	ref := fs.String(config.FlagRef, "", config.FlagDescRef)
	var out outputFlags
	out.register(fs)

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	if *dob == "" {
		fs.Usage()
		return fmt.Errorf("%w: %s", errUsage, config.ErrDOBMissing)
	}
	eng, err := out.validate()
	if err != nil {
		return err
	}

	birth, err := engine.ParseDate(*dob)
	if err != nil {
		return err
	}
	reference := engine.Today(engine.RealClock{}, time.Local)
	if *ref != "" {
		if reference, err = engine.ParseDate(*ref); err != nil {
			return fmt.Errorf("%s: %w", config.ErrReference, err)
		}
	}

	report, err := eng.ComputeAge(birth, reference)
	if err != nil {
		return err
	}

	slog.Debug(config.MsgAgeComputed,
		config.LogKeyComponent, config.CompCLI,
		config.LogKeyDOB, birth.String(),
		config.LogKeyRef, reference.String(),
		config.LogKeyPolicy, eng.Policy().String(),
	)

	if out.format == config.FormatJSON {
		return render.JSON(stdout, report)
	}
	return render.New(out.lang).Report(stdout, report)
}

// runContacts lists the upcoming birthdays of a vCard file or URL.
func runContacts(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet(config.CmdContacts, stderr)
	file := fs.String(config.FlagFile, "", config.FlagDescFile)
	url := fs.String(config.FlagURL, "", config.FlagDescURL)
	user := fs.String(config.FlagUser, "", config.FlagDescUser)
	var out outputFlags
	out.register(fs)

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	eng, err := out.validate()
	if err != nil {
		return err
	}

	var src feed.Source
	switch {
	case *file != "" && *url == "":
		src = feed.Source{Mode: config.SourceModeLocal, Path: *file}
	case *url != "" && *file == "":
		src = feed.Source{
			Mode:     config.SourceModeWeb,
			URL:      *url,
			User:     *user,
			Password: os.Getenv(config.EnvFeedPassword),
		}
	default:
		fs.Usage()
		return fmt.Errorf("%w: %s", errUsage, config.ErrContactSource)
	}

	r := render.New(out.lang)
	gen := &feed.Generator{
		Clock:           engine.RealClock{},
		Location:        time.Local,
		Fetcher:         feed.NewHTTPFetcher(),
		Engine:          eng,
		FormatSummary:   r.EventSummary,
		FormatMilestone: r.MilestoneSummary,
	}

	res, err := gen.RunSync(ctx, src)
	if err != nil {
		return err
	}

	if out.format == config.FormatJSON {
		return render.JSON(stdout, struct {
			Contacts []feed.Entry `json:"contacts"`
		}{res.Entries})
	}
	return r.Contacts(stdout, res.Entries)
}

// runServe starts the HTTP server and, when configured, the feed worker.
// Both stop when ctx is cancelled; the first failure stops the other.
func runServe(ctx context.Context, stdout io.Writer, debugMode bool) error {
	settings, err := config.Load()
	if err != nil {
		return err
	}

	w := stdout
	if f := openLogFile(os.Stderr); f != nil {
		defer func() { _ = f.Close() }()
		w = io.MultiWriter(stdout, f)
	}
	setupLogging(w, levelFor(debugMode, settings.LogLevel), settings.LogFormat, debugMode)
	logStartupInfo()

	policy, err := engine.ParseLeapDayPolicy(settings.LeapDayPolicy)
	if err != nil {
		return err
	}
	eng := engine.New(policy)
	m := metrics.New()
	srv := server.New(settings, eng, m)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Start(gctx) })

	if settings.FeedEnabled() {
		r := render.New(config.DefaultLanguage)
		worker := &feed.Worker{
			Generator: &feed.Generator{
				Clock:           srv.Clock,
				Location:        srv.Location,
				Fetcher:         feed.NewHTTPFetcher(),
				Engine:          eng,
				FormatSummary:   r.EventSummary,
				FormatMilestone: r.MilestoneSummary,
			},
			Source:    feed.SourceFromSettings(settings),
			Interval:  settings.RefreshInterval(),
			Publisher: srv.Calendar,
			Recorder:  m,
		}
		g.Go(func() error { return worker.Run(gctx) })
	} else {
		slog.Info(config.MsgFeedDisabled, config.LogKeyComponent, config.CompMain)
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
	return nil
}
