package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/tartampluch/go-age/internal/config"
)

// errUsage marks command-line mistakes; they exit with config.ExitCodeUsage.
var errUsage = errors.New(config.ErrUsage)

// main delegates to runMain so deferred calls (closing the log file) run
// before os.Exit.
func main() {
	os.Exit(runMain(os.Args[1:], os.Stdout, os.Stderr))
}

// runMain parses global flags, dispatches the sub-command and maps the
// outcome to an exit code.
func runMain(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(config.AppName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	showVersion := fs.Bool(config.FlagVersion, false, config.FlagDescVersion)
	debugMode := fs.Bool(config.FlagDebug, false, config.FlagDescDebug)
	fs.Usage = func() {
		fmt.Fprint(stderr, config.MsgUsage)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return config.ExitCodeSuccess
		}
		return config.ExitCodeUsage
	}

	if *showVersion {
		printVersion(stdout)
		return config.ExitCodeSuccess
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return config.ExitCodeUsage
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var err error
	switch cmd, cmdArgs := rest[0], rest[1:]; cmd {
	case config.CmdCalc:
		setupLogging(stderr, levelFor(*debugMode, config.LogLevelWarn), config.LogFormatText, *debugMode)
		err = runCalc(cmdArgs, stdout, stderr)
	case config.CmdContacts:
		setupLogging(stderr, levelFor(*debugMode, config.LogLevelWarn), config.LogFormatText, *debugMode)
		err = runContacts(ctx, cmdArgs, stdout, stderr)
	case config.CmdServe:
		err = runServe(ctx, stdout, *debugMode)
	default:
		fmt.Fprintf(stderr, "%s: %q\n", config.ErrUnknownCommand, cmd)
		fs.Usage()
		return config.ExitCodeUsage
	}

	switch {
	case err == nil, errors.Is(err, flag.ErrHelp):
		return config.ExitCodeSuccess
	case errors.Is(err, errUsage):
		fmt.Fprintf(stderr, config.MsgError, err)
		return config.ExitCodeUsage
	default:
		fmt.Fprintf(stderr, config.MsgError, err)
		slog.Debug(config.ErrAppFailed,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
		return config.ExitCodeError
	}
}

// printVersion outputs the build information.
func printVersion(w io.Writer) {
	fmt.Fprintf(w, config.MsgVersionOutput,
		config.AppName,
		config.Version,
		runtime.GOOS,
		runtime.GOARCH,
	)
}

// logStartupInfo logs environment details useful for debugging.
func logStartupInfo() {
	slog.Info(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyCommit, config.Commit),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
	)
}

func levelFor(debugMode bool, name string) slog.Level {
	if debugMode {
		return slog.LevelDebug
	}
	switch name {
	case config.LogLevelDebug:
		return slog.LevelDebug
	case config.LogLevelWarn:
		return slog.LevelWarn
	case config.LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupLogging installs the default slog logger writing to w.
func setupLogging(w io.Writer, level slog.Level, format string, addSource bool) {
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: addSource,
	}

	var handler slog.Handler
	if format == config.LogFormatText {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// openLogFile opens the server log in the user's cache directory, truncated
// on every start. It returns nil when the file cannot be created.
func openLogFile(stderr io.Writer) *os.File {
	logPath, err := getLogFilePath()
	if err != nil {
		fmt.Fprintf(stderr, config.MsgLogWarning, config.ErrLogFile, config.LogFileName, err)
		return nil
	}

	f, err := os.OpenFile(logPath, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, config.FilePermUserRW)
	if err != nil {
		fmt.Fprintf(stderr, config.MsgLogWarning, config.ErrLogFile, logPath, err)
		return nil
	}
	return f
}

// getLogFilePath determines the platform-specific cache directory for logs.
func getLogFilePath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCacheDir, err)
	}

	appDir := filepath.Join(cacheDir, config.AppID)
	if err := os.MkdirAll(appDir, config.DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}

	return filepath.Join(appDir, config.LogFileName), nil
}
