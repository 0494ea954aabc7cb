package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"ledgerbook/internal/backend"
	"ledgerbook/internal/cli"
	"ledgerbook/internal/config"
	"ledgerbook/internal/log"
	"ledgerbook/internal/services"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
)

var (
	ownerFlag = flag.String("owner", os.Getenv("LEDGER_OWNER"), "Owner whose ledgers are read or changed (default $LEDGER_OWNER)")
	rawFlag   = flag.Bool("raw", false, "Print plain markdown instead of styled terminal output")
)

// session is the backend and service a single command runs against.
type session struct {
	cfg    *config.Config
	res    *backend.Result
	svc    *services.LedgerService
	logger *log.Logger
}

func openSession(ctx context.Context) (*session, error) {
	cli.LoadEnvFile()

	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "warn"
	}
	logger := log.New(log.Config{
		Level:     log.ParseLevel(level),
		Component: log.ComponentApp,
		Output:    os.Stderr,
	})

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, err
	}
	return &session{
		cfg:    cfg,
		res:    res,
		svc:    cli.NewLedgerService(cfg, res, logger, nil),
		logger: logger,
	}, nil
}

func (s *session) close() {
	if err := s.res.Close(); err != nil {
		s.logger.Warn("Backend cleanup error", log.FieldError, err)
	}
}

// run opens a session, runs fn and maps its error onto an exit status.
func run(ctx context.Context, fn func(ctx context.Context, s *session, owner string) error) subcommands.ExitStatus {
	owner := strings.TrimSpace(*ownerFlag)
	if owner == "" {
		fmt.Fprintln(os.Stderr, "Error: -owner is required (or set LEDGER_OWNER)")
		return subcommands.ExitUsageError
	}
	s, err := openSession(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer s.close()

	if err := fn(ctx, s, owner); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, errUsage) {
			return subcommands.ExitUsageError
		}
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

var errUsage = errors.New("usage")

func usageErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...))
}

// printMarkdown renders md for the terminal, falling back to plain text.
func printMarkdown(md string) {
	if *rawFlag {
		fmt.Print(md)
		return
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(120),
	)
	if err != nil {
		fmt.Print(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}
