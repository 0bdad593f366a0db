package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/clinic/records/internal/chart"
	"github.com/clinic/records/internal/config"
	"github.com/clinic/records/internal/domain/clinical"
	"github.com/clinic/records/internal/domain/patient"
	"github.com/clinic/records/internal/platform/apierr"
	"github.com/clinic/records/internal/platform/middleware"
	"github.com/clinic/records/internal/platform/restclient"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command line and returns the process exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, notice(err))
		return 1
	}
	return 0
}

// notice renders err for the terminal. Record errors get the fixed user
// messages; anything else (bad flags, config) is shown as-is.
func notice(err error) string {
	if apierr.IsValidation(err) || apierr.IsRemote(err) {
		return apierr.UserMessage(err)
	}
	if errors.Is(err, context.Canceled) {
		return "Cancelled."
	}
	return "Error: " + err.Error()
}

// app carries the dependencies built once per invocation.
type app struct {
	cfg      *config.Config
	logger   zerolog.Logger
	patients *patient.Service
	readings *clinical.Service
	charts   *chart.Loader

	jsonOut bool
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var apiURL string

	rootCmd := &cobra.Command{
		Use:           "clinic",
		Short:         "Clinic patient records client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "validate" {
				// Local only; no API or config needed.
				return nil
			}
			return a.init(cmd, apiURL)
		},
	}
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "API base URL (overrides API_BASE_URL)")
	rootCmd.PersistentFlags().BoolVar(&a.jsonOut, "json", false, "Print JSON instead of tables")

	rootCmd.AddCommand(patientsCmd(a))
	rootCmd.AddCommand(readingsCmd(a))
	rootCmd.AddCommand(validateCmd(a))

	return rootCmd
}

func (a *app) init(cmd *cobra.Command, apiURL string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if apiURL != "" {
		cfg.APIBaseURL = apiURL
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg
	a.logger = newLogger(cfg, cmd.ErrOrStderr())

	rule, err := cfg.Rule()
	if err != nil {
		return err
	}
	client, err := restclient.New(cfg.APIBaseURL,
		restclient.WithLogger(a.logger),
		restclient.WithTimeout(cfg.RequestTimeout),
		restclient.WithRateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit,
			BurstSize:         cfg.RateBurst,
		}),
	)
	if err != nil {
		return err
	}

	a.patients = patient.NewService(patient.NewHTTPRepository(client))
	a.readings = clinical.NewService(clinical.NewHTTPRepository(client), rule)
	a.charts = chart.NewLoader(a.patients, a.readings)

	a.logger.Debug().
		Str("api", cfg.APIBaseURL).
		Str("critical_rule", cfg.CriticalRule).
		Msg("client configured")
	return nil
}

func newLogger(cfg *config.Config, w io.Writer) zerolog.Logger {
	lvl, _ := cfg.Level()
	logger := zerolog.New(w)
	if cfg.ResolvedLogFormat() == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: w})
	}
	return logger.Level(lvl).With().Timestamp().Logger()
}
