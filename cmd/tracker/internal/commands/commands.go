package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/subcommands"

	trackerclient "github.com/GregMSThompson/transaction-tracker/internal/client/tracker"
	"github.com/GregMSThompson/transaction-tracker/internal/config"
	"github.com/GregMSThompson/transaction-tracker/internal/dto"
	"github.com/GregMSThompson/transaction-tracker/internal/errs"
	"github.com/GregMSThompson/transaction-tracker/internal/models"
	"github.com/GregMSThompson/transaction-tracker/pkg/logger"
)

// api is the tracker API surface the commands use.
type api interface {
	Fetch(ctx context.Context, r dto.DateRange) ([]models.Transaction, error)
	LinkToken(ctx context.Context) (string, error)
	Exchange(ctx context.Context, publicToken string) error
	Institution(ctx context.Context) (models.Institution, error)
	Unlink(ctx context.Context) error
}

// Env is shared by every command.
type Env struct {
	Config *config.ClientConfig
	Client api
	Log    *slog.Logger
	Out    io.Writer
	Now    func() time.Time
}

// NewEnv builds the client from configuration. Logs go to the configured
// file so they do not interleave with command output or the TUI.
func NewEnv(cfg *config.ClientConfig) (*Env, func(), error) {
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	client := trackerclient.New(cfg.APIURL,
		trackerclient.WithToken(cfg.Token),
		trackerclient.WithDemoUser(cfg.DemoUser),
		trackerclient.WithRetries(cfg.Retries, cfg.RetryDelay),
	)

	env := &Env{
		Config: cfg,
		Client: client,
		Log:    logger.New(cfg.LogLevel, logger.WriterHandler(f)),
		Out:    os.Stdout,
		Now:    time.Now,
	}
	return env, func() { _ = f.Close() }, nil
}

func (e *Env) ctx(ctx context.Context) context.Context {
	return logger.ToContext(ctx, e.Log)
}

// Register the subcommands.
func Register(c *subcommands.Commander, env *Env) {
	c.Register(&linkTokenCmd{env: env}, "link")
	c.Register(&exchangeCmd{env: env}, "link")
	c.Register(&institutionCmd{env: env}, "link")
	c.Register(&unlinkCmd{env: env}, "link")

	c.Register(&transactionsCmd{env: env}, "transactions")
	c.Register(&watchCmd{env: env}, "transactions")
}

// rangeFlags are the -start/-end flags shared by the transaction commands.
type rangeFlags struct {
	start string
	end   string
	sort  string
}

func (r *rangeFlags) set(f *flag.FlagSet) {
	f.StringVar(&r.start, "start", "", "First day (YYYY-MM-DD). Defaults to 30 days before -end.")
	f.StringVar(&r.end, "end", "", "Last day (YYYY-MM-DD). Defaults to today.")
	f.StringVar(&r.sort, "sort", "date-desc", "Sort: date-desc, date-asc, amount-desc, amount-asc, description-asc, description-desc.")
}

func (r *rangeFlags) resolve(now time.Time) (dto.DateRange, error) {
	return dto.ResolveDateRange(now, r.start, r.end)
}

// report prints err for the user and picks the exit status.
func report(w io.Writer, err error) subcommands.ExitStatus {
	var ve *errs.ValidationError
	if errors.As(err, &ve) {
		fmt.Fprintf(w, "Error: %s\n", ve.Message)
		return subcommands.ExitUsageError
	}
	var nl *errs.NotLinkedError
	if errors.As(err, &nl) {
		fmt.Fprintf(w, "No linked account: %s\n", nl.Message)
		return subcommands.ExitFailure
	}
	var ext *errs.ExternalServiceError
	if errors.As(err, &ext) {
		fmt.Fprintf(w, "Error: %s\n", ext.Message)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(w, "Error: %v\n", err)
	return subcommands.ExitFailure
}
