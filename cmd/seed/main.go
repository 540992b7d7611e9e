package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/do/v2"
	"go.uber.org/zap"

	"stackit/internal/config"
	"stackit/internal/database"
	"stackit/internal/di"
	"stackit/internal/seed"
	"stackit/internal/utils"
)

// options are the seeder's command line settings.
type options struct {
	migrate bool
	author  uuid.UUID
	voters  []uuid.UUID
	answers bool
	rate    float64
	timeout time.Duration
}

func main() {
	os.Exit(run(os.Args[1:], di.NewContainer, os.Stderr))
}

func parseOptions(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{}
	var author, voters string
	fs.BoolVar(&opts.migrate, "migrate", false, "create the tables first (postgres backend only)")
	fs.StringVar(&author, "author", "", "profile id that asks the sample questions")
	fs.StringVar(&voters, "voters", "", "comma-separated profile ids that upvote every sample question")
	fs.BoolVar(&opts.answers, "answers", false, "post a sample answer to each question, authored by the first voter")
	fs.Float64Var(&opts.rate, "rate", 0, "writes per second, 0 for unlimited")
	fs.DurationVar(&opts.timeout, "timeout", 2*time.Minute, "deadline for the whole run")
	if err := fs.Parse(args); err != nil {
		return nil, utils.NewAppError(utils.ErrInvalidInput, "bad flags", err)
	}

	id, err := uuid.Parse(author)
	if err != nil {
		return nil, utils.NewValidationError(map[string]string{"author": "must be a UUID"})
	}
	opts.author = id

	for _, raw := range strings.Split(voters, ",") {
		if raw = strings.TrimSpace(raw); raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, utils.NewValidationError(map[string]string{"voters": fmt.Sprintf("%q is not a UUID", raw)})
		}
		opts.voters = append(opts.voters, id)
	}
	return opts, nil
}

func run(args []string, newContainer func() *do.RootScope, stderr io.Writer) int {
	opts, err := parseOptions(args, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "seed: %v\n", err)
		return utils.AppErrorToExitCode(err)
	}

	injector := newContainer()
	defer injector.Shutdown()

	if err := seedContent(injector, opts); err != nil {
		fmt.Fprintf(stderr, "seed: %v\n", err)
		return utils.AppErrorToExitCode(err)
	}
	return 0
}

func seedContent(injector do.Injector, opts *options) error {
	cfg, err := do.Invoke[*config.Config](injector)
	if err != nil {
		return err
	}
	store, err := do.Invoke[*di.StoreHandle](injector)
	if err != nil {
		return err
	}
	log := do.MustInvoke[*zap.Logger](injector)

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	if opts.migrate {
		pg, ok := store.ContentStore.(*database.PostgresDB)
		if !ok {
			return utils.NewInvalidInputError(fmt.Sprintf("-migrate needs the %s backend, not %s", config.BackendPostgres, cfg.Backend))
		}
		if err := pg.InitializeTables(ctx); err != nil {
			return err
		}
		log.Info("tables initialized")
	}

	seeder, err := seed.NewSeeder(store.ContentStore, seed.Config{
		AuthorID: opts.author,
		Voters:   opts.voters,
		Answers:  opts.answers,
		Rate:     opts.rate,
	}, log)
	if err != nil {
		return err
	}

	summary, err := seeder.Run(ctx)
	if err != nil {
		return err
	}

	log.Info("sample content created",
		zap.Int("questions", len(summary.Questions)),
		zap.Int("answers", summary.Answers),
		zap.Int("votes", summary.Votes),
		zap.Int("failed", summary.Failed))
	metrics := do.MustInvoke[*utils.MetricsCollector](injector).Snapshot()
	log.Info("datastore calls",
		zap.Uint64("requests", metrics.Requests),
		zap.Uint64("errors", metrics.Errors))
	return nil
}
