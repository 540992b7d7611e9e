package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/samber/do/v2"
	"go.uber.org/zap"

	"stackit/internal/ai"
	"stackit/internal/analytics"
	"stackit/internal/auth"
	"stackit/internal/config"
	"stackit/internal/di"
	"stackit/internal/models"
	"stackit/internal/service"
	"stackit/internal/utils"
)

const usage = `usage: stackit [-timeout d] [-token t] [-metrics] [-prom] <command> [flags]

commands:
  report                      analytics report
  dashboard                   admin stats, flagged queue and recent questions
  leaderboard                 top and trending profiles
  tags [-filter s]            tag usage recomputed from questions
  search -q s [-sort o] [-filter f]
                              keyword search with AI suggestions
  moderate -id q -action a    approve or reject a flagged question
  profile [-user u]           a profile with its questions and answers
  inbox [-user u]             latest notifications, then mark them read
  assist <analyze|tags|improve|answer|suggest> [flags]

-token (or STACKIT_ACCESS_TOKEN) runs the command as that session's user;
-user defaults to the session's user.
`

// CLI holds the container and output streams a command runs against.
type CLI struct {
	injector do.Injector
	stdout   io.Writer
	stderr   io.Writer
	session  *auth.Session
}

func main() {
	os.Exit(run(os.Args[1:], di.NewContainer, os.Stdout, os.Stderr))
}

// run executes one command and returns the process exit status.
func run(args []string, newContainer func() *do.RootScope, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("stackit", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	timeout := fs.Duration("timeout", 30*time.Second, "deadline for the whole command")
	token := fs.String("token", os.Getenv("STACKIT_ACCESS_TOKEN"), "user access token to act as")
	showMetrics := fs.Bool("metrics", false, "print call metrics as JSON to stderr when done")
	showProm := fs.Bool("prom", false, "print call metrics in Prometheus text format to stderr when done")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	injector := newContainer()
	defer injector.Shutdown()

	if err := di.Bootstrap(injector); err != nil {
		fmt.Fprintf(stderr, "stackit: %v\n", err)
		return utils.AppErrorToExitCode(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	cli := &CLI{injector: injector, stdout: stdout, stderr: stderr}
	if *token != "" {
		cfg := do.MustInvoke[*config.Config](injector)
		session, err := auth.ParseSession(*token, cfg.Datastore.JWTSecret)
		if err != nil {
			fmt.Fprintf(stderr, "stackit: %v\n", err)
			return utils.AppErrorToExitCode(err)
		}
		cli.session = session
		ctx = auth.WithSession(ctx, session)
	}
	err := cli.dispatch(ctx, fs.Arg(0), fs.Args()[1:])

	if *showMetrics {
		writeJSON(stderr, do.MustInvoke[*utils.MetricsCollector](injector).Snapshot())
	}
	if *showProm {
		if perr := do.MustInvoke[*utils.MetricsCollector](injector).WritePrometheus(stderr); perr != nil {
			fmt.Fprintf(stderr, "stackit: writing metrics: %v\n", perr)
		}
	}

	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		do.MustInvoke[*zap.Logger](injector).Debug("command failed", zap.Error(err))
		fmt.Fprintf(stderr, "stackit: %v\n", err)
		return utils.AppErrorToExitCode(err)
	}
	return 0
}

func (c *CLI) dispatch(ctx context.Context, command string, args []string) error {
	switch command {
	case "report":
		return c.report(ctx, args)
	case "dashboard":
		return c.dashboard(ctx, args)
	case "leaderboard":
		return c.leaderboard(ctx, args)
	case "tags":
		return c.tags(ctx, args)
	case "moderate":
		return c.moderate(ctx, args)
	case "profile":
		return c.profile(ctx, args)
	case "inbox":
		return c.inbox(ctx, args)
	case "search":
		return c.search(ctx, args)
	case "assist":
		return c.assist(ctx, args)
	default:
		fmt.Fprint(c.stderr, usage)
		return utils.NewInvalidInputError(fmt.Sprintf("unknown command %q", command))
	}
}

func (c *CLI) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	return fs
}

// parse wraps flag errors as INVALID_INPUT so they exit with the usage status.
func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return utils.NewAppError(utils.ErrInvalidInput, "bad flags for "+fs.Name(), err)
	}
	return nil
}

func (c *CLI) report(ctx context.Context, args []string) error {
	fs := c.flags("report")
	chronological := fs.Bool("sorted", false, "order monthly series by month instead of by first appearance")
	if err := parse(fs, args); err != nil {
		return err
	}

	report, err := do.MustInvoke[*service.AnalyticsService](c.injector).Report(ctx)
	if err != nil {
		return err
	}
	if *chronological {
		report.Questions.Monthly = analytics.SortMonthly(report.Questions.Monthly)
		report.Users.MonthlySignups = analytics.SortMonthly(report.Users.MonthlySignups)
	}
	return writeJSON(c.stdout, report)
}

func (c *CLI) dashboard(ctx context.Context, args []string) error {
	if err := parse(c.flags("dashboard"), args); err != nil {
		return err
	}
	svc := do.MustInvoke[*service.DashboardService](c.injector)

	stats, err := svc.Stats(ctx)
	if err != nil {
		return err
	}
	flagged, err := svc.FlaggedContent(ctx)
	if err != nil {
		return err
	}
	recent, err := svc.RecentActivity(ctx)
	if err != nil {
		return err
	}
	return writeJSON(c.stdout, struct {
		Stats   *service.DashboardStats `json:"stats"`
		Flagged []*models.Question      `json:"flagged"`
		Recent  []*models.Question      `json:"recent"`
	}{stats, flagged, recent})
}

func (c *CLI) leaderboard(ctx context.Context, args []string) error {
	if err := parse(c.flags("leaderboard"), args); err != nil {
		return err
	}
	board, err := do.MustInvoke[*service.LeaderboardService](c.injector).Leaderboard(ctx)
	if err != nil {
		return err
	}
	return writeJSON(c.stdout, board)
}

func (c *CLI) tags(ctx context.Context, args []string) error {
	fs := c.flags("tags")
	filter := fs.String("filter", "", "keep tags containing this text, ignoring case")
	if err := parse(fs, args); err != nil {
		return err
	}
	counts, err := do.MustInvoke[*service.TagService](c.injector).Directory(ctx, *filter)
	if err != nil {
		return err
	}
	return writeJSON(c.stdout, counts)
}

func (c *CLI) search(ctx context.Context, args []string) error {
	fs := c.flags("search")
	query := fs.String("q", "", "keyword matched against title, description and tags")
	sortBy := fs.String("sort", string(models.SortNewest), "newest, votes or answers")
	filter := fs.String("filter", string(models.FilterAll), "all, unanswered or accepted")
	if err := parse(fs, args); err != nil {
		return err
	}

	results, err := do.MustInvoke[*service.SearchService](c.injector).Search(ctx, models.SearchOptions{
		Query:  *query,
		Sort:   models.SearchSort(*sortBy),
		Filter: models.SearchFilter(*filter),
	})
	if err != nil {
		return err
	}
	return writeJSON(c.stdout, struct {
		Questions   []*models.Question `json:"questions"`
		Suggestions map[string]any     `json:"suggestions"`
	}{results.Questions, resultView(results.Suggestions)})
}

func (c *CLI) moderate(ctx context.Context, args []string) error {
	fs := c.flags("moderate")
	rawID := fs.String("id", "", "question id")
	action := fs.String("action", "", "approve or reject")
	analyze := fs.Bool("analyze", false, "print the AI quality analysis of the question after moderating it")
	if err := parse(fs, args); err != nil {
		return err
	}
	id, err := parseID("id", *rawID)
	if err != nil {
		return err
	}

	svc := do.MustInvoke[*service.DashboardService](c.injector)
	q, err := svc.Moderate(ctx, id, models.ModerationAction(*action))
	if err != nil {
		return err
	}
	if !*analyze {
		return writeJSON(c.stdout, q)
	}
	return writeJSON(c.stdout, struct {
		Question *models.Question `json:"question"`
		Analysis any              `json:"analysis"`
	}{q, resultView(svc.AnalyzeQuestion(ctx, q))})
}

func (c *CLI) profile(ctx context.Context, args []string) error {
	fs := c.flags("profile")
	rawID := fs.String("user", "", "profile id")
	if err := parse(fs, args); err != nil {
		return err
	}
	userID, err := c.userID(*rawID)
	if err != nil {
		return err
	}
	activity, err := do.MustInvoke[*service.ProfileService](c.injector).Activity(ctx, userID)
	if err != nil {
		return err
	}
	return writeJSON(c.stdout, activity)
}

func (c *CLI) inbox(ctx context.Context, args []string) error {
	fs := c.flags("inbox")
	rawID := fs.String("user", "", "profile id")
	if err := parse(fs, args); err != nil {
		return err
	}
	userID, err := c.userID(*rawID)
	if err != nil {
		return err
	}
	notifications, err := do.MustInvoke[*service.NotificationService](c.injector).Inbox(ctx, userID)
	if err != nil {
		return err
	}
	return writeJSON(c.stdout, notifications)
}

func (c *CLI) assist(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return utils.NewInvalidInputError("assist needs one of analyze, tags, improve, answer, suggest")
	}
	mode := args[0]

	fs := c.flags("assist " + mode)
	title := fs.String("title", "", "question title")
	description := fs.String("description", "", "question description or answer details")
	text := fs.String("text", "", "content to analyze")
	kind := fs.String("kind", string(ai.ContentQuestion), "question or answer")
	query := fs.String("query", "", "search query")
	if err := parse(fs, args[1:]); err != nil {
		return err
	}

	svc := do.MustInvoke[*service.AssistantService](c.injector)
	var (
		view any
		err  error
	)
	switch mode {
	case "analyze":
		var r ai.Result[*ai.ContentAnalysis]
		r, err = svc.Analyze(ctx, *text, ai.ContentType(*kind))
		view = resultView(r)
	case "tags":
		var r ai.Result[[]string]
		r, err = svc.Tags(ctx, *title, *description)
		view = resultView(r)
	case "improve":
		var r ai.Result[*ai.ImprovedQuestion]
		r, err = svc.Improve(ctx, *title, *description)
		view = resultView(r)
	case "answer":
		var r ai.Result[string]
		r, err = svc.Answer(ctx, *title, *description)
		view = resultView(r)
	case "suggest":
		var r ai.Result[[]string]
		r, err = svc.Suggest(ctx, *query)
		view = resultView(r)
	default:
		return utils.NewInvalidInputError(fmt.Sprintf("unknown assist mode %q", mode))
	}
	if err != nil {
		return err
	}
	return writeJSON(c.stdout, view)
}

// resultView is the printable form of an AI result.
func resultView[T any](r ai.Result[T]) map[string]any {
	view := map[string]any{
		"outcome": r.Outcome.String(),
		"value":   r.Value,
	}
	if r.Err != nil {
		view["error"] = r.Err.Error()
	}
	return view
}

// userID is the -user flag, or the session's user when the flag is blank.
func (c *CLI) userID(raw string) (uuid.UUID, error) {
	if raw == "" && c.session != nil {
		return c.session.UserID, nil
	}
	return parseID("user", raw)
}

func parseID(name, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, utils.NewValidationError(map[string]string{name: "must be a UUID"})
	}
	return id, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
