// Package commands defines the newsverdict command line.
package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"NewsVerdict/internal/app"
	"NewsVerdict/internal/config"
	"NewsVerdict/internal/domain"
	"NewsVerdict/internal/infrastructure/extract"
	"NewsVerdict/internal/infrastructure/remote"
	"NewsVerdict/internal/logging"
	"NewsVerdict/internal/render"
)

const emptyInputMessage = "Please enter a news article to get a prediction."

type sessionKey struct{}

type session struct {
	cfg    config.Config
	logger *slog.Logger
}

// NewApp builds the CLI. Command output goes to stdout, logs to stderr.
func NewApp(stdin io.Reader, stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "newsverdict",
		Usage:     "classify news articles as real or fake",
		Reader:    stdin,
		Writer:    stdout,
		ErrWriter: stderr,
		// Exit codes are resolved in main.
		ExitErrHandler: func(*cli.Context, error) {},
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML config file", EnvVars: []string{"NEWSVERDICT_CONFIG"}},
			&cli.StringFlag{Name: "vectorizer", Usage: "vectorizer artifact location"},
			&cli.StringFlag{Name: "model", Usage: "classifier artifact location"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "serve the HTTP API",
				Flags:  []cli.Flag{&cli.StringFlag{Name: "addr", Usage: "listen address"}},
				Action: ServeAction,
			},
			{
				Name:      "classify",
				Usage:     "classify an article from arguments, a file or stdin",
				ArgsUsage: "[text...]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "read the article from a file"},
					&cli.BoolFlag{Name: "html", Usage: "input is an HTML page; extract the article body"},
					&cli.StringFlag{Name: "url", Usage: "page URL used to resolve links in --html input"},
					&cli.BoolFlag{Name: "json", Usage: "print the report as JSON"},
					&cli.StringFlag{Name: "remote", Usage: "classify through a running API at this base URL"},
				},
				Action: ClassifyAction,
			},
			{
				Name:  "inspect",
				Usage: "describe the loaded vectorizer and classifier",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "print as JSON"},
					&cli.StringFlag{Name: "remote", Usage: "inspect a running API at this base URL"},
				},
				Action: InspectAction,
			},
			{
				Name:  "history",
				Usage: "list recent verdicts",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 20, Usage: "number of verdicts"},
					&cli.BoolFlag{Name: "json", Usage: "print as JSON"},
					&cli.StringFlag{Name: "remote", Usage: "read history from a running API at this base URL"},
				},
				Action: HistoryAction,
			},
		},
	}
}

func setup(c *cli.Context) error {
	cfg, err := config.LoadPath(c.String("config"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if v := c.String("vectorizer"); v != "" {
		cfg.Artifacts.Vectorizer = v
	}
	if v := c.String("model"); v != "" {
		cfg.Artifacts.Model = v
	}
	if v := c.String("log-level"); v != "" {
		cfg.Logging.Level = v
	}

	rt := &session{cfg: cfg, logger: logging.NewTo(c.App.ErrWriter, cfg.Logging.Level)}
	c.Context = context.WithValue(c.Context, sessionKey{}, rt)
	return nil
}

func sessionFrom(c *cli.Context) *session {
	if rt, ok := c.Context.Value(sessionKey{}).(*session); ok {
		return rt
	}
	cfg := config.Default()
	return &session{cfg: cfg, logger: logging.NewTo(c.App.ErrWriter, cfg.Logging.Level)}
}

func newApplication(c *cli.Context, cfg config.Config, logger *slog.Logger) (*app.Application, error) {
	application, err := app.New(c.Context, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init application: %w", err)
	}
	return application, nil
}

// ServeAction runs the HTTP API until interrupted.
func ServeAction(c *cli.Context) error {
	rt := sessionFrom(c)
	cfg := rt.cfg
	if addr := c.String("addr"); addr != "" {
		cfg.Server.Addr = addr
	}

	application, err := newApplication(c, cfg, logging.New(cfg.Logging.Level))
	if err != nil {
		return err
	}
	defer application.Close()

	return application.Run(c.Context)
}

// ClassifyAction classifies one article and prints the report.
func ClassifyAction(c *cli.Context) error {
	rt := sessionFrom(c)

	text, err := readInput(c)
	if err != nil {
		return err
	}

	if strings.TrimSpace(text) == "" {
		_ = render.NewConsole(c.App.ErrWriter).Warning(emptyInputMessage)
		return cli.Exit("", 2)
	}

	var report domain.Report
	if base := c.String("remote"); base != "" {
		report, err = remote.NewClient(base, nil).Classify(c.Context, text)
	} else {
		report, err = classifyLocal(c, rt, text)
	}
	if errors.Is(err, domain.ErrEmptyInput) {
		_ = render.NewConsole(c.App.ErrWriter).Warning(emptyInputMessage)
		return cli.Exit("", 2)
	}
	if err != nil {
		return fmt.Errorf("classify: %w", err)
	}

	if c.Bool("json") {
		return writeJSON(c.App.Writer, report)
	}
	return render.NewConsole(c.App.Writer).Report(report)
}

func classifyLocal(c *cli.Context, rt *session, text string) (domain.Report, error) {
	application, err := newApplication(c, rt.cfg, rt.logger)
	if err != nil {
		return domain.Report{}, err
	}
	defer application.Close()

	analyzer, err := application.Analyzer(c.Context)
	if err != nil {
		return domain.Report{}, err
	}
	return analyzer.Analyze(c.Context, text)
}

// InspectAction prints what the artifacts contain.
func InspectAction(c *cli.Context) error {
	rt := sessionFrom(c)

	var info domain.ModelInfo
	if base := c.String("remote"); base != "" {
		var err error
		info, err = remote.NewClient(base, nil).Model(c.Context)
		if err != nil {
			return fmt.Errorf("inspect remote model: %w", err)
		}
	} else {
		application, err := newApplication(c, rt.cfg, rt.logger)
		if err != nil {
			return err
		}
		defer application.Close()

		bundle, err := application.Bundle(c.Context)
		if err != nil {
			return err
		}
		info = bundle.Info()
	}

	if c.Bool("json") {
		return writeJSON(c.App.Writer, info)
	}
	return render.NewConsole(c.App.Writer).Model(info)
}

// HistoryAction lists the most recent verdicts.
func HistoryAction(c *cli.Context) error {
	rt := sessionFrom(c)
	limit := c.Int("limit")
	if limit <= 0 {
		return cli.Exit("--limit must be positive", 2)
	}

	var verdicts []domain.Verdict
	if base := c.String("remote"); base != "" {
		var err error
		verdicts, err = remote.NewClient(base, nil).Verdicts(c.Context, limit)
		if err != nil {
			return fmt.Errorf("load remote history: %w", err)
		}
	} else {
		application, err := newApplication(c, rt.cfg, rt.logger)
		if err != nil {
			return err
		}
		defer application.Close()

		repo, err := application.History(c.Context)
		if err != nil {
			return err
		}
		verdicts, err = repo.Recent(c.Context, limit)
		if err != nil {
			return fmt.Errorf("load history: %w", err)
		}
	}

	if c.Bool("json") {
		return writeJSON(c.App.Writer, verdicts)
	}
	return render.NewConsole(c.App.Writer).History(verdicts)
}

func readInput(c *cli.Context) (string, error) {
	var raw string
	switch {
	case c.String("file") != "":
		data, err := os.ReadFile(c.String("file"))
		if err != nil {
			return "", fmt.Errorf("read article: %w", err)
		}
		raw = string(data)
	case c.Args().Present():
		raw = strings.Join(c.Args().Slice(), " ")
	default:
		data, err := io.ReadAll(c.App.Reader)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		raw = string(data)
	}

	if !c.Bool("html") || strings.TrimSpace(raw) == "" {
		return raw, nil
	}

	text, err := extract.ArticleText(raw, c.String("url"))
	if err != nil {
		return "", fmt.Errorf("extract article: %w", err)
	}
	return text, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
