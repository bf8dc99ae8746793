package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/wanyview/capsuled/internal/config"
	"github.com/wanyview/capsuled/internal/errors"
	"github.com/wanyview/capsuled/internal/service"
	"github.com/wanyview/capsuled/internal/web"
)

// cliEnv carries shared dependencies into CLI command actions.
type cliEnv struct {
	svc    *service.Service
	cfg    *config.Config
	logger *slog.Logger
	dbPath string
}

// newCLIApp creates the CLI application with all commands. env may be
// nil for help/version handling before initialization.
func newCLIApp(env *cliEnv) *cli.App {
	app := &cli.App{
		Name:    "capsuled",
		Usage:   "Knowledge capsule store with collision detection",
		Version: Version,
		Commands: []*cli.Command{
			createCmd(env),
			getCmd(env),
			listCmd(env),
			updateCmd(env),
			deleteCmd(env),
			collisionsCmd(env),
			statsCmd(env),
			serveCmd(env),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// createCmd creates the create command.
func createCmd(env *cliEnv) *cli.Command {
	return &cli.Command{
		Name:  "create",
		Usage: "Create a capsule (reads content from stdin unless --content is given)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Required: true, Usage: "Capsule title"},
			&cli.StringFlag{Name: "content", Usage: "Capsule content (otherwise piped via stdin)"},
			&cli.StringFlag{Name: "source", Usage: "Knowledge source (URL, book, conversation)"},
			&cli.StringFlag{Name: "domain", Aliases: []string{"d"}, Usage: "Knowledge domain (default: general)"},
			&cli.StringFlag{Name: "tags", Usage: "Comma-separated tags (otherwise derived from content)"},
			&cli.StringFlag{Name: "author", Usage: "Capsule author"},
		},
		Action: func(c *cli.Context) error {
			content := c.String("content")
			if content == "" {
				if !stdinHasData() {
					return outputError(errors.NewInvalidRequest("content must be given via --content or piped via stdin"))
				}
				piped, err := readStdin()
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				content = piped
			}

			input := service.CreateInput{
				Title:   c.String("title"),
				Content: content,
			}
			if source := c.String("source"); source != "" {
				input.Source = &source
			}
			if domain := c.String("domain"); domain != "" {
				input.Domain = &domain
			}
			if author := c.String("author"); author != "" {
				input.Author = &author
			}
			if tags := c.String("tags"); tags != "" {
				input.Tags = parseTags(tags)
			}

			output, err := env.svc.Create(c.Context, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// getCmd creates the get command.
func getCmd(env *cliEnv) *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Fetch a capsule by ID",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("capsule id is required"))
			}
			output, err := env.svc.Get(c.Context, c.Args().First())
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// listCmd creates the list command.
func listCmd(env *cliEnv) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List capsules, newest first",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "domain", Aliases: []string{"d"}, Usage: "Only capsules in this domain"},
			&cli.Float64Flag{Name: "min-score", Usage: "Only capsules at or above this quality score"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Usage: "Max results (default 20, cap 100)"},
		},
		Action: func(c *cli.Context) error {
			input := service.ListInput{Limit: c.Int("limit")}
			if domain := c.String("domain"); domain != "" {
				input.Domain = &domain
			}
			if c.IsSet("min-score") {
				minScore := c.Float64("min-score")
				input.MinScore = &minScore
			}

			output, err := env.svc.List(c.Context, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// updateCmd creates the update command.
func updateCmd(env *cliEnv) *cli.Command {
	return &cli.Command{
		Name:      "update",
		Usage:     "Update an existing capsule (optionally reads content from stdin)",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "New title"},
			&cli.StringFlag{Name: "content", Usage: "New content (otherwise piped via stdin, if any)"},
			&cli.StringFlag{Name: "tags", Usage: "New comma-separated tags"},
			&cli.StringFlag{Name: "source", Usage: "New source"},
			&cli.StringFlag{Name: "domain", Aliases: []string{"d"}, Usage: "New domain"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("capsule id is required"))
			}

			input := service.UpdateInput{ID: c.Args().First()}
			if title := c.String("title"); title != "" {
				input.Title = &title
			}
			if content := c.String("content"); content != "" {
				input.Content = &content
			} else if stdinHasData() {
				piped, err := readStdin()
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				if piped != "" {
					input.Content = &piped
				}
			}
			if c.IsSet("tags") {
				tags := parseTags(c.String("tags"))
				input.Tags = &tags
			}
			if source := c.String("source"); source != "" {
				input.Source = &source
			}
			if domain := c.String("domain"); domain != "" {
				input.Domain = &domain
			}

			output, err := env.svc.Update(c.Context, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(env *cliEnv) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Permanently delete a capsule",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("capsule id is required"))
			}
			id := c.Args().First()
			if err := env.svc.Delete(c.Context, id); err != nil {
				return outputError(err)
			}
			return outputJSON(map[string]any{"status": "deleted", "id": id})
		},
	}
}

// collisionsCmd creates the collisions command.
func collisionsCmd(env *cliEnv) *cli.Command {
	return &cli.Command{
		Name:      "collisions",
		Usage:     "Find capsules with overlapping tag sets",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.Float64Flag{Name: "threshold", Value: 0.5, Usage: "Minimum collision score"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Usage: "Max collisions (default 20)"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("capsule id is required"))
			}

			output, err := env.svc.Detect(c.Context, service.DetectInput{
				ID:        c.Args().First(),
				Threshold: c.Float64("threshold"),
				Limit:     c.Int("limit"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(map[string]any{"collisions": output, "count": len(output)})
		},
	}
}

// statsCmd creates the stats command.
func statsCmd(env *cliEnv) *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show store statistics",
		Action: func(c *cli.Context) error {
			output, err := env.svc.Stats(c.Context)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(env *cliEnv) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Usage: "Interface to listen on (default from config)"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "Port to listen on (default from config)"},
		},
		Action: func(c *cli.Context) error {
			bind := env.cfg.Bind
			if c.IsSet("bind") {
				bind = c.String("bind")
			}
			port := env.cfg.Port
			if c.IsSet("port") {
				port = c.Int("port")
			}

			srv := web.NewServer(env.svc, env.logger, Version, env.dbPath, bind, port)
			return web.Run(srv, env.logger)
		},
	}
}

// outputJSON prints indented JSON for CLI consumption.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if cErr, ok := err.(*errors.CapsuleError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", cErr.Code, cErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// parseTags splits a comma-separated string into a slice of tags.
func parseTags(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
