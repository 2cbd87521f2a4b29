package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	json "github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/tbourn/go-fitcircle/internal/binding"
	"github.com/tbourn/go-fitcircle/internal/docpath"
	"github.com/tbourn/go-fitcircle/internal/docstore"
)

// stdout is swapped in tests.
var stdout io.Writer = os.Stdout

func printJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printLine writes v as a single JSON line, for streaming output.
func printLine(v any) error {
	return json.NewEncoder(stdout).Encode(v)
}

// withApp loads configuration, opens the stores, runs fn and closes them.
func withApp(ctx context.Context, cmd *cli.Command, fn func(*app) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	a, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func stateCommand() *cli.Command {
	return &cli.Command{
		Name:  "state",
		Usage: "Print the persisted application state",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withApp(ctx, cmd, func(a *app) error {
				s, err := a.openState(false)
				if err != nil {
					return err
				}
				return printJSON(s.State())
			})
		},
	}
}

func logoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "Clear the persisted application state",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withApp(ctx, cmd, func(a *app) error {
				s, err := a.openState(false)
				if err != nil {
					return err
				}
				s.Logout()
				fmt.Fprintln(stdout, "state cleared")
				return nil
			})
		},
	}
}

func constraintFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{Name: "where", Usage: "filter as field:op:value, repeatable"},
		&cli.StringSliceFlag{Name: "order-by", Usage: "ordering as field[:asc|desc], repeatable"},
		&cli.StringFlag{Name: "limit", Usage: "maximum number of documents"},
	}
}

// target parses the positional segments and, for collections, the
// constraint flags.
func target(cmd *cli.Command) (docpath.Path, docstore.Constraints, error) {
	p, err := docpath.Parse(cmd.Args().Slice()...)
	if err != nil {
		return docpath.Path{}, nil, fmt.Errorf("path: %w", err)
	}
	if !p.IsCollection() {
		return p, nil, nil
	}
	cs, err := docstore.ParseConstraints(cmd.StringSlice("where"), cmd.StringSlice("order-by"), cmd.String("limit"))
	if err != nil {
		return docpath.Path{}, nil, err
	}
	return p, cs, nil
}

func getCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Read a collection or document once",
		ArgsUsage: "<segment> [segment...]",
		Flags:     constraintFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			p, cs, err := target(cmd)
			if err != nil {
				return err
			}
			return withApp(ctx, cmd, func(a *app) error {
				if p.IsCollection() {
					items, err := a.docs.Collection(ctx, p, cs)
					if err != nil {
						return err
					}
					return printJSON(items)
				}
				rec, err := a.docs.Document(ctx, p)
				if err != nil {
					return err
				}
				return printJSON(rec)
			})
		},
	}
}

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "Follow a collection or document, one JSON line per change, until interrupted",
		ArgsUsage: "<segment> [segment...]",
		Flags:     constraintFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			p, cs, err := target(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()
			return withApp(ctx, cmd, func(a *app) error {
				err := follow(ctx, a, p, cs)
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			})
		},
	}
}

func follow(ctx context.Context, a *app, p docpath.Path, cs docstore.Constraints) error {
	if p.IsCollection() {
		return a.docs.WatchCollection(ctx, p, cs, func(r binding.CollectionResult) error {
			return printLine(r.Items)
		})
	}
	return a.docs.WatchDocument(ctx, p, func(r binding.DocumentResult) error {
		return printLine(r.Data)
	})
}

func putCommand() *cli.Command {
	return &cli.Command{
		Name:      "put",
		Usage:     "Create or replace a document, or add one to a collection",
		ArgsUsage: "<segment> [segment...]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "json", Usage: "document body as a JSON object", Required: true},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			p, err := docpath.Parse(cmd.Args().Slice()...)
			if err != nil {
				return fmt.Errorf("path: %w", err)
			}
			var body map[string]any
			if err := json.Unmarshal([]byte(cmd.String("json")), &body); err != nil {
				return fmt.Errorf("--json: %w", err)
			}
			return withApp(ctx, cmd, func(a *app) error {
				if p.IsCollection() {
					id, err := a.docs.Add(ctx, p, body)
					if err != nil {
						return err
					}
					fmt.Fprintln(stdout, id)
					return nil
				}
				return a.docs.Put(ctx, p, body)
			})
		},
	}
}
