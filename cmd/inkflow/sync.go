package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/starford/inkflow/internal"
	"github.com/starford/inkflow/internal/apperr"
)

var repoFlag = &cli.StringFlag{Name: "repo", Aliases: []string{"r"}, Usage: "Repository path; defaults to git.repo_path or the data dir"}

func syncCommand() *cli.Command {
	verb := func(name, usage string, run func(core *internal.Core) func(context.Context, string) (string, error)) *cli.Command {
		return &cli.Command{
			Name:  name,
			Usage: usage,
			Flags: []cli.Flag{repoFlag},
			Action: withCore(func(ctx context.Context, cmd *cli.Command, core *internal.Core) error {
				return printOutput(run(core)(ctx, cmd.String("repo")))
			}),
		}
	}

	return &cli.Command{
		Name:  "sync",
		Usage: "Version the notes with git",
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Create the repository",
				Flags: []cli.Flag{repoFlag},
				Action: withCore(func(ctx context.Context, cmd *cli.Command, core *internal.Core) error {
					if core.Bridge == nil {
						return apperr.ErrHostUnsupported
					}
					return printOutput(core.Bridge.Init(ctx, cmd.String("repo")))
				}),
			},
			verb("status", "Show changed files", func(c *internal.Core) func(context.Context, string) (string, error) { return c.Facade.Status }),
			verb("add", "Stage every change", func(c *internal.Core) func(context.Context, string) (string, error) { return c.Facade.AddAll }),
			{
				Name:  "commit",
				Usage: "Commit staged changes",
				Flags: []cli.Flag{
					repoFlag,
					&cli.StringFlag{Name: "message", Aliases: []string{"m"}, Usage: "Commit message; a timestamped default is used when blank"},
				},
				Action: withCore(func(ctx context.Context, cmd *cli.Command, core *internal.Core) error {
					return printOutput(core.Facade.Commit(ctx, cmd.String("repo"), cmd.String("message")))
				}),
			},
			verb("push", "Push to the configured remote", func(c *internal.Core) func(context.Context, string) (string, error) { return c.Facade.Push }),
			verb("pull", "Pull from the configured remote", func(c *internal.Core) func(context.Context, string) (string, error) { return c.Facade.Pull }),
			verb("export", "Write every note as markdown into the repository", func(c *internal.Core) func(context.Context, string) (string, error) {
				return c.Facade.ExportAsMarkdown
			}),
		},
	}
}

func printOutput(out string, err error) error {
	if out != "" {
		fmt.Println(out)
	}
	return err
}
