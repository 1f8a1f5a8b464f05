package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/starford/inkflow/internal"
	"github.com/starford/inkflow/internal/models"
	"github.com/starford/inkflow/internal/mutate"
	"github.com/starford/inkflow/internal/query"
)

func notesCommand() *cli.Command {
	return &cli.Command{
		Name:  "notes",
		Usage: "Inspect and move notes",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List notes, newest first",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "notebook", Aliases: []string{"n"}, Usage: "Notebook id"},
					&cli.StringFlag{Name: "status", Aliases: []string{"s"}, Usage: "none, active, onHold, completed or dropped"},
					&cli.StringFlag{Name: "tag", Aliases: []string{"t"}, Usage: "Exact tag"},
					&cli.StringFlag{Name: "search", Aliases: []string{"q"}, Usage: "Case-insensitive text in title, content or tags"},
					&cli.StringFlag{Name: "sort", Value: string(models.SortUpdated), Usage: "updated, created or title"},
				},
				Action: withCore(listNotes),
			},
			{
				Name:      "export",
				Usage:     "Write a note to <title>.md",
				ArgsUsage: "<id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: ".", Usage: "Target directory"},
				},
				Action: withCore(exportNote),
			},
			{
				Name:      "import",
				Usage:     "Create a note from a markdown file",
				ArgsUsage: "<file>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "notebook", Aliases: []string{"n"}, Value: "1", Usage: "Notebook id"},
				},
				Action: withCore(importNote),
			},
		},
	}
}

func listNotes(_ context.Context, cmd *cli.Command, core *internal.Core) error {
	var status models.Status
	if raw := cmd.String("status"); raw != "" {
		s, err := models.ParseStatus(raw)
		if err != nil {
			return err
		}
		status = s
	}
	key, err := models.ParseSortKey(cmd.String("sort"))
	if err != nil {
		return err
	}
	notes := core.Store.Query(query.Filter{
		NotebookID: cmd.String("notebook"),
		Status:     status,
		Tag:        cmd.String("tag"),
		Search:     cmd.String("search"),
	}, key)

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tNOTEBOOK\tUPDATED\tTITLE\tPREVIEW")
	for _, n := range notes {
		updated := time.UnixMilli(n.UpdatedAt).Format(time.DateTime)
		preview := strings.Join(strings.Fields(query.Preview(n.Content)), " ")
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", n.ID, n.Status, n.NotebookID, updated, n.Title, preview)
	}
	return tw.Flush()
}

func exportNote(_ context.Context, cmd *cli.Command, core *internal.Core) error {
	id := cmd.Args().First()
	if id == "" {
		return fmt.Errorf("note id is required")
	}
	n, err := core.Store.Note(id)
	if err != nil {
		return err
	}
	exp := mutate.ExportNote(n)
	path := filepath.Join(cmd.String("out"), exp.Filename)
	if err := os.WriteFile(path, exp.Content, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Println(path)
	return nil
}

func importNote(ctx context.Context, cmd *cli.Command, core *internal.Core) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("file is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	n, err := core.Store.ImportNote(ctx, cmd.String("notebook"), string(data), filepath.Base(path))
	if err != nil {
		return err
	}
	fmt.Printf("%s\t%s\n", n.ID, n.Title)
	return nil
}
