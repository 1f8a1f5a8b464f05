package gitsync

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/starford/inkflow/internal/models"
	"github.com/starford/inkflow/internal/mutate"
	"github.com/starford/inkflow/internal/parser"
	"github.com/starford/inkflow/internal/storage"
)

// idKey marks files written by the exporter so stale exports can be pruned
// without touching anything else in the repository.
const idKey = "inkflow_id"

type frontMatter struct {
	ID       string   `yaml:"inkflow_id"`
	Title    string   `yaml:"title"`
	Notebook string   `yaml:"notebook"`
	Tags     []string `yaml:"tags,flow"`
	Status   string   `yaml:"status"`
	Pinned   bool     `yaml:"pinned,omitempty"`
	Created  string   `yaml:"created"`
	Updated  string   `yaml:"updated"`
}

// ExportMarkdown writes every note as <notebook>/<title>.md with YAML front
// matter, removes files from earlier exports whose note is gone, and reports
// the paths written.
func (b *Bridge) ExportMarkdown(ctx context.Context, repo string, notebooks []models.Notebook, notes []models.Note) (string, error) {
	dir, err := b.resolve(repo)
	if err != nil {
		return "", err
	}
	unlock, err := b.Lock(ctx, dir)
	if err != nil {
		return "", err
	}
	defer unlock()

	files, err := storage.NewFS(dir)
	if err != nil {
		return "", err
	}

	names := make(map[string]string, len(notebooks))
	for _, nb := range notebooks {
		names[nb.ID] = nb.Name
	}

	written := make(map[string]struct{}, len(notes))
	var paths []string
	for _, n := range notes {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		p := exportPath(names[n.NotebookID], n, written)
		data, err := parser.Render(frontMatter{
			ID:       n.ID,
			Title:    n.Title,
			Notebook: names[n.NotebookID],
			Tags:     n.Tags,
			Status:   string(n.Status),
			Pinned:   n.Pinned,
			Created:  stamp(n.CreatedAt),
			Updated:  stamp(n.UpdatedAt),
		}, n.Content)
		if err != nil {
			return "", err
		}
		if err := files.Write(p, data); err != nil {
			return "", err
		}
		written[p] = struct{}{}
		paths = append(paths, p)
	}

	removed, err := prune(files, written, b.logger)
	if err != nil {
		return "", err
	}

	sort.Strings(paths)
	var sb strings.Builder
	fmt.Fprintf(&sb, "exported %d notes to %s (removed %d stale)", len(paths), dir, removed)
	for _, p := range paths {
		sb.WriteString("\n")
		sb.WriteString(p)
	}
	return sb.String(), nil
}

// exportPath picks a relative path for n that is not in taken. Collisions
// get the full note id appended, then a counter if that is taken too.
func exportPath(notebook string, n models.Note, taken map[string]struct{}) string {
	folder := strings.TrimSuffix(mutate.ExportFilename(notebook), ".md")
	if notebook == "" {
		folder = "Unfiled"
	}
	base := strings.TrimSuffix(mutate.ExportFilename(n.Title), ".md")
	p := path.Join(folder, base+".md")
	if _, dup := taken[p]; !dup {
		return p
	}
	stem := base + " (" + n.ID + ")"
	p = path.Join(folder, stem+".md")
	for i := 2; ; i++ {
		if _, dup := taken[p]; !dup {
			return p
		}
		p = path.Join(folder, fmt.Sprintf("%s %d.md", stem, i))
	}
}

func prune(files storage.Provider, keep map[string]struct{}, logger *slog.Logger) (int, error) {
	existing, err := files.List("", ".md")
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, f := range existing {
		if _, ok := keep[f.Path]; ok {
			continue
		}
		data, err := files.Read(f.Path)
		if err != nil {
			continue
		}
		if _, ours := parser.Parse(data).Frontmatter[idKey]; !ours {
			continue
		}
		if err := files.Delete(f.Path); err != nil {
			logger.Warn("export: prune failed", slog.String("path", f.Path), slog.String("error", err.Error()))
			continue
		}
		removed++
	}
	return removed, nil
}

func stamp(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}
