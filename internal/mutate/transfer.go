package mutate

import (
	"path/filepath"
	"strings"

	"github.com/starford/inkflow/internal/models"
	"github.com/starford/inkflow/internal/parser"
)

// ImportedTitle is used when an imported file name has no usable stem.
const ImportedTitle = "Imported Note"

// Export is a note serialized as a saveable markdown file.
type Export struct {
	Filename    string
	ContentType string
	Content     []byte
}

// ImportNote prepends a note built from an uploaded markdown file.
// The title comes from filename; tags and a valid status are read from the content.
func ImportNote(notes []models.Note, notebookID, content, filename, id string, now int64) ([]models.Note, models.Note) {
	res := parser.Parse([]byte(content))

	status := models.StatusNone
	if s := models.Status(res.Status); s.Valid() {
		status = s
	}

	n := models.Note{
		ID:         id,
		Title:      TitleFromFilename(filename),
		Content:    content,
		NotebookID: notebookID,
		Tags:       NormalizeTags(res.Tags),
		Status:     status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	out := make([]models.Note, 0, len(notes)+1)
	out = append(out, n)
	out = append(out, cloneNotes(notes)...)
	return out, n.Clone()
}

// TitleFromFilename strips directories and the last extension from name.
func TitleFromFilename(name string) string {
	base := filepath.Base(filepath.ToSlash(strings.TrimSpace(name)))
	if base == "." || base == "/" {
		return ImportedTitle
	}
	stem := strings.TrimSpace(strings.TrimSuffix(base, filepath.Ext(base)))
	if stem == "" {
		return ImportedTitle
	}
	return stem
}

// ExportNote serializes the note body as <title>.md.
func ExportNote(n models.Note) Export {
	return Export{
		Filename:    ExportFilename(n.Title),
		ContentType: "text/markdown; charset=utf-8",
		Content:     []byte(n.Content),
	}
}

var unsafeFilenameChars = strings.NewReplacer("/", "-", "\\", "-", "\x00", "")

// ExportFilename turns a note title into a file name ending in .md.
func ExportFilename(title string) string {
	name := strings.TrimSpace(unsafeFilenameChars.Replace(title))
	if name == "" || name == "." || name == ".." {
		name = models.DefaultTitle
	}
	return name + ".md"
}
