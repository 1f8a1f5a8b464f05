package models

// DefaultNotebookID receives notes whose notebook is deleted.
const DefaultNotebookID = "1"

// Palette is the fixed set of notebook colors, assigned round-robin.
var Palette = []string{
	"#4caf50",
	"#2196f3",
	"#ff9800",
	"#e91e63",
	"#9c27b0",
	"#00bcd4",
	"#795548",
	"#607d8b",
}

// Notebook is a named, colored grouping of notes.
type Notebook struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// PaletteColor returns the color for the n-th notebook.
func PaletteColor(n int) string {
	if n < 0 {
		n = -n
	}
	return Palette[n%len(Palette)]
}

// IsSeedNotebook reports whether id is one of the notebooks shipped on first run.
// The presentation layer refuses to delete them.
func IsSeedNotebook(id string) bool {
	for _, nb := range seedNotebooks {
		if nb.ID == id {
			return true
		}
	}
	return false
}
