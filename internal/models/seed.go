package models

import "time"

var seedNotebooks = []Notebook{
	{ID: "1", Name: "Daily Notes", Color: "#4caf50"},
	{ID: "2", Name: "Work", Color: "#2196f3"},
	{ID: "3", Name: "Learning", Color: "#ff9800"},
}

const welcomeContent = `# Welcome to InkFlow

A clean and elegant note-taking app.

## Features

- **Markdown editing** with live preview
- **Notebook organization** for your notes
- **Tag system** for easy categorization
- **Local storage** - your data stays on your device
- **Search** across all your notes

## Getting Started

1. Create a new note by clicking the "New Note" button
2. Write your content using Markdown
3. Switch between edit, split, and preview modes using the toolbar

> Start capturing your thoughts! ✨`

const cheatSheetContent = "# Markdown Cheat Sheet\n\n" +
	"## Text Formatting\n\n" +
	"**Bold text** and *italic text*\n~~Strikethrough~~\n\n" +
	"## Headings\n\n# Heading 1\n## Heading 2\n### Heading 3\n\n" +
	"## Lists\n\n- Item 1\n- Item 2\n  - Nested item\n\n1. First\n2. Second\n\n" +
	"## Code\n\nInline `code` here\n\n" +
	"```javascript\nfunction hello() {\n  console.log(\"Hello, InkFlow!\");\n}\n```\n\n" +
	"## Quotes\n\n> This is a blockquote\n\n" +
	"## Links & Images\n\n[Link text](https://example.com)\n\n" +
	"## Tables\n\n| Header 1 | Header 2 |\n|----------|----------|\n| Cell 1   | Cell 2   |"

// SeedNotebooks returns a fresh copy of the first-run notebooks.
func SeedNotebooks() []Notebook {
	return append([]Notebook{}, seedNotebooks...)
}

// SeedNotes returns the first-run notes stamped relative to now.
func SeedNotes(now time.Time) []Note {
	ts := Millis(now)
	dayAgo := Millis(now.Add(-24 * time.Hour))
	return []Note{
		{
			ID:         "1",
			Title:      "Welcome to InkFlow",
			Content:    welcomeContent,
			NotebookID: "1",
			Tags:       []string{"Getting Started"},
			Status:     StatusNone,
			CreatedAt:  ts,
			UpdatedAt:  ts,
		},
		{
			ID:         "2",
			Title:      "Markdown Cheat Sheet",
			Content:    cheatSheetContent,
			NotebookID: "3",
			Tags:       []string{"Reference", "Markdown"},
			Status:     StatusNone,
			CreatedAt:  dayAgo,
			UpdatedAt:  dayAgo,
		},
	}
}
