package query

import (
	"strings"
	"unicode/utf8"

	"github.com/starford/inkflow/internal/models"
)

// TagCount is a distinct tag and the number of notes carrying it.
type TagCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Tags lists the distinct tags of notes in order of first appearance.
func Tags(notes []models.Note) []TagCount {
	idx := make(map[string]int)
	var out []TagCount
	for _, n := range notes {
		for _, t := range n.Tags {
			if i, ok := idx[t]; ok {
				out[i].Count++
				continue
			}
			idx[t] = len(out)
			out = append(out, TagCount{Name: t, Count: 1})
		}
	}
	return out
}

const previewLen = 80

var previewStripper = strings.NewReplacer("#", "", "*", "", "`", "", ">", "", "-", "")

// Preview strips markdown punctuation from content and cuts it to a card-sized snippet.
func Preview(content string) string {
	s := previewStripper.Replace(content)
	if utf8.RuneCountInString(s) <= previewLen {
		return s
	}
	return string([]rune(s)[:previewLen])
}
