package storage

import "strings"

// Document is the material rendered into a post's on-disk markdown file:
// a frontmatter header followed by the raw markdown body.
type Document struct {
	Title      string
	Excerpt    string
	CoverImage string
	Tags       []string
	Date       string
	Markdown   string
}

// RenderDocument builds the frontmatter + body text for a post. It is a
// pure function: the input, including the tag slice, is never modified.
func RenderDocument(doc Document) string {
	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("title: " + doc.Title + "\n")
	b.WriteString("excerpt: " + doc.Excerpt + "\n")
	b.WriteString("coverImage: " + doc.CoverImage + "\n")
	b.WriteString("ogImage:\n")
	b.WriteString("  url: " + doc.CoverImage + "\n")
	b.WriteString("tags:\n")
	b.WriteString(renderTagList(doc.Tags))
	b.WriteString("date: " + doc.Date + "\n")
	b.WriteString("---\n")
	b.WriteString(doc.Markdown)
	return b.String()
}

// renderTagList renders the tags as a YAML bullet list into a fresh
// string, leaving the input slice untouched.
func renderTagList(tags []string) string {
	var b strings.Builder
	for _, tag := range tags {
		b.WriteString("  - " + tag + "\n")
	}
	return b.String()
}
