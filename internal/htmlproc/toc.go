package htmlproc

import (
	"html/template"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Heading is one h1-h6 element found in a fragment, in stream order.
type Heading struct {
	Level int
	Text  string
	// ID is empty when the heading has no id attribute.
	ID string
}

// Item is one entry of a table of contents. A Placeholder item stands for a
// skipped level (an h4 directly below an h2) and has neither text nor link.
type Item struct {
	Text        string
	ID          string
	Placeholder bool
	Children    []Item
}

// Outline is a nested table of contents.
type Outline struct {
	Items []Item
}

// TOCTopLevel is the heading level the outline starts at; h1 is the page title.
const TOCTopLevel = 2

var headingLevels = map[atom.Atom]int{
	atom.H1: 1, atom.H2: 2, atom.H3: 3, atom.H4: 4, atom.H5: 5, atom.H6: 6,
}

// Headings returns every h1-h6 element of src in source order.
func Headings(src string) []Heading {
	z := html.NewTokenizer(strings.NewReader(src))
	var out []Heading
	var cur *Heading
	var text strings.Builder
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if z.Err() == io.EOF && cur != nil {
				cur.Text = collapseSpace(text.String())
				out = append(out, *cur)
			}
			return out
		case html.StartTagToken:
			tok := z.Token()
			level, ok := headingLevels[tok.DataAtom]
			if !ok || cur != nil {
				continue
			}
			h := Heading{Level: level}
			for _, a := range tok.Attr {
				if a.Key == "id" && a.Namespace == "" {
					h.ID = a.Val
				}
			}
			cur = &h
			text.Reset()
		case html.TextToken:
			if cur != nil {
				text.Write(z.Text())
			}
		case html.EndTagToken:
			if cur == nil {
				continue
			}
			name, _ := z.TagName()
			if level, ok := headingLevels[atom.Lookup(name)]; ok && level == cur.Level {
				cur.Text = collapseSpace(text.String())
				out = append(out, *cur)
				cur = nil
			}
		}
	}
}

// BuildTOC builds the outline of h2-h6 headings in src.
func BuildTOC(src string) Outline {
	var hs []Heading
	for _, h := range Headings(src) {
		if h.Level >= TOCTopLevel {
			hs = append(hs, h)
		}
	}
	return BuildOutline(hs, TOCTopLevel)
}

// BuildOutline nests headings starting at level. At each level, consecutive
// headings at or below that level are consumed: a heading exactly at the level
// becomes an item, a deeper heading opens a placeholder item whose children are
// built one level down. A heading above the level ends the list.
func BuildOutline(hs []Heading, level int) Outline {
	pos := 0
	return Outline{Items: buildItems(hs, level, &pos)}
}

func buildItems(hs []Heading, level int, pos *int) []Item {
	var items []Item
	for *pos < len(hs) && hs[*pos].Level >= level {
		var it Item
		if h := hs[*pos]; h.Level == level {
			it.Text, it.ID = h.Text, h.ID
			*pos++
		} else {
			it.Placeholder = true
		}
		it.Children = buildItems(hs, level+1, pos)
		items = append(items, it)
	}
	return items
}

// IsEmpty reports whether the outline has no items.
func (o Outline) IsEmpty() bool { return len(o.Items) == 0 }

// HTML renders the outline as nested ordered lists. Items without an id are
// rendered as plain text. An empty outline renders as the empty string.
func (o Outline) HTML() template.HTML {
	var b strings.Builder
	writeList(&b, o.Items)
	return template.HTML(b.String()) //nolint:gosec // text and ids are escaped in writeList
}

func writeList(b *strings.Builder, items []Item) {
	if len(items) == 0 {
		return
	}
	b.WriteString("<ol>\n")
	for _, it := range items {
		b.WriteString("<li>")
		switch {
		case it.Placeholder:
		case it.ID == "":
			b.WriteString(html.EscapeString(it.Text))
		default:
			b.WriteString(`<a href="#`)
			b.WriteString(html.EscapeString(it.ID))
			b.WriteString(`">`)
			b.WriteString(html.EscapeString(it.Text))
			b.WriteString("</a>")
		}
		b.WriteString("\n")
		writeList(b, it.Children)
		b.WriteString("</li>\n")
	}
	b.WriteString("</ol>\n")
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
