package frontmatter

// Well-known front matter keys read by the page model.
const (
	KeyTitle      = "title"
	KeyLayout     = "layout"
	KeyTOC        = "toc"
	KeyAutoNumber = "autoNumber"
	KeyTags       = "tags"
	KeyCategories = "categories"
	KeyTime       = "time"
)

// CheckWellKnown verifies that every well-known key that is present holds the
// variant the page model reads it as.
func (m Map) CheckWellKnown() error {
	for _, k := range []string{KeyTitle, KeyLayout} {
		if _, _, err := m.RequireString(k); err != nil {
			return err
		}
	}
	for _, k := range []string{KeyTOC, KeyAutoNumber} {
		if _, _, err := m.RequireBool(k); err != nil {
			return err
		}
	}
	for _, k := range []string{KeyTags, KeyCategories} {
		if _, _, err := m.RequireStrings(k); err != nil {
			return err
		}
	}
	_, _, err := m.RequireTime(KeyTime)
	return err
}
