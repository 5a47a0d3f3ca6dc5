package frontmatter

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// utf8BOM is stripped from the start of every document.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Split separates YAML front matter (`---` delimited) from the Markdown body.
//
// A leading UTF-8 byte order mark is dropped and blank lines before the
// opening `---` are skipped. Any other text before it means the document has
// no front matter: had is false and body is the whole document. The closing
// delimiter may be the last line of the document.
func Split(content []byte) (frontmatter []byte, body []byte, had bool, err error) {
	content = bytes.TrimPrefix(content, utf8BOM)
	nl := detectNewline(content)
	open := []byte("---" + nl)
	start := skipBlankLines(content)
	if !bytes.HasPrefix(content[start:], open) {
		return nil, content, false, nil
	}

	rest := content[start+len(open):]
	if bytes.HasPrefix(rest, open) {
		return []byte{}, rest[len(open):], true, nil
	}
	if bytes.Equal(bytes.TrimRight(rest, "\r\n"), []byte("---")) {
		return []byte{}, []byte{}, true, nil
	}

	closeSeq := []byte(nl + "---" + nl)
	if idx := bytes.Index(rest, closeSeq); idx >= 0 {
		return rest[:idx+len(nl)], rest[idx+len(closeSeq):], true, nil
	}
	closeEOF := []byte(nl + "---")
	if bytes.HasSuffix(rest, closeEOF) {
		return rest[:len(rest)-len(closeEOF)+len(nl)], []byte{}, true, nil
	}
	return nil, nil, false, ErrMissingClosingDelimiter
}

// Parse decodes raw YAML front matter (without delimiters) into a Map.
// An empty region yields an empty, non-nil Map.
func Parse(frontmatter []byte) (Map, error) {
	if len(bytes.TrimSpace(frontmatter)) == 0 {
		return Map{}, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(frontmatter, &doc); err != nil {
		return nil, err
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	v, err := fromNode(root)
	if err != nil {
		return nil, err
	}
	switch v.Kind() {
	case KindMapping:
		return v.m, nil
	case KindNull:
		return Map{}, nil
	default:
		return nil, fmt.Errorf("%w: got %s", ErrNotMapping, v.Kind())
	}
}

// SplitAndParse combines Split and Parse. fm is nil when the document has no front matter.
func SplitAndParse(content []byte) (fm Map, body []byte, err error) {
	raw, body, had, err := Split(content)
	if err != nil {
		return nil, nil, err
	}
	if !had {
		return nil, body, nil
	}
	fm, err = Parse(raw)
	if err != nil {
		return nil, nil, err
	}
	return fm, body, nil
}

var (
	// ErrMissingClosingDelimiter indicates the document started with a YAML
	// front matter delimiter but did not contain a closing delimiter.
	ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")
	// ErrNotMapping indicates the front matter parsed but is not a key/value mapping.
	ErrNotMapping = errors.New("yaml frontmatter is not a mapping")
)

func detectNewline(content []byte) string {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}
