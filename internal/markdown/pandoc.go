package markdown

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"git.home.luguber.info/inful/snowbow/internal/logfields"
)

// PandocArgs request HTML5 output with MathML math and no syntax highlighting.
// Smart punctuation is disabled so quotes in code-like prose survive unchanged.
var PandocArgs = []string{
	"--from=markdown-smart",
	"--to=html5",
	"--no-highlight",
	"--mathml",
	"--eol=lf",
	"--wrap=none",
}

// PandocConverter invokes the pandoc binary once per document. Input is piped
// through stdin and HTML is read from stdout.
type PandocConverter struct {
	// Path to the binary; defaults to "pandoc" resolved on PATH.
	Path string
	// Args overrides PandocArgs.
	Args []string
}

func (p *PandocConverter) Name() string { return "pandoc" }

func (p *PandocConverter) binary() string {
	if p.Path == "" {
		return "pandoc"
	}
	return p.Path
}

// Convert runs pandoc. A non-zero exit is reported as ErrConversionFailed with
// pandoc's diagnostics. Diagnostics on a successful run are logged as warnings.
func (p *PandocConverter) Convert(ctx context.Context, src []byte) (string, error) {
	args := p.Args
	if args == nil {
		args = PandocArgs
	}
	cmd := exec.CommandContext(ctx, p.binary(), args...)
	cmd.Stdin = bytes.NewReader(src)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	diag := strings.TrimSpace(stderr.String())
	if err != nil {
		if diag != "" {
			return "", fmt.Errorf("%w: %w: %s", ErrConversionFailed, err, diag)
		}
		return "", fmt.Errorf("%w: %w", ErrConversionFailed, err)
	}
	if diag != "" {
		slog.LogAttrs(ctx, slog.LevelWarn, "pandoc reported diagnostics", logfields.Stderr(diag))
	}
	return stdout.String(), nil
}
