// Package markdown renders report blocks as a Markdown file.
package markdown

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/scourbot/scour/internal/report"
)

type Sink struct{}

func (Sink) Render(blocks []report.Block, target string) error {
	var b strings.Builder
	for _, blk := range blocks {
		switch blk.Kind {
		case report.TitleBlock:
			fmt.Fprintf(&b, "# %s\n\n", blk.Text)
		case report.HeadingBlock:
			fmt.Fprintf(&b, "## %s\n\n", blk.Text)
		case report.ParagraphBlock:
			fmt.Fprintf(&b, "%s\n\n", blk.Text)
		case report.PageBreakBlock:
			b.WriteString("---\n\n")
		}
	}
	if dir := filepath.Dir(target); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(target, []byte(b.String()), 0o644)
}
