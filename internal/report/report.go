// Package report assembles a run's findings into a persisted artifact.
package report

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/scourbot/scour/internal/telemetry"
	"github.com/scourbot/scour/models"
)

// Block kinds accepted by a DocumentSink.
type BlockKind string

const (
	TitleBlock     BlockKind = "title"
	HeadingBlock   BlockKind = "heading"
	ParagraphBlock BlockKind = "paragraph"
	PageBreakBlock BlockKind = "page_break"
)

// Block is one typed content unit of a report document.
type Block struct {
	Kind BlockKind
	Text string
}

// DocumentSink renders an ordered block list into a file at target.
type DocumentSink interface {
	Render(blocks []Block, target string) error
}

// Assembler builds report documents under Dir through a DocumentSink.
type Assembler struct {
	Sink   DocumentSink
	Dir    string
	Logger *log.Logger
}

func NewAssembler(sink DocumentSink, dir string) *Assembler {
	return &Assembler{
		Sink:   sink,
		Dir:    dir,
		Logger: log.New(log.Writer(), "[REPORT] ", log.LstdFlags),
	}
}

// Assemble writes one report for a completed run. The artifact name is
// timestamp-qualified with a short unique suffix so concurrent runs cannot
// collide. An empty summary degrades to a literal placeholder; render
// errors are logged and returned so the caller can report a failed
// artifact, but they never panic.
func (a *Assembler) Assemble(task, summary string, findings []models.Finding) (models.Artifact, error) {
	if strings.TrimSpace(summary) == "" {
		summary = "No complete result."
	}
	now := time.Now()
	id := fmt.Sprintf("report_%s_%s.md", now.Format("20060102_150405"), uuid.NewString()[:8])
	target := filepath.Join(a.Dir, id)

	blocks := Compose(task, summary, findings)
	if err := a.Sink.Render(blocks, target); err != nil {
		if a.Logger != nil {
			a.Logger.Printf("render failed for %s: %v", target, err)
		}
		return models.Artifact{}, err
	}
	telemetry.ReportsWritten.Inc()
	return models.Artifact{ID: id, Path: target, CreatedAt: now}, nil
}

// Compose lays out the document: title, task, executive summary (one
// paragraph per newline-delimited segment), then one section per finding
// in accumulated order.
func Compose(task, summary string, findings []models.Finding) []Block {
	blocks := []Block{
		{Kind: TitleBlock, Text: "Research Report"},
		{Kind: HeadingBlock, Text: task},
		{Kind: HeadingBlock, Text: "Executive Summary"},
	}
	for _, para := range strings.Split(summary, "\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		blocks = append(blocks, Block{Kind: ParagraphBlock, Text: para})
	}
	for i, f := range findings {
		blocks = append(blocks,
			Block{Kind: PageBreakBlock},
			Block{Kind: HeadingBlock, Text: fmt.Sprintf("%d. %s", i+1, f.Title)},
			Block{Kind: ParagraphBlock, Text: "URL: " + f.URL},
			Block{Kind: ParagraphBlock, Text: f.Summary},
		)
	}
	return blocks
}
