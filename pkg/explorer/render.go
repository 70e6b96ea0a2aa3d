package explorer

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/lipgloss"

	"github.com/papercomputeco/vecpeek/pkg/utils"
	"github.com/papercomputeco/vecpeek/pkg/vecdb"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true)
	rankStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	scoreStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	keyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	textStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// maxTextRender bounds rendered text: longer values are cut to 97 characters
// plus a three-character ellipsis marker.
const maxTextRender = 100

// renderRecord prints one record of the paged read: id first, then the
// well-known payload, the vector block when requested, and any remaining
// schema fields as raw key: value lines.
func (e *Explorer) renderRecord(n int, rec vecdb.Record, schema *vecdb.CollectionSchema) {
	fmt.Fprintf(e.out, "\n%s\n", rankStyle.Render(fmt.Sprintf("--- record #%d ---", n)))

	if id, ok := rec.ID(); ok {
		fmt.Fprintf(e.out, "%s %d\n", keyStyle.Render("id:"), id)
	}

	e.renderPayload(rec)

	if e.opts.ShowVectors {
		e.renderVector(rec)
	}

	for _, f := range schema.Fields {
		switch f.Name {
		case "id", "text", "reference", "metadata", "embedding":
			continue
		}
		if v, ok := rec.Value(f.Name); ok {
			fmt.Fprintf(e.out, "%s %v\n", keyStyle.Render(f.Name+":"), v)
		}
	}
}

// renderHit prints one search hit: rank and score first, then the payload,
// then the id.
func (e *Explorer) renderHit(rank int, hit vecdb.Hit) {
	fmt.Fprintf(e.out, "\n%s  %s\n",
		rankStyle.Render(fmt.Sprintf("#%d", rank)),
		scoreStyle.Render(fmt.Sprintf("score: %.4f", hit.Score)),
	)

	e.renderPayload(hit.Record)

	if id, ok := hit.ID(); ok {
		fmt.Fprintf(e.out, "%s %d\n", keyStyle.Render("id:"), id)
	}
}

func (e *Explorer) renderPayload(rec vecdb.Record) {
	if text, ok := rec.Text(); ok {
		fmt.Fprintf(e.out, "%s %s\n",
			keyStyle.Render("text:"),
			textStyle.Render(utils.Truncate(text, maxTextRender)),
		)
	}

	if ref, ok := rec.Reference(); ok {
		fmt.Fprintf(e.out, "%s %s\n", keyStyle.Render("reference:"), ref)
	}

	if meta, ok := rec.Metadata(); ok {
		fmt.Fprintf(e.out, "%s\n", keyStyle.Render("metadata:"))
		keys := make([]string, 0, len(meta))
		for k := range meta {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(e.out, "  %s: %v\n", k, meta[k])
		}
	}
}

// renderVector prints the vector block: dimension, the first N elements, and
// the Euclidean norm.
func (e *Explorer) renderVector(rec vecdb.Record) {
	emb, ok := rec.Embedding()
	if !ok {
		return
	}

	preview := e.opts.VectorPreview
	if preview <= 0 {
		preview = 5
	}
	if preview > len(emb) {
		preview = len(emb)
	}

	fmt.Fprintf(e.out, "%s\n", keyStyle.Render(fmt.Sprintf("embedding (dim %d):", len(emb))))
	fmt.Fprintf(e.out, "  first %d: %v\n", preview, emb[:preview])
	fmt.Fprintf(e.out, "  norm: %.4f\n", utils.Norm(emb))
}
