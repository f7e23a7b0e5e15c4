package report

import (
	"fmt"
	"math"
	"strings"

	"legichart/models"
)

// lowerEighths holds the fractional glyphs for the topmost partial cell,
// from one eighth to seven eighths.
var lowerEighths = []rune("▁▂▃▄▅▆▇")

// BlocksRenderer approximates bar heights with Unicode block glyphs in a
// monospace grid. The deletion column reuses the same lower-eighth glyphs
// and is mirrored with a CSS transform so partial cells read downward.
type BlocksRenderer struct {
	HalfCells int

	granularity models.Granularity
}

// NewBlocksRenderer creates the text-block strategy with twelve cells per
// half-axis.
func NewBlocksRenderer(granularity models.Granularity) *BlocksRenderer {
	return &BlocksRenderer{
		HalfCells:   12,
		granularity: granularity,
	}
}

// Render implements Renderer.
func (r *BlocksRenderer) Render(buckets []models.Bucket, meta models.Metadata) string {
	if len(buckets) == 0 {
		return renderPage(placeholderChart, blocksCSS, buckets, meta, r.granularity)
	}
	chart := fmt.Sprintf(`<div class="chart-container"><div class="blocks-chart" style="--half-cells: %dem">%s</div></div>`,
		r.HalfCells, r.columns(buckets))
	return renderPage(chart, blocksCSS, buckets, meta, r.granularity)
}

func (r *BlocksRenderer) columns(buckets []models.Bucket) string {
	maxValue := SymmetricScale(buckets)
	span := float64(r.HalfCells)

	tickInterval := len(buckets) / 15
	if tickInterval < 1 {
		tickInterval = 1
	}

	var sb strings.Builder
	for i, bucket := range buckets {
		up := glyphColumn(BarLength(bucket.Additions, maxValue, span))
		down := glyphColumn(BarLength(bucket.Deletions, maxValue, span))

		sb.WriteString(`<div class="col">`)

		sb.WriteString(`<div class="up">`)
		for _, glyph := range up {
			sb.WriteString("<span>" + glyph + "</span>")
		}
		sb.WriteString(`</div>`)

		sb.WriteString(`<div class="down">`)
		for _, glyph := range down {
			sb.WriteString("<span>" + glyph + "</span>")
		}
		sb.WriteString(`</div>`)

		label := ""
		if i%tickInterval == 0 {
			label = shortLabel(bucket)
		}
		fmt.Fprintf(&sb, `<div class="col-label">%s</div>`, label)

		sb.WriteString(tooltipHTML(bucket))
		sb.WriteString(`</div>`)
	}
	return sb.String()
}

// glyphColumn converts a bar length in cells into glyphs ordered from the
// tip of the bar toward the baseline: an optional fractional glyph first,
// then full blocks.
func glyphColumn(cells float64) []string {
	full := int(cells)
	eighth := int(math.Round((cells - float64(full)) * 8))
	if eighth == 8 {
		full++
		eighth = 0
	}

	var col []string
	if eighth > 0 {
		col = append(col, string(lowerEighths[eighth-1]))
	}
	for i := 0; i < full; i++ {
		col = append(col, "█")
	}
	return col
}

const blocksCSS = `
.blocks-chart {
  display: flex;
  align-items: center;
  font-family: var(--font-mono);
  font-size: 10px;
  overflow-x: auto;
  padding: 10px 0;
}

.col {
  position: relative;
  flex: 1;
  min-width: 10px;
  text-align: center;
  cursor: pointer;
}

.col span { display: block; line-height: 1; }

.col .up,
.col .down {
  height: var(--half-cells);
  display: flex;
  flex-direction: column;
  justify-content: flex-end;
}

.col .up { color: var(--color-add); border-bottom: 1px solid var(--color-border); }

.col .down {
  color: var(--color-del);
  transform: scaleY(-1);
}

.col:hover .up { color: #1a7f37; }
.col:hover .down { color: #a40e26; }

.col-label {
  height: 40px;
  font-size: 9px;
  color: var(--color-text-secondary);
  transform: rotate(-45deg) translateY(14px);
  white-space: nowrap;
}

.col .tooltip-content { left: 50%; top: 100%; }
.col:hover .tooltip-content { display: block; }
`
