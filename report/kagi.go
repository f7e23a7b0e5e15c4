package report

import (
	"fmt"
	"math"
	"strings"

	"legichart/models"
)

// KagiRenderer draws each bucket's net change as a directional segment
// stacked on the running cumulative total: the column fills only the cell
// range between the previous and the new cumulative position, colored by
// the sign of the period's change.
type KagiRenderer struct {
	Cells int

	granularity models.Granularity
}

// NewKagiRenderer creates the cumulative/offset strategy with a 24-cell
// grid.
func NewKagiRenderer(granularity models.Granularity) *KagiRenderer {
	return &KagiRenderer{
		Cells:       24,
		granularity: granularity,
	}
}

// Render implements Renderer.
func (r *KagiRenderer) Render(buckets []models.Bucket, meta models.Metadata) string {
	if len(buckets) == 0 {
		return renderPage(placeholderChart, kagiCSS, buckets, meta, r.granularity)
	}
	chart := fmt.Sprintf(`<div class="chart-container"><div class="kagi-chart">%s</div></div>`, r.columns(buckets))
	return renderPage(chart, kagiCSS, buckets, meta, r.granularity)
}

func (r *KagiRenderer) columns(buckets []models.Bucket) string {
	lo, hi := CumulativeExtent(buckets)
	span := hi - lo
	if span == 0 {
		span = 1
	}

	// cellOf maps a cumulative level onto a grid row, bottom row 0.
	cellOf := func(v int) int {
		return int(math.Round(float64(v-lo) / float64(span) * float64(r.Cells-1)))
	}

	tickInterval := len(buckets) / 15
	if tickInterval < 1 {
		tickInterval = 1
	}

	var sb strings.Builder
	for i, bucket := range buckets {
		from := cellOf(bucket.CumulativeStart)
		to := cellOf(bucket.CumulativeEnd)

		// A non-zero change always occupies at least one cell.
		if from == to && bucket.Net != 0 {
			if bucket.Net > 0 && to < r.Cells-1 {
				to++
			} else if bucket.Net < 0 && to > 0 {
				to--
			}
		}

		low, high := from, to
		if low > high {
			low, high = high, low
		}

		sign := "pos"
		if bucket.Net < 0 {
			sign = "neg"
		}

		sb.WriteString(`<div class="col">`)
		sb.WriteString(`<div class="cells">`)
		for row := r.Cells - 1; row >= 0; row-- {
			if row >= low && row <= high && bucket.Net != 0 {
				fmt.Fprintf(&sb, `<span class="cell %s"></span>`, sign)
			} else {
				sb.WriteString(`<span class="cell"></span>`)
			}
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

const kagiCSS = `
.kagi-chart {
  display: flex;
  align-items: flex-end;
  overflow-x: auto;
  padding: 10px 0;
}

.col {
  position: relative;
  flex: 1;
  min-width: 8px;
  cursor: pointer;
}

.cells { display: flex; flex-direction: column; }

.cell {
  display: block;
  height: 8px;
  border-bottom: 1px solid var(--color-hover);
}

.cell.pos { background: var(--color-add); }
.cell.neg { background: var(--color-del); }

.col:hover .cell.pos { background: #1a7f37; }
.col:hover .cell.neg { background: #a40e26; }

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
