package report

import (
	"fmt"
	"html"
	"strings"

	"legichart/models"
)

// SVGRenderer draws a mirrored bar chart: additions grow upward from a
// shared zero baseline, deletions downward, one bar group per bucket with
// an embedded hover panel.
type SVGRenderer struct {
	Width  int
	Height int

	granularity models.Granularity
}

// NewSVGRenderer creates the vector-chart strategy with the default
// viewport.
func NewSVGRenderer(granularity models.Granularity) *SVGRenderer {
	return &SVGRenderer{
		Width:       1200,
		Height:      400,
		granularity: granularity,
	}
}

// Render implements Renderer.
func (r *SVGRenderer) Render(buckets []models.Bucket, meta models.Metadata) string {
	if len(buckets) == 0 {
		return renderPage(placeholderChart, svgCSS, buckets, meta, r.granularity)
	}
	chart := `<div class="chart-container">` + r.chart(buckets) + `</div>`
	return renderPage(chart, svgCSS, buckets, meta, r.granularity)
}

func (r *SVGRenderer) chart(buckets []models.Bucket) string {
	const (
		marginTop    = 20.0
		marginRight  = 30.0
		marginBottom = 60.0
		marginLeft   = 80.0
	)

	width := float64(r.Width)
	height := float64(r.Height)
	innerWidth := width - marginLeft - marginRight
	innerHeight := height - marginTop - marginBottom
	halfSpan := innerHeight / 2

	maxValue := SymmetricScale(buckets)

	n := len(buckets)
	barWidth := innerWidth / float64(n) * 0.9
	barGap := innerWidth / float64(n) * 0.1

	xPos := func(i int) float64 {
		return marginLeft + float64(i)*(barWidth+barGap)
	}
	yPos := func(value float64) float64 {
		mid := marginTop + halfSpan
		return mid - value/float64(maxValue)*halfSpan
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg class="chart-svg" viewBox="0 0 %d %d" preserveAspectRatio="xMidYMid meet">`+"\n", r.Width, r.Height)

	baselineY := yPos(0)
	fmt.Fprintf(&sb, `<line class="baseline" x1="%.1f" x2="%.1f" y1="%.1f" y2="%.1f"/>`+"\n",
		marginLeft, width-marginRight, baselineY, baselineY)

	// Gridlines and y labels, mirrored around the baseline
	for i := 0; i < 5; i++ {
		value := maxValue * (i + 1) / 5
		yUp := yPos(float64(value))
		yDown := yPos(-float64(value))

		fmt.Fprintf(&sb, `<line class="grid-line" x1="%.1f" x2="%.1f" y1="%.1f" y2="%.1f"/>`+"\n",
			marginLeft, width-marginRight, yUp, yUp)
		fmt.Fprintf(&sb, `<line class="grid-line" x1="%.1f" x2="%.1f" y1="%.1f" y2="%.1f"/>`+"\n",
			marginLeft, width-marginRight, yDown, yDown)

		label := formatNumber(value)
		fmt.Fprintf(&sb, `<text class="y-label" x="%.1f" y="%.1f">%s</text>`+"\n", marginLeft-10, yUp+4, label)
		fmt.Fprintf(&sb, `<text class="y-label" x="%.1f" y="%.1f">%s</text>`+"\n", marginLeft-10, yDown+4, label)
	}

	fmt.Fprintf(&sb, `<text class="axis-title" transform="rotate(-90)" x="%.1f" y="20">Lignes modifiées</text>`+"\n", -height/2)

	for i, bucket := range buckets {
		x := xPos(i)

		addHeight := BarLength(bucket.Additions, maxValue, halfSpan)
		delHeight := BarLength(bucket.Deletions, maxValue, halfSpan)

		fmt.Fprintf(&sb, `<g class="bar-group" data-bucket="%s">`+"\n", html.EscapeString(bucket.Key))
		fmt.Fprintf(&sb, `<rect class="hit-area" x="%.1f" y="%.1f" width="%.1f" height="%.1f"/>`+"\n",
			x, marginTop, barWidth, innerHeight)

		if bucket.Additions > 0 {
			fmt.Fprintf(&sb, `<rect class="bar bar-add" x="%.1f" y="%.1f" width="%.1f" height="%.1f"/>`+"\n",
				x, baselineY-addHeight, barWidth, addHeight)
		}
		if bucket.Deletions > 0 {
			fmt.Fprintf(&sb, `<rect class="bar bar-del" x="%.1f" y="%.1f" width="%.1f" height="%.1f"/>`+"\n",
				x, baselineY, barWidth, delHeight)
		}

		fmt.Fprintf(&sb, `<foreignObject class="tooltip-container" x="%.1f" y="0" width="320" height="%d">%s</foreignObject>`+"\n",
			x, r.Height, tooltipHTML(bucket))
		sb.WriteString("</g>\n")
	}

	// X axis tick labels, thinned to at most 15
	tickInterval := n / 15
	if tickInterval < 1 {
		tickInterval = 1
	}
	for i, bucket := range buckets {
		if i%tickInterval != 0 {
			continue
		}
		x := xPos(i) + barWidth/2
		y := height - marginBottom + 20
		fmt.Fprintf(&sb, `<text class="x-label" x="%.1f" y="%.1f" transform="rotate(-45 %.1f %.1f)">%s</text>`+"\n",
			x, y, x, y, shortLabel(bucket))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

const svgCSS = `
.chart-svg { width: 100%; display: block; }

.baseline { stroke: var(--color-border); stroke-width: 1; }

.grid-line {
  stroke: var(--color-border);
  stroke-width: 0.5;
  stroke-dasharray: 4 4;
  opacity: 0.5;
}

.y-label { font-size: 10px; fill: var(--color-text-secondary); text-anchor: end; }
.x-label { font-size: 10px; fill: var(--color-text-secondary); text-anchor: end; }
.axis-title { font-size: 12px; fill: var(--color-text-secondary); text-anchor: middle; }

.bar-add { fill: var(--color-add); fill-opacity: 0.7; }
.bar-del { fill: var(--color-del); fill-opacity: 0.7; }

.hit-area { fill: transparent; cursor: pointer; }

.bar-group:hover .bar-add { fill-opacity: 1; }
.bar-group:hover .bar-del { fill-opacity: 1; }

.tooltip-container { pointer-events: none; overflow: visible; }

.tooltip-container .tooltip-content {
  left: 100%;
  top: 50px;
  margin-left: 10px;
  pointer-events: auto;
}

.bar-group:hover .tooltip-content { display: block; }
`
