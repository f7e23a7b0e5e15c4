package report

import (
	"fmt"
	"html"
	"sort"
	"strconv"
	"strings"

	"legichart/models"
)

// tooltipCommitCap bounds the number of commits listed in a hover panel;
// the remainder is folded into an overflow counter.
const tooltipCommitCap = 8

// Renderer turns an ordered bucket sequence and the corpus metadata into a
// complete, self-contained HTML document. All strategies share this
// contract and degrade to a placeholder page when no buckets exist.
type Renderer interface {
	Render(buckets []models.Bucket, meta models.Metadata) string
}

// NewRenderer returns the renderer for the given strategy name.
func NewRenderer(strategy string, granularity models.Granularity) (Renderer, error) {
	switch strategy {
	case "svg":
		return NewSVGRenderer(granularity), nil
	case "blocks":
		return NewBlocksRenderer(granularity), nil
	case "kagi":
		return NewKagiRenderer(granularity), nil
	default:
		return nil, fmt.Errorf("unknown render strategy %q", strategy)
	}
}

var frenchMonths = [...]string{
	"", "janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

// bucketLabel formats the human-readable period name for a bucket.
func bucketLabel(b models.Bucket) string {
	if b.Month == 0 {
		return strconv.Itoa(b.Year)
	}
	return fmt.Sprintf("%s %d", frenchMonths[b.Month], b.Year)
}

// shortLabel formats the compact axis label for a bucket.
func shortLabel(b models.Bucket) string {
	if b.Month == 0 {
		return strconv.Itoa(b.Year)
	}
	return fmt.Sprintf("%02d/%d", b.Month, b.Year)
}

// formatNumber renders n with space-separated thousands groups.
func formatNumber(n int) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	s := strconv.Itoa(n)
	var groups []string
	for len(s) > 3 {
		groups = append([]string{s[len(s)-3:]}, groups...)
		s = s[:len(s)-3]
	}
	groups = append([]string{s}, groups...)
	return sign + strings.Join(groups, " ")
}

// signedNumber renders n with an explicit sign.
func signedNumber(n int) string {
	if n >= 0 {
		return "+" + formatNumber(n)
	}
	return formatNumber(n)
}

type rankedCommit struct {
	codeName string
	commit   models.Commit
}

// rankedCommits flattens a bucket's per-code commit lists and orders them
// descending by change volume.
func rankedCommits(b models.Bucket) []rankedCommit {
	var all []rankedCommit
	for _, code := range b.Codes {
		for _, commit := range code.Commits {
			all = append(all, rankedCommit{codeName: code.Name, commit: commit})
		}
	}
	sort.Slice(all, func(i, j int) bool {
		vi := all[i].commit.Additions + all[i].commit.Deletions
		vj := all[j].commit.Additions + all[j].commit.Deletions
		if vi != vj {
			return vi > vj
		}
		return all[i].commit.SHA < all[j].commit.SHA
	})
	return all
}

// tooltipHTML builds the hover detail panel for one bucket: period name,
// totals, net and the top contributing commits. All free text is escaped.
func tooltipHTML(b models.Bucket) string {
	var sb strings.Builder

	netClass := "net-positive"
	if b.Net < 0 {
		netClass = "net-negative"
	}

	sb.WriteString(`<div class="tooltip-content">`)
	fmt.Fprintf(&sb, `<div class="tooltip-title">%s</div>`, html.EscapeString(bucketLabel(b)))
	fmt.Fprintf(&sb, `<div class="tooltip-stats"><span class="stat-add">+%s</span><span class="stat-del">-%s</span></div>`,
		formatNumber(b.Additions), formatNumber(b.Deletions))
	fmt.Fprintf(&sb, `<div class="tooltip-net %s">Net: %s</div>`, netClass, signedNumber(b.Net))

	all := rankedCommits(b)
	if len(all) > 0 {
		sb.WriteString(`<div class="tooltip-commits">`)
		shown := all
		if len(shown) > tooltipCommitCap {
			shown = shown[:tooltipCommitCap]
		}
		for _, rc := range shown {
			fmt.Fprintf(&sb,
				`<div class="tooltip-commit"><a href="%s" target="_blank" rel="noopener" title="%s">%s</a><span class="commit-stats">+%d/-%d</span></div>`,
				html.EscapeString(rc.commit.URL),
				html.EscapeString(rc.commit.Message),
				html.EscapeString(rc.codeName),
				rc.commit.Additions,
				rc.commit.Deletions)
		}
		if len(all) > tooltipCommitCap {
			fmt.Fprintf(&sb, `<div class="tooltip-more">+%d autres commits</div>`, len(all)-tooltipCommitCap)
		}
		sb.WriteString(`</div>`)
	}

	sb.WriteString(`</div>`)
	return sb.String()
}

// pageTitle names the report page according to the bucket granularity.
func pageTitle(granularity models.Granularity) string {
	if granularity == models.ByYear {
		return "Évolution annuelle des codes législatifs français"
	}
	return "Évolution mensuelle des codes législatifs français"
}

// renderPage wraps a chart fragment in the full HTML document: header with
// legend, chart container, footer with corpus totals. extraCSS carries the
// strategy-specific styles.
func renderPage(chartHTML, extraCSS string, buckets []models.Bucket, meta models.Metadata, granularity models.Granularity) string {
	totalAdd, totalDel := 0, 0
	for _, b := range buckets {
		totalAdd += b.Additions
		totalDel += b.Deletions
	}

	title := pageTitle(granularity)

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html lang=\"fr\">\n<head>\n")
	sb.WriteString("<meta charset=\"UTF-8\">\n")
	sb.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	fmt.Fprintf(&sb, "<title>%s</title>\n", html.EscapeString(title))
	sb.WriteString("<meta name=\"description\" content=\"Histogramme de l'évolution des codes législatifs français\">\n")
	sb.WriteString("<style>\n")
	sb.WriteString(baseCSS)
	sb.WriteString(extraCSS)
	sb.WriteString("</style>\n</head>\n<body>\n")
	sb.WriteString(`<main class="container">` + "\n")

	fmt.Fprintf(&sb, `<header class="header"><h1 class="page-title">%s</h1>`, html.EscapeString(title))
	sb.WriteString(`<div class="legend">`)
	sb.WriteString(`<span class="legend-item"><span class="legend-color add"></span><span>Additions</span></span>`)
	sb.WriteString(`<span class="legend-item"><span class="legend-color del"></span><span>Délétions</span></span>`)
	sb.WriteString(`</div></header>` + "\n")

	sb.WriteString(chartHTML)
	sb.WriteString("\n")

	sb.WriteString(`<footer class="footer"><div class="footer-stats">`)
	fmt.Fprintf(&sb, `<span>Total: +%s / -%s lignes</span>`, formatNumber(totalAdd), formatNumber(totalDel))
	fmt.Fprintf(&sb, `<span>%d codes</span>`, meta.TotalCodes)
	fmt.Fprintf(&sb, `<span>%d commits</span>`, meta.TotalCommits)
	sb.WriteString(`<span>Données: <a href="https://git.tricoteuses.fr/codes" target="_blank">git.tricoteuses.fr</a></span>`)
	sb.WriteString(`</div></footer>` + "\n")

	sb.WriteString("</main>\n</body>\n</html>\n")
	return sb.String()
}

// placeholderChart is emitted by every strategy when the bucket sequence
// is empty.
const placeholderChart = `<div class="chart-container"><div class="empty">Aucune donnée disponible</div></div>`

const baseCSS = `
* { margin: 0; padding: 0; box-sizing: border-box; }

:root {
  --color-bg: #ffffff;
  --color-text: #24292f;
  --color-text-secondary: #57606a;
  --color-border: #d0d7de;
  --color-add: #2ea043;
  --color-del: #cf222e;
  --color-hover: #f6f8fa;
  --font-sans: -apple-system, BlinkMacSystemFont, "Segoe UI", Helvetica, Arial, sans-serif;
  --font-mono: ui-monospace, SFMono-Regular, "SF Mono", Menlo, Monaco, Consolas, monospace;
}

body {
  font-family: var(--font-sans);
  font-size: 14px;
  line-height: 1.5;
  color: var(--color-text);
  background: var(--color-bg);
}

.container { max-width: 1400px; margin: 0 auto; padding: 20px; }

.header {
  display: flex;
  justify-content: space-between;
  align-items: center;
  padding: 16px 20px;
  background: var(--color-hover);
  border: 1px solid var(--color-border);
  border-radius: 8px;
  margin-bottom: 20px;
  flex-wrap: wrap;
  gap: 16px;
}

.page-title { font-size: 18px; font-weight: 600; }

.legend { display: flex; gap: 20px; }

.legend-item {
  display: flex;
  align-items: center;
  gap: 6px;
  font-size: 13px;
  color: var(--color-text-secondary);
}

.legend-color {
  width: 16px;
  height: 16px;
  border-radius: 3px;
  border: 1px solid var(--color-border);
}

.legend-color.add { background: var(--color-add); }
.legend-color.del { background: var(--color-del); }

.chart-container {
  background: var(--color-bg);
  border: 1px solid var(--color-border);
  border-radius: 8px;
  padding: 20px;
}

.empty {
  text-align: center;
  padding: 60px 20px;
  color: var(--color-text-secondary);
  font-style: italic;
}

.tooltip-content {
  display: none;
  position: absolute;
  background: rgba(255, 255, 255, 0.98);
  border: 1px solid var(--color-border);
  border-radius: 6px;
  padding: 12px;
  box-shadow: 0 8px 24px rgba(0, 0, 0, 0.12);
  width: 280px;
  font-size: 12px;
  z-index: 10;
}

.tooltip-title {
  font-weight: 600;
  font-size: 14px;
  margin-bottom: 8px;
  text-transform: capitalize;
}

.tooltip-stats {
  display: flex;
  gap: 16px;
  margin-bottom: 6px;
  font-family: var(--font-mono);
  font-size: 13px;
}

.stat-add { color: var(--color-add); font-weight: 600; }
.stat-del { color: var(--color-del); font-weight: 600; }

.tooltip-net {
  font-family: var(--font-mono);
  font-size: 12px;
  color: var(--color-text-secondary);
  padding-bottom: 8px;
  border-bottom: 1px solid var(--color-border);
  margin-bottom: 8px;
}

.net-positive { color: var(--color-add); }
.net-negative { color: var(--color-del); }

.tooltip-commits { display: flex; flex-direction: column; gap: 4px; }

.tooltip-commit {
  display: flex;
  justify-content: space-between;
  align-items: center;
  gap: 8px;
  font-size: 11px;
}

.tooltip-commit a {
  flex: 1;
  white-space: nowrap;
  overflow: hidden;
  text-overflow: ellipsis;
  color: #0969da;
  text-decoration: none;
}

.tooltip-commit a:hover { text-decoration: underline; }

.commit-stats {
  font-family: var(--font-mono);
  color: var(--color-text-secondary);
  font-size: 10px;
  white-space: nowrap;
}

.tooltip-more {
  font-size: 11px;
  color: var(--color-text-secondary);
  font-style: italic;
  margin-top: 4px;
}

.footer {
  margin-top: 20px;
  padding: 12px 16px;
  background: var(--color-hover);
  border: 1px solid var(--color-border);
  border-radius: 8px;
  font-size: 12px;
  color: var(--color-text-secondary);
}

.footer-stats { display: flex; gap: 20px; flex-wrap: wrap; }

@media (max-width: 768px) {
  .container { padding: 10px; }
  .header { flex-direction: column; align-items: flex-start; }
  .page-title { font-size: 16px; }
}
`
