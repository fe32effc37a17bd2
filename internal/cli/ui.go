// Copyright (c) 2026 John Dewey

// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to
// deal in the Software without restriction, including without limitation the
// rights to use, copy, modify, merge, publish, distribute, sublicense, and/or
// sell copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:

// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.

// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING
// FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER
// DEALINGS IN THE SOFTWARE.

package cli

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/retr0h/gatekeeper/internal/audit"
)

// Theme colors for terminal UI rendering.
var (
	Purple = lipgloss.Color("99")
	Gray   = lipgloss.Color("245")
	White  = lipgloss.Color("15")
	Teal   = lipgloss.Color("#06ffa5")
	Red    = lipgloss.Color("#ff5f87")
)

var (
	labelStyle = lipgloss.NewStyle().Bold(true).Foreground(Purple)
	valueStyle = lipgloss.NewStyle().Foreground(Teal)

	// DimStyle is a muted style for secondary text.
	DimStyle = lipgloss.NewStyle().Foreground(Gray)
)

// Section represents a header with its corresponding rows.
type Section struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// compactMaxColWidth is the maximum column width before truncation.
const compactMaxColWidth = 50

// PrintCompactTable renders a column-aligned table per section. Headers are
// uppercase purple and rows alternate teal and white. Multi-line cells are
// flattened and long cells are truncated with an ellipsis.
func PrintCompactTable(
	sections []Section,
) {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(Purple)
	evenStyle := lipgloss.NewStyle().Foreground(Teal)
	oddStyle := lipgloss.NewStyle().Foreground(White)

	const colGap = 2

	for _, section := range sections {
		if section.Title != "" {
			fmt.Printf("\n  %s:\n", headerStyle.Render(section.Title))
		} else {
			fmt.Println()
		}

		rows := make([][]string, len(section.Rows))
		for r, row := range section.Rows {
			flat := make([]string, len(row))
			for c, cell := range row {
				flat[c] = strings.Join(strings.Fields(cell), " ")
			}
			rows[r] = flat
		}

		widths := columnWidths(section.Headers, rows)

		var hdr strings.Builder
		hdr.WriteString("  ")
		for i, h := range section.Headers {
			cell := strings.ToUpper(h)
			if i < len(section.Headers)-1 {
				cell = fmt.Sprintf("%-*s", widths[i]+colGap, cell)
			}
			hdr.WriteString(headerStyle.Render(cell))
		}
		fmt.Println(hdr.String())

		for r, row := range rows {
			style := evenStyle
			if r%2 != 0 {
				style = oddStyle
			}

			var line strings.Builder
			line.WriteString("  ")
			for i := range section.Headers {
				cell := ""
				if i < len(row) {
					cell = row[i]
				}
				if len(cell) > widths[i] {
					cell = cell[:widths[i]-1] + "…"
				}
				if i < len(section.Headers)-1 {
					cell = fmt.Sprintf("%-*s", widths[i]+colGap, cell)
				}
				line.WriteString(style.Render(cell))
			}
			fmt.Println(line.String())
		}
	}
}

// columnWidths sizes each column to its widest cell, capped at
// compactMaxColWidth.
func columnWidths(
	headers []string,
	rows [][]string,
) []int {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}
	for i := range widths {
		widths[i] = min(widths[i], compactMaxColWidth)
	}

	return widths
}

// KVMinColWidth is the minimum visual width for each key-value column so
// consecutive PrintKV calls line up.
const KVMinColWidth = 20

// PrintKV prints alternating label, value arguments on one indented line.
func PrintKV(
	pairs ...string,
) {
	if len(pairs)%2 != 0 || len(pairs) == 0 {
		return
	}

	rendered := make([]string, 0, len(pairs)/2)
	maxWidth := KVMinColWidth
	for i := 0; i < len(pairs); i += 2 {
		pair := labelStyle.Render(pairs[i]+":") + " " + valueStyle.Render(pairs[i+1])
		rendered = append(rendered, pair)
		if w := lipgloss.Width(pair); w > maxWidth {
			maxWidth = w
		}
	}

	var line strings.Builder
	line.WriteString("  ")
	for i, pair := range rendered {
		line.WriteString(pair)
		if i < len(rendered)-1 {
			line.WriteString(strings.Repeat(" ", maxWidth-lipgloss.Width(pair)+4))
		}
	}
	fmt.Println(line.String())
}

// FormatAge formats a duration as "3d 4h", "12h 30m", "45m" or "30s".
func FormatAge(
	d time.Duration,
) string {
	if d <= 0 {
		return ""
	}

	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case minutes > 0:
		return fmt.Sprintf("%dm", minutes)
	default:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
}

// FormatBytes formats a byte count as "5.2 KB", "1.0 MB" and so on.
func FormatBytes(
	b int64,
) string {
	const (
		kb = 1024
		mb = kb * 1024
		gb = mb * 1024
	)

	switch {
	case b >= gb:
		return fmt.Sprintf("%.1f GB", float64(b)/float64(gb))
	case b >= mb:
		return fmt.Sprintf("%.1f MB", float64(b)/float64(mb))
	case b >= kb:
		return fmt.Sprintf("%.1f KB", float64(b)/float64(kb))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

// FormatMetadata renders a map as sorted key=value pairs.
func FormatMetadata(
	m map[string]any,
) string {
	if len(m) == 0 {
		return ""
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, m[k]))
	}

	return strings.Join(parts, ", ")
}

// AuditSection builds the table section for a page of audit events. Ages
// are computed relative to now.
func AuditSection(
	events []audit.Event,
	now time.Time,
) Section {
	rows := make([][]string, 0, len(events))
	for _, e := range events {
		rows = append(rows, []string{
			e.ID,
			string(e.EventType),
			string(e.Severity),
			e.IPAddress,
			e.ResourceID,
			fmt.Sprintf("%t", e.Success),
			FormatAge(now.Sub(e.Timestamp)),
			FormatMetadata(e.Metadata),
		})
	}

	return Section{
		Headers: []string{"id", "type", "severity", "ip", "resource", "success", "age", "metadata"},
		Rows:    rows,
	}
}

// CountSection builds a two-column section from a count map, largest first
// and ties broken by key.
func CountSection[K ~string](
	title string,
	counts map[K]int,
) Section {
	keys := make([]K, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})

	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []string{string(k), fmt.Sprintf("%d", counts[k])})
	}

	return Section{
		Title:   title,
		Headers: []string{"name", "count"},
		Rows:    rows,
	}
}

// HandleErrorResponse logs a non-success API response.
func HandleErrorResponse(
	logger *slog.Logger,
	statusCode int,
	message string,
) {
	if message == "" {
		message = "unknown error"
	}

	msg := "error in response"
	if statusCode == 401 || statusCode == 403 {
		msg = "authorization error"
	}

	logger.Error(
		msg,
		slog.Int("code", statusCode),
		slog.String("error", message),
	)
}
