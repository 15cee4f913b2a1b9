package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"trading-journal/internal/models"
	"trading-journal/pkg/utils"
)

var (
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
	cyan   = color.New(color.FgCyan)
	bold   = color.New(color.Bold)
	dim    = color.New(color.Faint)
)

// Output handles formatted output for the CLI.
type Output struct {
	writer       io.Writer
	jsonMode     bool
	colorEnabled bool
}

// NewOutput creates an Output writing to the command's stdout. Colour is
// used only for text output on a terminal.
func NewOutput(cmd *cobra.Command) *Output {
	jsonMode, _ := cmd.Flags().GetBool("json")
	return &Output{
		writer:       cmd.OutOrStdout(),
		jsonMode:     jsonMode,
		colorEnabled: !jsonMode && !color.NoColor,
	}
}

// DisableColor turns colour off regardless of the terminal.
func (o *Output) DisableColor() {
	o.colorEnabled = false
}

// IsJSON returns true if JSON output mode is enabled.
func (o *Output) IsJSON() bool {
	return o.jsonMode
}

// JSON writes data as indented JSON.
func (o *Output) JSON(data interface{}) error {
	encoder := json.NewEncoder(o.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// Println prints a message with newline.
func (o *Output) Println(args ...interface{}) {
	fmt.Fprintln(o.writer, args...)
}

// Printf prints a formatted message.
func (o *Output) Printf(format string, args ...interface{}) {
	fmt.Fprintf(o.writer, format, args...)
}

func (o *Output) line(c *color.Color, format string, args ...interface{}) {
	fmt.Fprintln(o.writer, o.paint(c, fmt.Sprintf(format, args...)))
}

func (o *Output) paint(c *color.Color, text string) string {
	if !o.colorEnabled {
		return text
	}
	return c.Sprint(text)
}

// Success prints a message in green.
func (o *Output) Success(format string, args ...interface{}) { o.line(green, format, args...) }

// Error prints a message in red.
func (o *Output) Error(format string, args ...interface{}) { o.line(red, format, args...) }

// Warning prints a message in yellow.
func (o *Output) Warning(format string, args ...interface{}) { o.line(yellow, format, args...) }

// Info prints a message in cyan.
func (o *Output) Info(format string, args ...interface{}) { o.line(cyan, format, args...) }

// Bold prints a bold message.
func (o *Output) Bold(format string, args ...interface{}) { o.line(bold, format, args...) }

// Dim prints a dimmed message.
func (o *Output) Dim(format string, args ...interface{}) { o.line(dim, format, args...) }

// signColor picks green for gains and red for losses.
func signColor(v float64) *color.Color {
	switch {
	case v > 0:
		return green
	case v < 0:
		return red
	}
	return dim
}

// PnL formats a P&L amount with colour; nil renders as a placeholder.
func (o *Output) PnL(pnl *float64) string {
	if pnl == nil {
		return utils.Placeholder
	}
	s := utils.FormatCurrency(*pnl)
	if *pnl > 0 {
		s = "+" + s
	}
	return o.paint(signColor(*pnl), s)
}

// R formats an R-multiple with colour.
func (o *Output) R(r *float64) string {
	if r == nil {
		return utils.Placeholder
	}
	return o.paint(signColor(*r), utils.FormatR(r))
}

// Outcome formats a trade outcome.
func (o *Output) Outcome(out *models.Outcome) string {
	if out == nil {
		return o.paint(dim, "Open")
	}
	switch *out {
	case models.Win:
		return o.paint(green, string(*out))
	case models.Loss:
		return o.paint(red, string(*out))
	}
	return o.paint(yellow, string(*out))
}

// Flag renders the review marker.
func (o *Output) Flag(flagged bool) string {
	if !flagged {
		return ""
	}
	return o.paint(yellow, "⚑")
}

// Table renders aligned columns.
type Table struct {
	headers []string
	rows    [][]string
	output  *Output
}

// NewTable creates a new table.
func NewTable(output *Output, headers ...string) *Table {
	return &Table{headers: headers, output: output}
}

// AddRow adds a row to the table.
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// Render writes the header, a separator and every row.
func (t *Table) Render() {
	if len(t.headers) == 0 {
		return
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = visibleWidth(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) && visibleWidth(cell) > widths[i] {
				widths[i] = visibleWidth(cell)
			}
		}
	}

	t.printRow(t.headers, widths, true)
	seps := make([]string, len(widths))
	for i, w := range widths {
		seps[i] = strings.Repeat("─", w)
	}
	t.output.Println(t.output.paint(dim, strings.Join(seps, "──")))
	for _, row := range t.rows {
		t.printRow(row, widths, false)
	}
}

func (t *Table) printRow(cells []string, widths []int, header bool) {
	parts := make([]string, 0, len(widths))
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		padded := cell + strings.Repeat(" ", w-visibleWidth(cell))
		if header {
			padded = t.output.paint(bold, padded)
		}
		parts = append(parts, padded)
	}
	t.output.Println(strings.TrimRight(strings.Join(parts, "  "), " "))
}

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

func visibleWidth(s string) int {
	return utf8.RuneCountInString(stripANSI(s))
}
