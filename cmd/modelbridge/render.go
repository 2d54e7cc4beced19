package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// renderTable draws rows under headers. Columns listed in rightAligned
// (1-based) are right aligned; short rows are padded with blanks.
func renderTable(headers []string, rows [][]string, rightAligned ...int) string {
	if len(headers) == 0 {
		return ""
	}
	toRow := func(cells []string) table.Row {
		row := make(table.Row, len(headers))
		for i := range row {
			if i < len(cells) {
				row[i] = cells[i]
			}
		}
		return row
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(toRow(headers))
	for _, cells := range rows {
		tw.AppendRow(toRow(cells))
	}
	configs := make([]table.ColumnConfig, 0, len(rightAligned))
	for _, column := range rightAligned {
		configs = append(configs, table.ColumnConfig{Number: column, Align: text.AlignRight, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

// palette colours text only when the destination is a terminal.
type palette struct {
	enabled bool
}

func newPalette(w io.Writer) palette {
	return palette{enabled: shouldColorize(w)}
}

func (p palette) paint(s string, colors ...text.Color) string {
	if !p.enabled || len(colors) == 0 {
		return s
	}
	return text.Colors(colors).Sprint(s)
}

func shouldColorize(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

type checkState int

const (
	stateInfo checkState = iota
	stateOK
	stateWarn
	stateFail
)

var checkStateStyle = map[checkState]struct {
	label string
	color text.Color
}{
	stateInfo: {"INFO", text.FgBlue},
	stateOK:   {"OK", text.FgGreen},
	stateWarn: {"WARN", text.FgYellow},
	stateFail: {"ERROR", text.FgRed},
}

// statusLine renders "  Label:   [STATE] detail" with the label column padded.
func (p palette) statusLine(label string, state checkState, detail string) string {
	style := checkStateStyle[state]
	badge := "[" + style.label + "]"
	if detail != "" {
		badge += " " + detail
	}
	return p.paint(fmt.Sprintf("  %-24s %s", label+":", badge), style.color)
}

func (p palette) sectionHeader(title string) []string {
	heading := "== " + strings.TrimSpace(title) + " =="
	return []string{
		p.paint(heading, text.FgBlue),
		p.paint(strings.Repeat("-", len(heading)), text.FgBlue),
	}
}

// displayName turns a config identifier like "free_cad" into "Free Cad".
func displayName(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, "_", " "))
	if name == "" {
		return ""
	}
	return cases.Title(language.Und).String(name)
}
