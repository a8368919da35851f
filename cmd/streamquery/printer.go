package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/streamquery"
	"github.com/fwojciec/streamquery/ansi"
	"github.com/fwojciec/streamquery/goldmark"
	sqjson "github.com/fwojciec/streamquery/json"
)

const (
	formatText = "text"
	formatJSON = "json"
)

// consistentScore is the factual consistency score from which an answer is
// shown as well supported.
const consistentScore = 0.5

// printer writes replayed events as they arrive and the folded answer once
// the stream ends.
type printer interface {
	Print(e streamquery.Event) error
	Finish(a streamquery.Answer) error
}

// jsonPrinter writes one JSON object per event.
type jsonPrinter struct {
	w io.Writer
}

func (p *jsonPrinter) Print(e streamquery.Event) error {
	data, err := sqjson.MarshalEvent(e)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = p.w.Write(data)
	return err
}

func (p *jsonPrinter) Finish(streamquery.Answer) error { return nil }

// textPrinter streams generated text as it arrives, or renders it as
// markdown at the end, followed by the cited sources. Server text is
// sanitized before it reaches the terminal.
type textPrinter struct {
	out    io.Writer
	errOut io.Writer
	theme  streamquery.Theme
	render bool
	width  int

	errStyle      lipgloss.Style
	mutedStyle    lipgloss.Style
	citationStyle lipgloss.Style
	goodStyle     lipgloss.Style
}

func newTextPrinter(out, errOut io.Writer, theme streamquery.Theme, render bool, width int) *textPrinter {
	return &textPrinter{
		out:           out,
		errOut:        errOut,
		theme:         theme,
		render:        render,
		width:         width,
		errStyle:      lipgloss.NewStyle().Foreground(ansiColor(theme.Error)).Bold(true),
		mutedStyle:    lipgloss.NewStyle().Foreground(ansiColor(theme.Muted)),
		citationStyle: lipgloss.NewStyle().Foreground(ansiColor(theme.Citation)).Bold(true),
		goodStyle:     lipgloss.NewStyle().Foreground(ansiColor(theme.Success)),
	}
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}

func (p *textPrinter) Print(e streamquery.Event) error {
	switch ev := e.(type) {
	case streamquery.EventGenerationChunk:
		if !p.render {
			_, err := io.WriteString(p.out, ansi.Sanitize(ev.Delta))
			return err
		}
	case streamquery.EventError:
		for _, msg := range ev.Messages {
			if _, err := fmt.Fprintln(p.errOut, p.errStyle.Render("error:"), ansi.Sanitize(msg)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *textPrinter) Finish(a streamquery.Answer) error {
	switch {
	case p.render && a.Text != "":
		if _, err := fmt.Fprintln(p.out, goldmark.Render(ansi.Sanitize(a.Text), p.width, p.theme)); err != nil {
			return err
		}
	case a.Text != "":
		if _, err := fmt.Fprintln(p.out); err != nil {
			return err
		}
	}

	if cited := p.sources(a); len(cited) > 0 {
		if _, err := fmt.Fprintln(p.out); err != nil {
			return err
		}
		for _, line := range cited {
			if _, err := fmt.Fprintln(p.out, line); err != nil {
				return err
			}
		}
	}

	if a.FactualConsistencyScore != nil {
		score := *a.FactualConsistencyScore
		style := p.errStyle
		if score >= consistentScore {
			style = p.goodStyle
		}
		_, err := fmt.Fprintf(p.out, "%s %s\n",
			p.mutedStyle.Render("factual consistency:"), style.Render(strconv.FormatFloat(score, 'f', 2, 64)))
		return err
	}
	return nil
}

// sources lists the search results cited in the answer in citation order.
// Citations without a matching result are skipped.
func (p *textPrinter) sources(a streamquery.Answer) []string {
	var lines []string
	for _, n := range a.Citations() {
		if n < 1 || n > len(a.SearchResults) {
			continue
		}
		r := a.SearchResults[n-1]
		label := p.citationStyle.Render("[" + strconv.Itoa(n) + "]")
		lines = append(lines, fmt.Sprintf("%s %s %s", label, ansi.Sanitize(sourceLabel(r)),
			p.mutedStyle.Render(strconv.FormatFloat(r.Score, 'f', 3, 64))))
	}
	return lines
}
