package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/streamquery"
	"github.com/fwojciec/streamquery/ansi"
	"github.com/fwojciec/streamquery/fs"
	sqjson "github.com/fwojciec/streamquery/json"
	"github.com/fwojciec/streamquery/vectara"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
)

const (
	resultIndent = "    "
	ellipsis     = "…"
)

type resultsOptions struct {
	format string
	width  int
}

func (a *app) resultsCmd() *cobra.Command {
	var opts resultsOptions
	cmd := &cobra.Command{
		Use:   "results [flags] <response|glob|->...",
		Short: "Print the hits of saved search responses",
		Long: `Results deserializes saved query responses and prints every hit with its
document title, location and snippet. Snippets are truncated to --width
terminal cells.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("format") {
				opts.format = a.cfg.Format
			}
			if !cmd.Flags().Changed("width") {
				opts.width = a.cfg.Width
			}
			if err := validateFormat(opts.format); err != nil {
				return err
			}
			if len(args) == 0 {
				args = []string{fs.Stdin}
			}
			inputs, err := fs.Expand(args)
			if err != nil {
				return err
			}
			for _, in := range inputs {
				results, err := a.loadResults(in)
				if err != nil {
					return fmt.Errorf("results %s: %w", in, err)
				}
				if err := a.printResults(results, opts); err != nil {
					return err
				}
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.format, "format", formatText, "Output format: text or json")
	flags.IntVar(&opts.width, "width", 80, "Terminal width snippets are truncated to")
	return cmd
}

func (a *app) loadResults(name string) ([]streamquery.Result, error) {
	r, err := fs.Open(name, a.stdin)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	resp, err := vectara.UnmarshalSearchResponse(data)
	if err != nil {
		return nil, err
	}
	return vectara.DeserializeSearchResponse(resp)
}

func (a *app) printResults(results []streamquery.Result, opts resultsOptions) error {
	if opts.format == formatJSON {
		data, err := sqjson.MarshalResults(results)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(a.stdout, "%s\n", data)
		return err
	}

	var (
		index = lipgloss.NewStyle().Foreground(ansiColor(a.theme.Citation)).Bold(true)
		title = lipgloss.NewStyle().Foreground(ansiColor(a.theme.Accent)).Bold(true)
		muted = lipgloss.NewStyle().Foreground(ansiColor(a.theme.Muted))
		match = lipgloss.NewStyle().Bold(true)
	)
	for i, r := range results {
		header := index.Render("["+strconv.Itoa(i+1)+"]") + " " + title.Render(ansi.Sanitize(r.Title))
		if _, err := fmt.Fprintln(a.stdout, header); err != nil {
			return err
		}
		if loc := ansi.Sanitize(location(r)); loc != "" {
			if _, err := fmt.Fprintln(a.stdout, resultIndent+muted.Render(loc)); err != nil {
				return err
			}
		}
		snippet := streamquery.Snippet{
			Pre:  ansi.Sanitize(r.Snippet.Pre),
			Text: ansi.Sanitize(r.Snippet.Text),
			Post: ansi.Sanitize(r.Snippet.Post),
		}
		pre, text, post := fitSnippet(snippet, opts.width-len(resultIndent))
		line := resultIndent + muted.Render(pre) + match.Render(text) + muted.Render(post)
		if _, err := fmt.Fprintln(a.stdout, line); err != nil {
			return err
		}
	}
	return nil
}

// location returns the most specific pointer to the document: its URL, its
// source, or its ID.
func location(r streamquery.Result) string {
	switch {
	case r.URL != "":
		return r.URL
	case r.Source != "":
		return r.Source
	default:
		return r.ID
	}
}

// fitSnippet truncates a snippet to width terminal cells. The matched text
// is kept in preference to the leading context, which collapses to an
// ellipsis when both do not fit.
func fitSnippet(s streamquery.Snippet, width int) (pre, text, post string) {
	width = max(width, 1)
	pre = s.Pre
	if runewidth.StringWidth(pre)+runewidth.StringWidth(s.Text) > width && pre != "" {
		pre = ellipsis
	}
	remaining := width - runewidth.StringWidth(pre)
	if remaining <= 0 {
		return runewidth.Truncate(s.Pre, width, ellipsis), "", ""
	}

	text = runewidth.Truncate(s.Text, remaining, ellipsis)
	if text != s.Text {
		return pre, text, ""
	}
	remaining -= runewidth.StringWidth(text)
	return pre, text, runewidth.Truncate(s.Post, remaining, ellipsis)
}
