package goldmark

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/streamquery"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// minWrap keeps deeply nested blocks readable on narrow terminals.
const minWrap = 10

var citationPattern = regexp.MustCompile(`\[\d+\]`)

type renderer struct {
	width int
	src   []byte
	out   strings.Builder

	bold      lipgloss.Style
	italic    lipgloss.Style
	heading   lipgloss.Style
	muted     lipgloss.Style
	link      lipgloss.Style
	code      lipgloss.Style
	citation  lipgloss.Style
}

func newRenderer(theme streamquery.Theme, width int) *renderer {
	return &renderer{
		width:     width,
		bold:      lipgloss.NewStyle().Bold(true),
		italic:    lipgloss.NewStyle().Italic(true),
		heading:   lipgloss.NewStyle().Foreground(color(theme.Accent)).Bold(true),
		muted:     lipgloss.NewStyle().Foreground(color(theme.Muted)).Faint(true),
		link:      lipgloss.NewStyle().Underline(true),
		code:      lipgloss.NewStyle().Foreground(color(theme.Success)).Background(color(theme.CodeBg)),
		citation:  lipgloss.NewStyle().Foreground(color(theme.Citation)).Bold(true),
	}
}

func color(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}

func (r *renderer) render(src []byte) string {
	r.src = src
	doc := goldmark.DefaultParser().Parse(text.NewReader(src))
	r.children(doc, 0)
	return strings.TrimRight(r.out.String(), "\n")
}

func (r *renderer) children(n ast.Node, indent int) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		r.block(c, indent)
		if c.NextSibling() != nil {
			r.out.WriteString("\n")
		}
	}
}

func (r *renderer) block(n ast.Node, indent int) {
	pad := strings.Repeat(" ", indent)
	switch n := n.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		r.wrapped(pad, pad, r.inline(n), r.width-indent)
	case *ast.Heading:
		r.wrapped(pad, pad, r.heading.Render(r.inline(n)), r.width-indent)
	case *ast.FencedCodeBlock:
		if lang := string(n.Language(r.src)); lang != "" {
			r.out.WriteString(pad + r.muted.Render(lang) + "\n")
		}
		r.codeLines(n, pad)
	case *ast.CodeBlock:
		r.codeLines(n, pad)
	case *ast.Blockquote:
		quote := r.nested(r.width - 2)
		quote.children(n, 0)
		body := strings.TrimRight(quote.out.String(), "\n")
		bar := r.muted.Render("│") + " "
		for _, line := range strings.Split(body, "\n") {
			r.out.WriteString(pad + bar + r.muted.Render(line) + "\n")
		}
	case *ast.List:
		r.list(n, indent)
	case *ast.ThematicBreak:
		r.out.WriteString(pad + r.muted.Render(strings.Repeat("─", max(r.width-indent, 3))) + "\n")
	case *ast.HTMLBlock:
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			r.out.WriteString(pad + strings.TrimRight(string(seg.Value(r.src)), "\n") + "\n")
		}
	default:
		r.children(n, indent)
	}
}

// nested returns a renderer sharing r's styles and source that writes to its
// own output.
func (r *renderer) nested(width int) *renderer {
	child := *r
	child.out = strings.Builder{}
	child.width = max(width, minWrap)
	return &child
}

func (r *renderer) codeLines(n ast.Node, pad string) {
	gutter := pad + r.muted.Render("│") + " "
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		line := strings.TrimRight(string(seg.Value(r.src)), "\n")
		r.out.WriteString(gutter + r.code.Render(line) + "\n")
	}
}

func (r *renderer) list(n *ast.List, indent int) {
	num := n.Start
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		item, ok := c.(*ast.ListItem)
		if !ok {
			continue
		}
		marker := "- "
		if n.IsOrdered() {
			marker = fmt.Sprintf("%d. ", num)
			num++
		}
		first := strings.Repeat(" ", indent) + marker
		rest := strings.Repeat(" ", len(first))
		for ic := item.FirstChild(); ic != nil; ic = ic.NextSibling() {
			switch in := ic.(type) {
			case *ast.Paragraph, *ast.TextBlock:
				r.wrapped(first, rest, r.inline(in), r.width-len(first))
			case *ast.List:
				r.list(in, len(rest))
			default:
				r.block(in, len(rest))
			}
			first = rest
		}
	}
}

// wrapped writes content word-wrapped to width, prefixing the first line
// with first and every following line with rest.
func (r *renderer) wrapped(first, rest, content string, width int) {
	body := lipgloss.NewStyle().Width(max(width, minWrap)).Render(content)
	for i, line := range strings.Split(body, "\n") {
		prefix := rest
		if i == 0 {
			prefix = first
		}
		r.out.WriteString(prefix + strings.TrimRight(line, " ") + "\n")
	}
}

// inline renders the inline children of a block and highlights [n] markers.
// Markers are matched on the joined output because goldmark may split one
// across several text nodes.
func (r *renderer) inline(n ast.Node) string {
	return citationPattern.ReplaceAllStringFunc(r.spans(n), func(m string) string {
		return r.citation.Render(m)
	})
}

func (r *renderer) spans(n ast.Node) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		r.span(c, &b)
	}
	return b.String()
}

func (r *renderer) span(n ast.Node, b *strings.Builder) {
	switch n := n.(type) {
	case *ast.Text:
		b.Write(n.Segment.Value(r.src))
		switch {
		case n.HardLineBreak():
			b.WriteByte('\n')
		case n.SoftLineBreak():
			b.WriteByte(' ')
		}
	case *ast.String:
		b.Write(n.Value)
	case *ast.Emphasis:
		inner := r.spans(n)
		if n.Level == 1 {
			b.WriteString(r.italic.Render(inner))
		} else {
			b.WriteString(r.bold.Render(inner))
		}
	case *ast.CodeSpan:
		var code strings.Builder
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			if t, ok := c.(*ast.Text); ok {
				code.Write(t.Segment.Value(r.src))
			}
		}
		b.WriteString(r.code.Render(code.String()))
	case *ast.Link:
		b.WriteString(r.link.Render(r.spans(n)))
		b.WriteString(" " + r.muted.Render("("+string(n.Destination)+")"))
	case *ast.Image:
		b.WriteString(r.link.Render(r.spans(n)))
		b.WriteString(" " + r.muted.Render("("+string(n.Destination)+")"))
	case *ast.AutoLink:
		b.WriteString(r.link.Render(string(n.URL(r.src))))
	case *ast.RawHTML:
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			b.Write(seg.Value(r.src))
		}
	default:
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			r.span(c, b)
		}
	}
}
