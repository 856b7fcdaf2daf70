// Package render turns the markdown answers of the assistant into styled terminal text.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

const (
	DefaultWidth = 80
	minWidth     = 10
	breakpoints  = " ,.;-+|"
)

// Theme holds the colours used by the renderer.
type Theme struct {
	Heading lipgloss.Color
	Text    lipgloss.Color
	Faint   lipgloss.Color
	Rule    lipgloss.Color
}

// DefaultTheme returns the theme used by the commands.
func DefaultTheme() Theme {
	return Theme{
		Heading: lipgloss.Color("214"),
		Text:    lipgloss.Color("252"),
		Faint:   lipgloss.Color("245"),
		Rule:    lipgloss.Color("238"),
	}
}

// Option configures a Renderer.
type Option func(r *Renderer)

// WithProfile forces the colour profile instead of detecting it from the output.
func WithProfile(profile termenv.Profile) Option {
	return func(r *Renderer) {
		r.lip.SetColorProfile(profile)
	}
}

// WithTheme overrides the default theme.
func WithTheme(theme Theme) Option {
	return func(r *Renderer) {
		r.theme = theme
	}
}

// WithWidth sets the wrap width.
func WithWidth(width int) Option {
	return func(r *Renderer) {
		r.width = width
	}
}

// Renderer renders markdown for a terminal. It is safe for concurrent use.
type Renderer struct {
	md    goldmark.Markdown
	lip   *lipgloss.Renderer
	theme Theme
	width int
}

// New creates a renderer for the terminal behind w.
func New(w io.Writer, opts ...Option) *Renderer {
	r := &Renderer{
		md:    goldmark.New(goldmark.WithExtensions(extension.Strikethrough)),
		lip:   lipgloss.NewRenderer(w),
		theme: DefaultTheme(),
		width: DefaultWidth,
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Render parses input as markdown and returns it styled and wrapped to the renderer width.
func (r *Renderer) Render(input string) string {
	if strings.TrimSpace(input) == "" {
		return ""
	}

	source := []byte(input)
	doc := r.md.Parser().Parse(text.NewReader(source))

	w := &walker{
		source:   source,
		r:        r,
		trailing: 2,
	}
	_ = ast.Walk(doc, w.walk)

	return strings.TrimRight(w.output.String(), "\n")
}

type listState struct {
	ordered bool
	counter int
	tight   bool
}

// walker holds the state of one rendering. Inline content is buffered and wrapped when its block closes.
type walker struct {
	source []byte
	r      *Renderer

	output   strings.Builder
	inline   strings.Builder
	trailing int

	prefixes      []string
	prefix        string
	pendingBullet string

	bold   int
	italic int
	strike int

	lists []listState
}

func (w *walker) style() lipgloss.Style {
	return w.r.lip.NewStyle()
}

func (w *walker) contentWidth() int {
	width := w.r.width - lipgloss.Width(w.prefix)
	if width < minWidth {
		width = minWidth
	}

	return width
}

func (w *walker) pushPrefix(p string) {
	w.prefixes = append(w.prefixes, p)
	w.prefix += p
}

func (w *walker) popPrefix() {
	if len(w.prefixes) == 0 {
		return
	}
	top := w.prefixes[len(w.prefixes)-1]
	w.prefixes = w.prefixes[:len(w.prefixes)-1]
	w.prefix = w.prefix[:len(w.prefix)-len(top)]
}

func (w *walker) tightList() bool {
	if len(w.lists) == 0 {
		return false
	}

	return w.lists[len(w.lists)-1].tight
}

func (w *walker) write(s string) {
	if s == "" {
		return
	}
	w.output.WriteString(s)

	trimmed := strings.TrimRight(s, "\n")
	newlines := len(s) - len(trimmed)
	if trimmed == "" {
		w.trailing += newlines
	} else {
		w.trailing = newlines
	}
}

func (w *walker) newline() {
	if w.trailing < 1 {
		w.write("\n")
	}
}

func (w *walker) blankLine() {
	for w.trailing < 2 {
		w.write("\n")
	}
}

func (w *walker) linePrefix() string {
	if w.pendingBullet != "" {
		bullet := w.pendingBullet
		w.pendingBullet = ""

		return bullet
	}

	return w.prefix
}

func (w *walker) withPrefixes(content string) string {
	lines := strings.Split(content, "\n")
	for i := range lines {
		if i == 0 {
			lines[i] = w.linePrefix() + lines[i]
		} else {
			lines[i] = w.prefix + lines[i]
		}
	}

	return strings.Join(lines, "\n")
}

func (w *walker) flush() string {
	content := w.inline.String()
	w.inline.Reset()
	if content == "" {
		return ""
	}

	return w.withPrefixes(ansi.Wrap(content, w.contentWidth(), breakpoints))
}

func (w *walker) styled(s string) string {
	st := w.style().Foreground(w.r.theme.Text)
	if w.bold > 0 {
		st = st.Bold(true)
	}
	if w.italic > 0 {
		st = st.Italic(true)
	}
	if w.strike > 0 {
		st = st.Strikethrough(true)
	}

	return st.Render(s)
}

func (w *walker) lines(node ast.Node) string {
	var buf strings.Builder
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(w.source))
	}

	return buf.String()
}

func (w *walker) walk(node ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node.Kind() {
	case ast.KindParagraph, ast.KindTextBlock:
		if entering {
			w.inline.Reset()
			break
		}
		out := w.flush()
		if out != "" {
			w.write(out)
			w.newline()
			if !w.tightList() {
				w.blankLine()
			}
		}

	case ast.KindHeading:
		if entering {
			w.inline.Reset()
			break
		}
		w.heading(node.(*ast.Heading))

	case ast.KindFencedCodeBlock, ast.KindCodeBlock:
		if entering {
			w.code(w.lines(node))
		}

		return ast.WalkSkipChildren, nil

	case ast.KindBlockquote:
		if entering {
			w.pushPrefix("│ ")
		} else {
			w.popPrefix()
			w.blankLine()
		}

	case ast.KindList:
		if entering {
			list := node.(*ast.List)
			w.lists = append(w.lists, listState{ordered: list.IsOrdered(), counter: list.Start, tight: list.IsTight})
			break
		}
		w.lists = w.lists[:len(w.lists)-1]
		if !w.tightList() {
			w.blankLine()
		}

	case ast.KindListItem:
		if entering {
			w.enterItem()
			break
		}
		w.popPrefix()
		if w.tightList() {
			w.newline()
		} else {
			w.blankLine()
		}

	case ast.KindThematicBreak:
		if entering {
			rule := w.style().Foreground(w.r.theme.Rule).Render(strings.Repeat("─", w.contentWidth()))
			w.blankLine()
			w.write(w.withPrefixes(rule))
			w.newline()
			w.blankLine()
		}

	case ast.KindHTMLBlock, ast.KindRawHTML:
		return ast.WalkSkipChildren, nil

	case ast.KindText:
		if entering {
			txt := node.(*ast.Text)
			w.inline.WriteString(w.styled(string(txt.Segment.Value(w.source))))
			if txt.SoftLineBreak() {
				w.inline.WriteString(" ")
			}
			if txt.HardLineBreak() {
				w.inline.WriteString("\n")
			}
		}

	case ast.KindString:
		if entering {
			w.inline.WriteString(w.styled(string(node.(*ast.String).Value)))
		}

	case ast.KindEmphasis:
		delta := 1
		if !entering {
			delta = -1
		}
		if node.(*ast.Emphasis).Level >= 2 {
			w.bold += delta
		} else {
			w.italic += delta
		}

	case extast.KindStrikethrough:
		if entering {
			w.strike++
		} else {
			w.strike--
		}

	case ast.KindCodeSpan:
		if entering {
			w.codeSpan(node)
		}

		return ast.WalkSkipChildren, nil

	case ast.KindLink:
		if !entering {
			dest := string(node.(*ast.Link).Destination)
			if dest != "" {
				w.inline.WriteString(" " + w.style().Foreground(w.r.theme.Faint).Render("("+dest+")"))
			}
		}

	case ast.KindAutoLink:
		if entering {
			link := node.(*ast.AutoLink)
			w.inline.WriteString(w.style().Foreground(w.r.theme.Faint).Underline(true).Render(string(link.URL(w.source))))
		}

		return ast.WalkSkipChildren, nil

	case ast.KindImage:
		if entering {
			w.inline.WriteString(w.style().Foreground(w.r.theme.Faint).Render("[image: " + string(node.(*ast.Image).Destination) + "]"))
		}

		return ast.WalkSkipChildren, nil
	}

	return ast.WalkContinue, nil
}

func (w *walker) heading(node *ast.Heading) {
	content := ansi.Strip(w.inline.String())
	w.inline.Reset()
	if content == "" {
		return
	}

	st := w.style().Bold(true).Foreground(w.r.theme.Text)
	if node.Level <= 2 {
		st = st.Foreground(w.r.theme.Heading)
	}

	w.blankLine()
	w.write(w.withPrefixes(ansi.Wrap(st.Render(content), w.contentWidth(), breakpoints)))
	w.newline()
	w.blankLine()
}

func (w *walker) code(code string) {
	faint := w.style().Foreground(w.r.theme.Faint)

	w.blankLine()
	for _, line := range strings.Split(strings.TrimRight(code, "\n"), "\n") {
		w.write(w.linePrefix() + "    " + faint.Render(line))
		w.newline()
	}
	w.blankLine()
}

func (w *walker) codeSpan(node ast.Node) {
	var code strings.Builder
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch c := child.(type) {
		case *ast.Text:
			code.Write(c.Segment.Value(w.source))
		case *ast.String:
			code.Write(c.Value)
		}
	}
	w.inline.WriteString(w.style().Foreground(w.r.theme.Faint).Render(code.String()))
}

func (w *walker) enterItem() {
	if len(w.lists) == 0 {
		return
	}
	top := &w.lists[len(w.lists)-1]

	bullet := "- "
	if top.ordered {
		bullet = fmt.Sprintf("%d. ", top.counter)
		top.counter++
	}

	w.pendingBullet = w.prefix + bullet
	w.pushPrefix(strings.Repeat(" ", len(bullet)))
}
