// Package report writes a shareable summary of a call graph as markdown or
// as a standalone HTML page.
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/ziadkadry99/callscope/internal/diagrams"
	"github.com/ziadkadry99/callscope/internal/graph"
)

// Options control report content. Zero values fall back to the view defaults.
type Options struct {
	TopK      int
	Depth     int
	Delimiter string
}

func (o Options) withDefaults() Options {
	if o.TopK <= 0 {
		o.TopK = graph.HeatmapSize
	}
	if o.Depth <= 0 {
		o.Depth = graph.DefaultCallTreeDepth
	}
	o.Depth = min(o.Depth, graph.MaxCallTreeDepth)
	if o.Delimiter == "" {
		o.Delimiter = graph.DefaultDelimiter
	}
	return o
}

// Markdown renders the report for g, loaded from source.
func Markdown(source string, g *graph.Graph, opts Options) string {
	opts = opts.withDefaults()
	degrees := g.Degrees()
	root := graph.BuildNamespaceTree(g.IDs(), degrees.Totals(), opts.Delimiter)
	root.SortByValue()

	var b strings.Builder
	fmt.Fprintf(&b, "# Call graph report: %s\n\n", source)
	fmt.Fprintf(&b, "**%d functions**, **%d calls**, %d top-level namespaces.\n\n",
		g.Stats().Nodes, degrees.TotalCalls(), len(root.Children))

	ranked := graph.TopK(degrees, opts.TopK)
	b.WriteString("## Most connected functions\n\n")
	if len(ranked) == 0 {
		b.WriteString("The graph has no functions.\n")
		return b.String()
	}
	b.WriteString("| # | Function | Incoming | Outgoing | Total |\n")
	b.WriteString("|---:|---|---:|---:|---:|\n")
	for i, r := range ranked {
		fmt.Fprintf(&b, "| %d | `%s` | %d | %d | %d |\n", i+1, escapeCell(r.ID), r.Incoming, r.Outgoing, r.Total)
	}

	b.WriteString("\n## Namespaces\n\n")
	b.WriteString("| Namespace | Functions | Weight |\n")
	b.WriteString("|---|---:|---:|\n")
	for _, ns := range root.Children {
		fmt.Fprintf(&b, "| `%s` | %d | %d |\n", escapeCell(ns.Name), len(ns.Leaves()), ns.Value())
	}

	top := ranked[0].ID
	d, err := graph.Details(g, top, opts.Depth)
	if err == nil {
		fmt.Fprintf(&b, "\n## Call tree: %s\n\n", d.Label)
		b.WriteString("```mermaid\n")
		b.WriteString(diagrams.CallTreeDiagram(d.ID, d.Label, d.CallTree))
		b.WriteString("```\n")
	}
	return b.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

type pageData struct {
	Title   string
	Content template.HTML
}

var page = template.Must(template.New("report").Parse(pageTemplate))

// HTML converts a markdown report into a standalone page. Mermaid code
// blocks become diagram containers for mermaid.js.
func HTML(title string, markdown []byte) ([]byte, error) {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)

	var body bytes.Buffer
	if err := md.Convert(markdown, &body); err != nil {
		return nil, fmt.Errorf("converting markdown: %w", err)
	}

	var out bytes.Buffer
	data := pageData{Title: title, Content: template.HTML(mermaidBlocks(body.String()))}
	if err := page.Execute(&out, data); err != nil {
		return nil, fmt.Errorf("rendering page: %w", err)
	}
	return out.Bytes(), nil
}

// IsHTML reports whether path names an HTML output file.
func IsHTML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".html" || ext == ".htm"
}

func mermaidBlocks(s string) string {
	const openTag = `<pre><code class="language-mermaid">`
	const closeTag = `</code></pre>`

	var b strings.Builder
	for {
		idx := strings.Index(s, openTag)
		if idx == -1 {
			break
		}
		end := strings.Index(s[idx:], closeTag)
		if end == -1 {
			break
		}
		end += idx
		b.WriteString(s[:idx])
		b.WriteString(`<div class="mermaid">`)
		b.WriteString(s[idx+len(openTag) : end])
		b.WriteString(`</div>`)
		s = s[end+len(closeTag):]
	}
	b.WriteString(s)
	return b.String()
}

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Title}}</title>
  <script src="https://cdn.jsdelivr.net/npm/mermaid@10/dist/mermaid.min.js"></script>
  <style>
    body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; max-width: 960px; margin: 2rem auto; padding: 0 1rem; color: #1a1a1a; }
    table { border-collapse: collapse; margin: 1rem 0; }
    th, td { border: 1px solid #dadaeb; padding: 0.3rem 0.6rem; }
    th { background: #f2f0f7; }
    code { font-size: 0.9em; }
    .mermaid { margin: 1rem 0; }
  </style>
</head>
<body>
{{.Content}}
<script>mermaid.initialize({ startOnLoad: true });</script>
</body>
</html>
`
