package deps

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/randalmurphal/vrt/shell"
)

// GraphSource is the directory graphed when none is given.
const GraphSource = "src"

// graphExclude drops test files, type declarations, mocks and installed
// modules from the graph.
const graphExclude = `\.(test|d)\.ts$|node_modules|__mocks__/`

// ErrNoGraphOutput is returned when dependency-cruiser prints nothing.
var ErrNoGraphOutput = errors.New("no output")

var subgraphPattern = regexp.MustCompile(`(?i)subgraph ([0-9a-z]+)`)

// GraphCommand returns the dependency-cruiser invocation for source.
func GraphCommand(source string) string {
	return "npx depcruise " + singleQuote(source) +
		" --include-only '^src' --output-type mermaid --exclude " + singleQuote(graphExclude)
}

// Graph renders the module dependency graph of source, relative to the
// shell's directory, as a fenced mermaid block.
func Graph(ctx context.Context, sh *shell.Shell, source string) (string, error) {
	if source == "" {
		source = GraphSource
	}
	raw, err := sh.Stdout(ctx, GraphCommand(source))
	if err != nil {
		return "", err
	}
	return FormatMermaid(raw)
}

// FormatMermaid switches the chart to a top-to-bottom elk layout, greys
// out every subgraph and wraps the result in a markdown code fence.
func FormatMermaid(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", ErrNoGraphOutput
	}

	out := strings.Replace(raw, "flowchart LR", "---\nconfig:\n  layout: elk\n---\nflowchart TB", 1)

	var ids []string
	for _, m := range subgraphPattern.FindAllStringSubmatch(out, -1) {
		ids = append(ids, m[1])
	}
	if len(ids) > 0 {
		out += "\nclass " + strings.Join(ids, ",") + " subgraphs;"
	}
	out += "\nclassDef subgraphs fill-opacity:0.1, fill:#888, color:#888, stroke:#888;"

	return "```mermaid\n" + out + "\n```\n", nil
}

func singleQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
