package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/weft/pkg/writable"
)

// KindsMarkdown renders kinds as a markdown table.
func KindsMarkdown(kinds []writable.Kind) string {
	var sb strings.Builder
	sb.WriteString("# Writable kinds\n\n")
	sb.WriteString("| Kind | Class | Ordered | Container |\n")
	sb.WriteString("|------|-------|---------|-----------|\n")
	for _, k := range kinds {
		fmt.Fprintf(&sb, "| %s | `%s` | %s | %s |\n", k, k.ClassName(), yesNo(k.IsOrdered()), yesNo(k.IsContainer()))
	}
	return sb.String()
}

// RenderKinds renders the kinds table through render, typically the function
// returned by NewRenderer.
func RenderKinds(kinds []writable.Kind, render func(string) (string, error)) (string, error) {
	md := KindsMarkdown(kinds)
	if render == nil {
		return md, nil
	}
	return render(md)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
