package engine

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// formatAtomLine renders one L1 result as a markdown bullet.
func formatAtomLine(r Retrieved) string {
	summary := strings.ReplaceAll(strings.TrimSpace(r.Row.Summary), "\n", " ")
	summary = truncateRunes(summary, 220)

	line := fmt.Sprintf("- [%s] (%s, w=%.2f, uses=%d) %s",
		r.AtomID, r.Row.Type, r.Row.W, r.Row.Uses, summary)

	reasons := r.Reasons
	if len(reasons) > 3 {
		reasons = reasons[:3]
	}
	if len(reasons) > 0 {
		line += fmt.Sprintf("  _(%s)_", strings.Join(reasons, ", "))
	}
	return line
}

// BuildBrief renders a markdown memory brief: the query, L1 results, L2
// suggestions, and meta-atom pattern candidates.
func BuildBrief(query string, seeds []Retrieved, l2 []L2Suggestion, meta []MetaCandidate) string {
	var b strings.Builder
	b.WriteString("## Synaptic memory brief\n")
	fmt.Fprintf(&b, "**Query:** %s\n\n", query)

	b.WriteString("### L1: Most relevant atoms\n")
	for _, r := range seeds {
		b.WriteString(formatAtomLine(r) + "\n")
	}

	if len(l2) > 0 {
		b.WriteString("\n### L2: Adjacent suggestions\n")
		for _, s := range l2 {
			fmt.Fprintf(&b, "- [%s] score=%.2f reasons=%s\n", s.AtomID, s.Score, strings.Join(s.Reasons, ","))
		}
	}

	if len(meta) > 0 {
		b.WriteString("\n### L2: Pattern candidates (meta-atoms)\n")
		for _, m := range meta {
			fmt.Fprintf(&b, "- %s score=%.2f members=[%s]\n", m.Title, m.Score, strings.Join(m.Members, ", "))
		}
	}

	return b.String()
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-1]) + "…"
}
