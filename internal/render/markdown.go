// Package render turns an assembled reading context into textual output
// formats. The context is consumed read-only.
package render

import (
	"fmt"
	"strings"

	"github.com/katelouie/arcanite/internal/domain"
)

// Markdown renders an assembled context as markdown. The output is
// deterministic for identical input and doubles as the LLM synthesis
// prompt body.
func Markdown(ctx domain.AssembledContext) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Tarot Reading: %s\n\n", ctx.SpreadName)

	if ctx.Question != "" {
		fmt.Fprintf(&b, "**Question:** %s\n\n", ctx.Question)
	}
	if ctx.QuestionType != "" {
		fmt.Fprintf(&b, "**Question Type:** %s\n\n", ctx.QuestionType)
	}

	b.WriteString("## Cards Drawn\n\n")

	for _, card := range ctx.CardInterpretations {
		fmt.Fprintf(&b, "### Position %d: %s\n", card.PositionIndex+1, card.PositionName)
		fmt.Fprintf(&b, "**%s** (%s)\n\n", card.CardName, card.Orientation)
		fmt.Fprintf(&b, "*Position meaning:* %s\n\n", card.PositionDesc)
		fmt.Fprintf(&b, "**Interpretation:** %s\n\n", card.PositionInterpretation)

		if len(card.PositionKeywords) > 0 {
			fmt.Fprintf(&b, "*Keywords:* %s\n\n", strings.Join(card.PositionKeywords, ", "))
		}
		if card.QuestionContext != "" {
			fmt.Fprintf(&b, "**%s Context:** %s\n\n", titleCase(string(ctx.QuestionType)), card.QuestionContext)
		}

		b.WriteString("---\n\n")
	}

	if len(ctx.Relationships) > 0 {
		b.WriteString("## Card Relationships\n\n")
		for _, rel := range ctx.Relationships {
			fmt.Fprintf(&b, "- **%s** %s **%s**: %s\n",
				rel.Card1Name,
				strings.ReplaceAll(string(rel.RelationshipType), "_", " "),
				rel.Card2Name,
				rel.Interpretation,
			)
		}
		b.WriteString("\n")
	}

	return b.String()
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
