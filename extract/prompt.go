package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/joblens/joblens"
)

// SystemPrompt primes the inference session for verbatim extraction.
const SystemPrompt = "You are a precise assistant that extracts job posting data from web pages. " +
	"Copy values verbatim from the page. Respond with a single JSON object and nothing else. " +
	"Use the string \"unknown\" for any value the page does not state."

// BuildFieldsPrompt asks for the short scalar fields of a posting: hiring
// company, job title, and related attributes, verbatim from the page.
func BuildFieldsPrompt(snap *joblens.PageContent) string {
	var sb strings.Builder
	sb.WriteString("Extract the following from the job posting page below, verbatim:\n")
	sb.WriteString("- company: the hiring company name\n")
	sb.WriteString("- position: the job title\n")
	sb.WriteString("- location: the job location\n")
	sb.WriteString("- salary: the stated salary or range\n")
	sb.WriteString("- jobType: full-time, part-time, contract, or similar\n\n")
	sb.WriteString(`Respond with JSON: {"company": "...", "position": "...", "location": "...", "salary": "...", "jobType": "..."}`)
	sb.WriteString("\n\n")
	writePage(&sb, snap)
	return sb.String()
}

// BuildDescriptionPrompt asks for the full job description, plus the
// listed requirements and benefits.
func BuildDescriptionPrompt(snap *joblens.PageContent) string {
	var sb strings.Builder
	sb.WriteString("Extract the full job description from the page below, verbatim. ")
	sb.WriteString("Also list the stated requirements and benefits, one entry per list item.\n\n")
	sb.WriteString(`Respond with JSON: {"jobDescription": "...", "requirements": ["..."], "benefits": ["..."]}`)
	sb.WriteString("\n\n")
	writePage(&sb, snap)
	return sb.String()
}

func writePage(sb *strings.Builder, snap *joblens.PageContent) {
	sb.WriteString("<page>\n")
	fmt.Fprintf(sb, "<url>%s</url>\n", snap.URL)
	fmt.Fprintf(sb, "<title>%s</title>\n", snap.Title)
	fmt.Fprintf(sb, "<content>%s</content>\n", snap.RawText)
	sb.WriteString("</page>")
}

// trimContent caps the snapshot's text to the configured rune budget, then
// refines against the token budget when a counter is available. Returns a
// trimmed copy; the cached snapshot is not mutated.
func trimContent(ctx context.Context, snap *joblens.PageContent, maxRunes, tokenBudget int, counter joblens.TokenCounter) *joblens.PageContent {
	text := snap.RawText

	if maxRunes > 0 {
		if runes := []rune(text); len(runes) > maxRunes {
			text = string(runes[:maxRunes])
		}
	}

	if counter != nil && tokenBudget > 0 {
		if tokens, err := counter.CountTokens(ctx, text); err == nil && tokens > tokenBudget {
			runes := []rune(text)
			keep := len(runes) * tokenBudget / tokens
			if keep < len(runes) {
				text = string(runes[:keep])
			}
		}
	}

	if text == snap.RawText {
		return snap
	}
	trimmed := *snap
	trimmed.RawText = text
	trimmed.Length = len(text)
	return &trimmed
}
