package llm

import (
	"fmt"
	"strings"
)

// BuildPrompt renders the default summarization prompt. The citation list is
// the complete set of sources the model may discuss; the prompt forbids
// inventing records beyond it.
func BuildPrompt(subject string, citations []string) string {
	var b strings.Builder

	b.WriteString("Summarize the documentary evidence attached to the following genealogical record.\n\n")
	fmt.Fprintf(&b, "Record: %s\n\n", subject)

	if len(citations) == 0 {
		b.WriteString("No sources are attached to this record.\n")
		b.WriteString("State that the record is undocumented and suggest, in general terms, what record types a researcher might look for. Do not invent or assume any specific source.\n")
		return b.String()
	}

	b.WriteString("Attached source citations:\n")
	for i, citation := range citations {
		fmt.Fprintf(&b, "%d. %s\n", i+1, citation)
	}

	b.WriteString("\nRules:\n")
	b.WriteString("- Discuss ONLY the citations listed above; never invent additional sources.\n")
	b.WriteString("- Refer to citations by their number.\n")
	b.WriteString("- Note which life events (birth, marriage, death, residence) the citations cover and which are undocumented.\n")
	b.WriteString("- Keep the summary under three short paragraphs.\n")

	return b.String()
}
