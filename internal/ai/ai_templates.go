package ai

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shanehull/oslonotify/internal/types"
)

const systemInstruction = `
# [INSTRUCTION]

You summarise stock exchange announcements published on Oslo Børs (Newsweb) for
a retail investor who watches the issuer. Announcements may be in Norwegian or
English; always answer in English.

Only use facts stated in the announcement text. Do not speculate and do not give
investment advice.

# [CATEGORIES]

- **Results:** revenue, EBITDA, net profit, guidance, compared with prior periods.
- **Capital:** share issues, buybacks, dividends, record and payment dates, subscription prices.
- **Corporate:** mergers, acquisitions, disposals, mandatory offers, delistings.
- **Insider:** primary insider trades, with share counts and prices.
- **Operations:** contracts, production figures, drilling or exploration results.
- **Governance:** board or management changes, general meetings, notices.

# [OUTPUT]

Every "details" entry must contain a number, a date or a concrete term taken
from the text. Omit categories that do not apply.
`

func buildPrompt(ann types.Announcement, content types.Content) string {
	body := truncateUTF8(content.Body, maxPromptChars)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Issuer: %s (%s)\n", ann.IssuerName, ann.IssuerSign))
	if len(ann.Category) > 0 {
		sb.WriteString(fmt.Sprintf("Category: %s\n", strings.Join(ann.Category, ", ")))
	}
	if !ann.PublishedTime.IsZero() {
		sb.WriteString(fmt.Sprintf("Published: %s\n", ann.PublishedTime.Format("2006-01-02 15:04 MST")))
	}
	sb.WriteString(fmt.Sprintf("Title: %s\n\n---\n%s", content.Title, body))
	return sb.String()
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
