package ai

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shanehull/oslonotify/internal/types"
)

func TestBuildPrompt(t *testing.T) {
	ann := types.Announcement{
		IssuerSign:    "NOM",
		IssuerName:    "Nordic Mining ASA",
		Category:      []string{"INTERIM REPORTS"},
		PublishedTime: time.Date(2024, time.March, 5, 7, 0, 0, 0, time.UTC),
	}
	prompt := buildPrompt(ann, types.Content{Title: "Q4 report", Body: "Revenue NOK 12m."})

	assert.Contains(t, prompt, "Issuer: Nordic Mining ASA (NOM)")
	assert.Contains(t, prompt, "Category: INTERIM REPORTS")
	assert.Contains(t, prompt, "Published: 2024-03-05 07:00 UTC")
	assert.True(t, strings.HasSuffix(prompt, "Title: Q4 report\n\n---\nRevenue NOK 12m."))
}

func TestBuildPromptTruncatesBody(t *testing.T) {
	body := strings.Repeat("x", maxPromptChars+100)
	prompt := buildPrompt(types.Announcement{}, types.Content{Body: body})
	assert.Equal(t, maxPromptChars, strings.Count(prompt, "x"))
}

func TestTruncateUTF8KeepsRunesWhole(t *testing.T) {
	body := strings.Repeat("x", maxPromptChars-1) + "ærø"
	prompt := buildPrompt(types.Announcement{}, types.Content{Body: body})
	assert.True(t, utf8.ValidString(prompt))
	assert.True(t, strings.HasSuffix(prompt, "x"))

	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"blåbær", 3, "bl"},
		{"blåbær", 4, "blå"},
		{"blåbær", 100, "blåbær"},
		{"øy", 1, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, truncateUTF8(tt.in, tt.n), "truncateUTF8(%q, %d)", tt.in, tt.n)
	}
}

func TestParseAnalysis(t *testing.T) {
	a, err := parseAnalysis(`{"summary":["Revenue up"],"key_facts":[{"category":"Results","details":"NOK 12m"}]}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"Revenue up"}, a.Summary)
	assert.Equal(t, []Fact{{Category: "Results", Details: "NOK 12m"}}, a.KeyFacts)

	_, err = parseAnalysis("not json")
	assert.Error(t, err)
}

func TestNewAnalyzerRequiresKey(t *testing.T) {
	_, err := NewAnalyzer(context.Background(), "", "")
	assert.Error(t, err)
}
