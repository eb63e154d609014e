package notify

import (
	"bytes"
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shanehull/oslonotify/internal/ai"
	"github.com/shanehull/oslonotify/internal/types"
)

func sampleData() NotificationData {
	return NotificationData{
		Announcement: types.Announcement{
			ID:            601234,
			IssuerSign:    "NOM",
			IssuerName:    "Nordic Mining ASA",
			Title:         "Quarterly report",
			Category:      []string{"INTERIM REPORTS"},
			Markets:       []string{"XOSL"},
			PublishedTime: time.Date(2024, time.March, 5, 7, 0, 0, 0, time.UTC),
		},
		Content: types.Content{
			Title: "Nordic Mining: Q4 2023 report",
			Body:  "Revenue <up> 12%.\n\nOutlook unchanged.",
		},
		URL: "https://newsweb.oslobors.no/message/601234",
	}
}

func TestSubject(t *testing.T) {
	d := sampleData()
	assert.Equal(t, "NOM: Nordic Mining: Q4 2023 report", Subject(d))

	d.Content.Title = ""
	assert.Equal(t, "NOM: Quarterly report", Subject(d))
}

func TestRender(t *testing.T) {
	r := NewHTMLEmailRenderer()

	d := sampleData()
	d.Analysis = &ai.Analysis{
		Summary:  []string{"Revenue grew"},
		KeyFacts: []ai.Fact{{Category: "Results", Details: "NOK 12m"}},
	}

	msg, err := r.Render(d)
	require.NoError(t, err)

	assert.Equal(t, "NOM: Nordic Mining: Q4 2023 report", msg.Subject)

	assert.Contains(t, msg.Text, "Issuer: Nordic Mining ASA")
	assert.Contains(t, msg.Text, "Published: 05 Mar 2024 07:00")
	assert.Contains(t, msg.Text, "URL: https://newsweb.oslobors.no/message/601234")
	assert.Contains(t, msg.Text, "Outlook unchanged.")
	assert.Contains(t, msg.Text, "• [Results] NOK 12m")

	assert.Contains(t, msg.HTML, "<p>Revenue &lt;up&gt; 12%.</p>")
	assert.Contains(t, msg.HTML, "<p>Outlook unchanged.</p>")
	assert.Contains(t, msg.HTML, "Nordic Mining ASA")
	assert.Contains(t, msg.HTML, "05 Mar 2024 07:00")
	assert.Contains(t, msg.HTML, "Revenue grew")
	assert.NotContains(t, msg.HTML, "Correction")
}

func TestRenderWithoutAnalysis(t *testing.T) {
	msg, err := NewHTMLEmailRenderer().Render(sampleData())
	require.NoError(t, err)
	assert.NotContains(t, msg.Text, "AI SUMMARY")
	assert.NotContains(t, msg.HTML, "AI Summary")
}

func TestBuildMessagePrefersAlternative(t *testing.T) {
	m := buildMessage("from@example.com", "to@example.com", &RenderedMessage{
		Subject: "NOM: test",
		Text:    "plain",
		HTML:    "<p>html</p>",
	})
	assert.Equal(t, []string{"to@example.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"NOM: test"}, m.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "multipart/alternative")
}

func TestNewEmailSenderDefaultsFrom(t *testing.T) {
	s := NewEmailSender(EmailConfig{SMTPUser: "bot@example.com"}, nil)
	assert.Equal(t, "bot@example.com", s.cfg.FromEmail)
}

func TestSendKeepsDialError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	sender := NewEmailSender(EmailConfig{
		SMTPServer: "127.0.0.1",
		SMTPPort:   port,
		SMTPUser:   "bot@example.com",
		SMTPPass:   "secret",
	}, nil)

	err = sender.Send(context.Background(), "alice@example.com", &RenderedMessage{Subject: "NOM: Q3", Text: "body"})
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrDelivery)

	var opErr *net.OpError
	assert.True(t, errors.As(err, &opErr), "dial error should stay in the chain: %v", err)
}

func TestReportRun(t *testing.T) {
	var buf bytes.Buffer
	ReportRun(&buf, &types.RunSummary{
		RunID:   "run-1",
		Matched: 2,
		Sent:    1,
		Failed:  1,
		Deliveries: []types.Delivery{
			{Key: types.Key{SubscriberID: "alice", AnnouncementID: 1}, Address: "alice@example.com", Ticker: "NOM", Subject: "NOM: hi"},
			{Key: types.Key{SubscriberID: "bob", AnnouncementID: 1}, Address: "bob@example.com", Ticker: "NOM", Err: errors.New("smtp down")},
		},
	}, "tmp/05_03_24")

	out := buf.String()
	assert.Contains(t, out, "1 SENT, 1 FAILED")
	assert.Contains(t, out, "FAILED: smtp down")
	assert.Contains(t, out, "tmp/05_03_24")
}

func TestReportRunNothingMatched(t *testing.T) {
	var buf bytes.Buffer
	ReportRun(&buf, &types.RunSummary{Announcements: 3, Subscribers: 2}, "tmp/x")
	assert.Contains(t, buf.String(), "No new announcements")
}
