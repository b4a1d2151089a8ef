package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/require"

	"sharehouse-times/internal/pipeline"
)

func testResult() *pipeline.RunResult {
	fetched := []pipeline.NewsItem{
		{ID: 1201, Title: "渋谷の女性専用シェアハウス", Summary: "要約", Region: pipeline.RegionJapan,
			Source: "Example News", Date: "10/15(木)", Category: "women", Categories: []string{"tokyo", "women"},
			URL: "https://example.com/a"},
		{ID: 1202, Title: "NY co-living rental", Region: pipeline.RegionWorld,
			Source: "Example Wire", Date: "10/14(水)", Category: "market", Categories: []string{"market"},
			URL: "https://example.com/b"},
	}
	return &pipeline.RunResult{
		Snapshot:  pipeline.NewSnapshot(fetched, time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)),
		Fetched:   fetched,
		StartedAt: time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC),
	}
}

func newTestNotifier(t *testing.T, send sendMailFunc) *EmailNotifier {
	t.Helper()
	n, err := NewEmailNotifier("bot@example.com", "app-password", []string{"editor@example.com"}, nil)
	require.NoError(t, err)
	n.sendMail = send
	n.sleep = func(time.Duration) {}
	return n
}

func TestNewEmailNotifierRequiresSettings(t *testing.T) {
	_, err := NewEmailNotifier("", "pw", []string{"a@example.com"}, nil)
	require.ErrorContains(t, err, "EMAIL_FROM")
	_, err = NewEmailNotifier("bot@example.com", "", []string{"a@example.com"}, nil)
	require.ErrorContains(t, err, "EMAIL_PASSWORD")
	_, err = NewEmailNotifier("bot@example.com", "pw", nil, nil)
	require.ErrorContains(t, err, "EMAIL_TO")
}

func TestEmailNotifierSkipsCleanRuns(t *testing.T) {
	calls := 0
	n := newTestNotifier(t, func(string, smtp.Auth, string, []string, []byte) error {
		calls++
		return nil
	})

	require.NoError(t, n.AfterRun(context.Background(), testResult()))
	require.Zero(t, calls)
}

func TestEmailNotifierReportsFailedSources(t *testing.T) {
	var gotAddr string
	var gotTo []string
	var gotMsg string
	n := newTestNotifier(t, func(addr string, _ smtp.Auth, _ string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, string(msg)
		return nil
	})

	res := testResult()
	res.SourceErrors = []*pipeline.SourceError{
		{Source: "google-news-akiya", Err: errors.New("unexpected status 503")},
	}
	require.NoError(t, n.AfterRun(context.Background(), res))

	require.Equal(t, "smtp.gmail.com:587", gotAddr)
	require.Equal(t, []string{"editor@example.com"}, gotTo)
	require.Contains(t, gotMsg, "From: bot@example.com\r\n")
	require.Contains(t, gotMsg, "Subject: =?UTF-8?q?")
	require.Contains(t, gotMsg, "Published: 2 items (seed 0 / fetched 2)")
	require.Contains(t, gotMsg, "[1] google-news-akiya")
	require.Contains(t, gotMsg, "unexpected status 503")
}

func TestEmailNotifierRetries(t *testing.T) {
	calls := 0
	var waits []time.Duration
	n := newTestNotifier(t, func(string, smtp.Auth, string, []string, []byte) error {
		calls++
		if calls < 3 {
			return errors.New("421 try again later")
		}
		return nil
	})
	n.sleep = func(d time.Duration) { waits = append(waits, d) }

	res := testResult()
	res.SourceErrors = []*pipeline.SourceError{{Source: "x", Err: errors.New("boom")}}
	require.NoError(t, n.AfterRun(context.Background(), res))
	require.Equal(t, 3, calls)
	require.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, waits)
}

func TestEmailNotifierGivesUp(t *testing.T) {
	n := newTestNotifier(t, func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("535 bad credentials")
	})

	res := testResult()
	res.SourceErrors = []*pipeline.SourceError{{Source: "x", Err: errors.New("boom")}}
	err := n.AfterRun(context.Background(), res)
	require.ErrorContains(t, err, "after 3 retries")
	require.ErrorContains(t, err, "535 bad credentials")
}

type fakePages struct {
	requests []*notionapi.PageCreateRequest
	failOn   string
}

func (f *fakePages) Create(_ context.Context, req *notionapi.PageCreateRequest) (*notionapi.Page, error) {
	title := req.Properties["Title"].(notionapi.TitleProperty).Title[0].Text.Content
	if title == f.failOn {
		return nil, errors.New("validation_error")
	}
	f.requests = append(f.requests, req)
	return &notionapi.Page{}, nil
}

func TestNotionClipperClipsFetchedItems(t *testing.T) {
	pages := &fakePages{}
	nc := &NotionClipper{pages: pages, dbID: "db-123", logger: testLogger()}

	require.NoError(t, nc.AfterRun(context.Background(), testResult()))
	require.Len(t, pages.requests, 2)

	req := pages.requests[0]
	require.Equal(t, notionapi.DatabaseID("db-123"), req.Parent.DatabaseID)
	require.Equal(t, "https://example.com/a", req.Properties["URL"].(notionapi.URLProperty).URL)
	require.Equal(t, "women", req.Properties["Category"].(notionapi.SelectProperty).Select.Name)
	require.Equal(t, "japan", req.Properties["Region"].(notionapi.SelectProperty).Select.Name)
	multi := req.Properties["Categories"].(notionapi.MultiSelectProperty).MultiSelect
	require.Len(t, multi, 2)
	require.Contains(t, req.Properties, "Summary")

	_, hasSummary := pages.requests[1].Properties["Summary"]
	require.False(t, hasSummary)
}

func TestNotionClipperContinuesAfterFailure(t *testing.T) {
	pages := &fakePages{failOn: "渋谷の女性専用シェアハウス"}
	nc := &NotionClipper{pages: pages, dbID: "db-123", logger: testLogger()}

	err := nc.AfterRun(context.Background(), testResult())
	require.ErrorContains(t, err, "1 of 2 notion clips failed")
	require.Len(t, pages.requests, 1)
}

func TestRichTextTruncates(t *testing.T) {
	long := strings.Repeat("家", notionRichTextLimit+10)
	rt := richText(long)
	require.Len(t, []rune(rt[0].Text.Content), notionRichTextLimit)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
