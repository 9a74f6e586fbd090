package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nao1215/linkscout/internal/config"
	"github.com/nao1215/linkscout/internal/crawler"
	"github.com/nao1215/linkscout/internal/model"
)

// stubFetcher is a PageFetcher that records calls and in-flight counts.
type stubFetcher struct {
	fetch func(ctx context.Context, url string) (*crawler.Response, error)

	mu          sync.Mutex
	order       []string
	inFlight    int
	maxInFlight int
}

func newStubFetcher(fetch func(ctx context.Context, url string) (*crawler.Response, error)) *stubFetcher {
	return &stubFetcher{fetch: fetch}
}

// Fetch implements PageFetcher.
func (s *stubFetcher) Fetch(ctx context.Context, url string) (*crawler.Response, error) {
	s.mu.Lock()
	s.order = append(s.order, url)
	s.inFlight++
	if s.inFlight > s.maxInFlight {
		s.maxInFlight = s.inFlight
	}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight--
		s.mu.Unlock()
	}()

	return s.fetch(ctx, url)
}

func (s *stubFetcher) calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.order)
}

func htmlResponse(url, body string) *crawler.Response {
	return &crawler.Response{
		URL:         url,
		StatusCode:  http.StatusOK,
		ContentType: "text/html",
		Body:        []byte(body),
	}
}

// newTestServer serves titled pages for /ok/* and 404 for everything else.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/a", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><head><title>Page A</title></head><body><a href="/x">x</a><a href="https://other.example/y">y</a></body></html>`)
	})
	mux.HandleFunc("/ok/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<title>%s</title><a href="%s/next">n</a><a href="/">home</a>`, r.URL.Path, r.URL.Path)
	})
	mux.HandleFunc("/slow", func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

// TestOrchestratorEndToEnd tests one successful and one missing target.
func TestOrchestratorEndToEnd(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)

	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))

	orch := NewOrchestrator(
		crawler.NewFetcher(server.Client()),
		WithThrottle(0),
		WithOrchestratorLogger(logger),
	)

	targets := []string{server.URL + "/a", server.URL + "/missing"}
	report, err := orch.Run(context.Background(), targets)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Targets != 2 {
		t.Errorf("expected 2 targets, got %d", report.Targets)
	}
	if report.Succeeded() != 1 {
		t.Fatalf("expected 1 page, got %d", report.Succeeded())
	}

	page := report.Pages[0]
	if page.URL != targets[0] {
		t.Errorf("unexpected URL %q", page.URL)
	}
	if page.Title != "Page A" {
		t.Errorf("unexpected title %q", page.Title)
	}
	if !slices.Equal(page.Links, []string{"/x", "https://other.example/y"}) {
		t.Errorf("unexpected links %v", page.Links)
	}

	if report.Failed() != 1 {
		t.Fatalf("expected 1 failure, got %d", report.Failed())
	}
	failure := report.Failures[0]
	if failure.URL != targets[1] || failure.Kind != model.FailureProtocol || failure.StatusCode != http.StatusNotFound {
		t.Errorf("unexpected failure %+v", failure)
	}
	if !strings.Contains(failure.Reason, "404") {
		t.Errorf("expected reason to mention status, got %q", failure.Reason)
	}

	out := logs.String()
	if strings.Count(out, `"msg":"scrape failed"`) != 1 {
		t.Errorf("expected exactly one failure line, got:\n%s", out)
	}
	if !strings.Contains(out, targets[1]) || !strings.Contains(out, `"kind":"protocol"`) {
		t.Errorf("expected failure line with URL and kind, got:\n%s", out)
	}
	if !strings.Contains(out, `"msg":"scrape complete"`) {
		t.Errorf("expected summary line, got:\n%s", out)
	}
}

// TestOrchestratorMixedBatch tests an exact success count over many targets.
func TestOrchestratorMixedBatch(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)

	const n = 50
	targets := make([]string, 0, n)
	wantOK := 0
	for i := range n {
		if i%3 == 0 {
			targets = append(targets, fmt.Sprintf("%s/missing/%d", server.URL, i))
			continue
		}
		targets = append(targets, fmt.Sprintf("%s/ok/%d", server.URL, i))
		wantOK++
	}

	orch := NewOrchestrator(
		crawler.NewFetcher(server.Client()),
		WithThrottle(0),
		WithConcurrency(8),
		WithOrchestratorLogger(discardLogger()),
	)

	report, err := orch.Run(context.Background(), targets)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Succeeded() != wantOK {
		t.Errorf("expected %d pages, got %d", wantOK, report.Succeeded())
	}
	if report.Failed() != n-wantOK {
		t.Errorf("expected %d failures, got %d", n-wantOK, report.Failed())
	}

	for _, page := range report.Pages {
		if !strings.Contains(page.URL, "/ok/") {
			t.Errorf("failed target in result set: %s", page.URL)
		}
		if len(page.Links) != 2 {
			t.Errorf("expected 2 links for %s, got %d", page.URL, len(page.Links))
		}
	}
	for _, f := range report.Failures {
		if f.Kind != model.FailureProtocol {
			t.Errorf("expected protocol failure, got %s", f.Kind)
		}
	}
}

// TestOrchestratorTimeout tests that a slow target fails without a page.
func TestOrchestratorTimeout(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)
	client := server.Client()
	client.Timeout = 100 * time.Millisecond

	orch := NewOrchestrator(
		crawler.NewFetcher(client),
		WithThrottle(0),
		WithOrchestratorLogger(discardLogger()),
	)

	report, err := orch.Run(context.Background(), []string{server.URL + "/slow", server.URL + "/a"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Succeeded() != 1 || report.Pages[0].Title != "Page A" {
		t.Errorf("expected only /a to succeed, got %+v", report.Pages)
	}
	if report.Failed() != 1 {
		t.Fatalf("expected 1 failure, got %d", report.Failed())
	}
	if report.Failures[0].Kind != model.FailureTransport {
		t.Errorf("expected transport failure, got %s", report.Failures[0].Kind)
	}
}

// TestOrchestratorPanicIsolation tests that a panicking unit does not affect siblings.
func TestOrchestratorPanicIsolation(t *testing.T) {
	t.Parallel()

	fetcher := newStubFetcher(func(_ context.Context, url string) (*crawler.Response, error) {
		if url == "boom" {
			panic("exploded")
		}
		return htmlResponse(url, "<title>fine</title>"), nil
	})

	orch := NewOrchestrator(fetcher, WithThrottle(0), WithOrchestratorLogger(discardLogger()))
	report, err := orch.Run(context.Background(), []string{"one", "boom", "two"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Succeeded() != 2 {
		t.Errorf("expected 2 pages, got %d", report.Succeeded())
	}
	if report.Failed() != 1 {
		t.Fatalf("expected 1 failure, got %d", report.Failed())
	}
	f := report.Failures[0]
	if f.URL != "boom" || f.Kind != model.FailurePanic || !strings.Contains(f.Reason, "exploded") {
		t.Errorf("unexpected failure %+v", f)
	}
}

// TestOrchestratorIdempotent tests that two runs produce equal result sets.
func TestOrchestratorIdempotent(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)
	targets := []string{server.URL + "/ok/1", server.URL + "/ok/2", server.URL + "/a", server.URL + "/nope"}

	run := func() *model.RunReport {
		orch := NewOrchestrator(
			crawler.NewFetcher(server.Client()),
			WithThrottle(0),
			WithOrchestratorLogger(discardLogger()),
		)
		report, err := orch.Run(context.Background(), targets)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return report
	}

	first, second := run().SortedPages(), run().SortedPages()
	if len(first) != len(second) {
		t.Fatalf("page count differs: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if !first[i].Equal(second[i]) {
			t.Errorf("page %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

// TestOrchestratorConcurrencyCap tests the in-flight limit.
func TestOrchestratorConcurrencyCap(t *testing.T) {
	t.Parallel()

	fetcher := newStubFetcher(func(_ context.Context, url string) (*crawler.Response, error) {
		time.Sleep(20 * time.Millisecond)
		return htmlResponse(url, ""), nil
	})

	targets := make([]string, 12)
	for i := range targets {
		targets[i] = fmt.Sprint(i)
	}

	orch := NewOrchestrator(fetcher, WithThrottle(0), WithConcurrency(3), WithOrchestratorLogger(discardLogger()))
	report, err := orch.Run(context.Background(), targets)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Succeeded() != 12 {
		t.Errorf("expected 12 pages, got %d", report.Succeeded())
	}
	if fetcher.maxInFlight > 3 {
		t.Errorf("expected at most 3 in flight, got %d", fetcher.maxInFlight)
	}
	for _, p := range report.Pages {
		if p.Title != model.TitleNotFound {
			t.Errorf("expected title sentinel for empty body, got %q", p.Title)
		}
	}
}

// TestOrchestratorLaunchOrder tests that units start in target order.
func TestOrchestratorLaunchOrder(t *testing.T) {
	t.Parallel()

	fetcher := newStubFetcher(func(_ context.Context, url string) (*crawler.Response, error) {
		return htmlResponse(url, ""), nil
	})

	targets := []string{"c", "a", "b", "a"}
	orch := NewOrchestrator(fetcher, WithThrottle(0), WithConcurrency(1), WithOrchestratorLogger(discardLogger()))
	if _, err := orch.Run(context.Background(), targets); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := fetcher.calls(); !slices.Equal(got, targets) {
		t.Errorf("expected launch order %v, got %v", targets, got)
	}
}

// TestOrchestratorThrottle tests the launch cadence.
func TestOrchestratorThrottle(t *testing.T) {
	t.Parallel()

	fetcher := newStubFetcher(func(_ context.Context, url string) (*crawler.Response, error) {
		return htmlResponse(url, ""), nil
	})

	orch := NewOrchestrator(fetcher, WithThrottle(40*time.Millisecond), WithOrchestratorLogger(discardLogger()))

	start := time.Now()
	report, err := orch.Run(context.Background(), []string{"1", "2", "3", "4"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 120*time.Millisecond {
		t.Errorf("expected at least 3 throttle intervals, took %v", elapsed)
	}
	if report.Succeeded() != 4 {
		t.Errorf("expected 4 pages, got %d", report.Succeeded())
	}
}

// TestOrchestratorCancellation tests that cancellation stops launching.
func TestOrchestratorCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetcher := newStubFetcher(func(_ context.Context, url string) (*crawler.Response, error) {
		cancel()
		return htmlResponse(url, ""), nil
	})

	orch := NewOrchestrator(fetcher, WithThrottle(time.Hour), WithOrchestratorLogger(discardLogger()))
	report, err := orch.Run(ctx, []string{"1", "2", "3"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if report == nil {
		t.Fatal("expected partial report")
	}
	if !report.Cancelled {
		t.Error("expected report to be marked cancelled")
	}
	if got := len(fetcher.calls()); got != 1 {
		t.Errorf("expected 1 launched unit, got %d", got)
	}
	if report.Succeeded()+report.Failed() != 1 {
		t.Errorf("expected exactly one outcome, got %d pages and %d failures", report.Succeeded(), report.Failed())
	}
}

// TestOrchestratorRunFile tests loading targets from disk.
func TestOrchestratorRunFile(t *testing.T) {
	t.Parallel()

	newOrch := func(f *stubFetcher) *Orchestrator {
		return NewOrchestrator(f, WithThrottle(0), WithOrchestratorLogger(discardLogger()))
	}
	okFetcher := func() *stubFetcher {
		return newStubFetcher(func(_ context.Context, url string) (*crawler.Response, error) {
			return htmlResponse(url, "<title>t</title>"), nil
		})
	}

	t.Run("runs every listed target", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "targets.txt")
		if err := os.WriteFile(path, []byte("one\n\ntwo\n"), 0600); err != nil {
			t.Fatalf("failed to write targets: %v", err)
		}

		fetcher := okFetcher()
		report, err := newOrch(fetcher).RunFile(context.Background(), path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.Targets != 2 || report.Succeeded() != 2 {
			t.Errorf("unexpected report %+v", report)
		}
	})

	t.Run("unreadable file launches nothing", func(t *testing.T) {
		t.Parallel()

		fetcher := okFetcher()
		report, err := newOrch(fetcher).RunFile(context.Background(), filepath.Join(t.TempDir(), "missing.txt"))
		if !errors.Is(err, config.ErrTargetFile) {
			t.Fatalf("expected ErrTargetFile, got %v", err)
		}
		if report != nil {
			t.Error("expected nil report")
		}
		if len(fetcher.calls()) != 0 {
			t.Error("expected no fetch")
		}
	})

	t.Run("blank file completes with an empty report", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "targets.txt")
		if err := os.WriteFile(path, []byte("\n  \n"), 0600); err != nil {
			t.Fatalf("failed to write targets: %v", err)
		}

		fetcher := okFetcher()
		report, err := newOrch(fetcher).RunFile(context.Background(), path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report == nil {
			t.Fatal("expected a report")
		}
		if report.Targets != 0 || report.Succeeded() != 0 || report.Failed() != 0 || report.Cancelled {
			t.Errorf("expected empty report, got %+v", report)
		}
		if len(fetcher.calls()) != 0 {
			t.Error("expected no fetch")
		}
	})

	t.Run("empty file completes with an empty report", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "targets.txt")
		if err := os.WriteFile(path, nil, 0600); err != nil {
			t.Fatalf("failed to write targets: %v", err)
		}

		report, err := newOrch(okFetcher()).RunFile(context.Background(), path)
		if err != nil || report == nil || report.Targets != 0 {
			t.Errorf("expected empty report and nil error, got %+v, %v", report, err)
		}
	})
}

// TestOrchestratorDefaults tests option handling.
func TestOrchestratorDefaults(t *testing.T) {
	t.Parallel()

	orch := NewOrchestrator(nil, WithConcurrency(0), WithThrottle(-1))
	if orch.concurrency != config.DefaultConcurrency {
		t.Errorf("expected default concurrency, got %d", orch.concurrency)
	}
	if orch.throttle != config.DefaultThrottle {
		t.Errorf("expected default throttle, got %v", orch.throttle)
	}
	if orch.extractor == nil || orch.logger == nil {
		t.Error("expected extractor and logger defaults")
	}
}
