package probe

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/hamed0406/backlinkmonitor/internal/domain"
)

func serveHTML(t *testing.T, status int, contentType, body string) *httptest.Server {
	t.Helper()
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(s.Close)
	return s
}

func TestBacklinkChecker_NofollowLink(t *testing.T) {
	s := serveHTML(t, 200, "text/html; charset=utf-8",
		`<html><body><a href="https://oxylabs.io/blog/what-is-proxy" rel="nofollow">proxy</a></body></html>`)

	chk := NewBacklinkChecker(2 * time.Second)
	out := chk.Check(context.Background(), domain.Target{Backlink: s.URL, Reference: proxyRef})
	if out.Status != domain.LinkFoundNofollow {
		t.Fatalf("want nofollow, got %v (%s)", out.Status, out.Reason)
	}
	if out.ResponseCode == nil || *out.ResponseCode != 200 {
		t.Fatalf("want code 200, got %v", out.ResponseCode)
	}
	if out.Backlink != s.URL || out.Reference != proxyRef {
		t.Fatalf("target not echoed: %+v", out)
	}
	if out.CheckedAt.IsZero() || out.LatencyMS < 0 {
		t.Fatalf("timing not recorded: %+v", out)
	}
}

func TestBacklinkChecker_NotFoundKeepsCode(t *testing.T) {
	s := serveHTML(t, 404, "text/html", `<a href="https://oxylabs.io/blog/what-is-proxy">proxy</a>`)

	out := NewBacklinkChecker(2*time.Second).Check(context.Background(), domain.Target{Backlink: s.URL, Reference: proxyRef})
	if out.Status != domain.Unreachable {
		t.Fatalf("want unreachable, got %v", out.Status)
	}
	if out.ResponseCode == nil || *out.ResponseCode != 404 {
		t.Fatalf("want code 404, got %v", out.ResponseCode)
	}
}

func TestBacklinkChecker_NonOKSuccessCodeIsUnreachable(t *testing.T) {
	s := serveHTML(t, 203, "text/html", `<a href="https://oxylabs.io/blog/what-is-proxy">proxy</a>`)

	out := NewBacklinkChecker(2*time.Second).Check(context.Background(), domain.Target{Backlink: s.URL, Reference: proxyRef})
	if out.Status != domain.Unreachable || out.ResponseCode == nil || *out.ResponseCode != 203 {
		t.Fatalf("want (unreachable, 203), got (%v, %v)", out.Status, out.ResponseCode)
	}
}

func TestBacklinkChecker_ConnectionRefused(t *testing.T) {
	s := httptest.NewServer(http.NotFoundHandler())
	url := s.URL
	s.Close()

	out := NewBacklinkChecker(2*time.Second).Check(context.Background(), domain.Target{Backlink: url, Reference: proxyRef})
	if out.Status != domain.Unreachable {
		t.Fatalf("want unreachable, got %v", out.Status)
	}
	if out.ResponseCode != nil {
		t.Fatalf("want nil code on transport error, got %d", *out.ResponseCode)
	}
	if out.Reason == "" {
		t.Fatalf("want transport error in reason")
	}
}

func TestBacklinkChecker_TimeoutIsUnreachable(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(200)
	}))
	defer s.Close()

	out := NewBacklinkChecker(50*time.Millisecond).Check(context.Background(), domain.Target{Backlink: s.URL, Reference: proxyRef})
	if out.Status != domain.Unreachable || out.ResponseCode != nil {
		t.Fatalf("want (unreachable, nil), got (%v, %v)", out.Status, out.ResponseCode)
	}
}

func TestBacklinkChecker_Noindex(t *testing.T) {
	s := serveHTML(t, 200, "text/html",
		`<html><head><meta name="robots" content="noindex"></head><body><a href="https://oxylabs.io/blog/what-is-proxy">proxy</a></body></html>`)

	out := NewBacklinkChecker(2*time.Second).Check(context.Background(), domain.Target{Backlink: s.URL, Reference: proxyRef})
	if out.Status != domain.Noindex || out.ResponseCode == nil || *out.ResponseCode != 200 {
		t.Fatalf("want (noindex, 200), got (%v, %v)", out.Status, out.ResponseCode)
	}
}

func TestBacklinkChecker_AddsSchemeAndFollowsRedirects(t *testing.T) {
	final := serveHTML(t, 200, "text/html", `<a href="https://oxylabs.io/blog/what-is-proxy">proxy</a>`)
	uas := make(chan string, 1)
	hop := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uas <- r.Header.Get("User-Agent")
		http.Redirect(w, r, final.URL, http.StatusMovedPermanently)
	}))
	defer hop.Close()

	bare := strings.TrimPrefix(hop.URL, "http://")
	out := NewBacklinkChecker(2*time.Second).Check(context.Background(), domain.Target{Backlink: bare, Reference: proxyRef})
	if out.Status != domain.LinkFoundDofollow {
		t.Fatalf("want dofollow after redirect, got %v (%s)", out.Status, out.Reason)
	}
	if out.Backlink != bare {
		t.Fatalf("result should keep the configured backlink, got %q", out.Backlink)
	}
	if gotUA := <-uas; gotUA != DefaultUserAgent {
		t.Fatalf("want user agent %q, got %q", DefaultUserAgent, gotUA)
	}
}

func TestBacklinkChecker_PrefersDeclaredCharset(t *testing.T) {
	ref := "https://пример.рф/блог"
	page := `<html><head><meta charset="windows-1251"></head><body><a href="` + ref + `">ссылка</a></body></html>`
	encoded, err := charmap.Windows1251.NewEncoder().String(page)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	// header lies about the charset; the in-document declaration must win
	s := serveHTML(t, 200, "text/html; charset=utf-8", encoded)

	out := NewBacklinkChecker(2*time.Second).Check(context.Background(), domain.Target{Backlink: s.URL, Reference: ref})
	if out.Status != domain.LinkFoundDofollow {
		t.Fatalf("want dofollow, got %v (%s)", out.Status, out.Reason)
	}
	if !strings.Contains(out.Reason, "windows-1251") {
		t.Fatalf("want resolved charset in reason, got %q", out.Reason)
	}
}

func TestBacklinkChecker_MetaUTF16ReadAsUTF8(t *testing.T) {
	s := serveHTML(t, 200, "text/html; charset=utf-8",
		`<html><head><meta charset="utf-16"></head><body><a href="https://oxylabs.io/blog/what-is-proxy">x</a></body></html>`)

	out := NewBacklinkChecker(2*time.Second).Check(context.Background(), domain.Target{Backlink: s.URL, Reference: proxyRef})
	if out.Status != domain.LinkFoundDofollow {
		t.Fatalf("want dofollow, got %v (%s)", out.Status, out.Reason)
	}
	if !strings.HasSuffix(out.Reason, "charset=utf-8") {
		t.Fatalf("want utf-8 in reason, got %q", out.Reason)
	}
}

func TestDecodeHTML_ReadErrorIsReturned(t *testing.T) {
	boom := errors.New("connection reset mid-body")
	if _, err := decodeHTML(iotest.ErrReader(boom), unicode.UTF8); !errors.Is(err, boom) {
		t.Fatalf("want read error, got %v", err)
	}

	// undecodable bytes are replaced, not rejected
	doc, err := decodeHTML(strings.NewReader("<p>\xff\xfe</p>"), unicode.UTF8)
	if err != nil || doc.Find("p").Length() != 1 {
		t.Fatalf("want a parsed document, got err=%v", err)
	}
}

func TestBacklinkChecker_SameStatusTwice(t *testing.T) {
	s := serveHTML(t, 200, "text/html", `<a href="https://oxylabs.io/blog/what-is-proxy" rel="nofollow">x</a>`)
	chk := NewBacklinkChecker(2 * time.Second)
	tgt := domain.Target{Backlink: s.URL, Reference: proxyRef}

	a := chk.Check(context.Background(), tgt)
	b := chk.Check(context.Background(), tgt)
	if a.Status != b.Status {
		t.Fatalf("status changed between calls: %v vs %v", a.Status, b.Status)
	}
}

func TestBacklinkChecker_MalformedURL(t *testing.T) {
	out := NewBacklinkChecker(time.Second).Check(context.Background(), domain.Target{Backlink: "http://exa mple.com/%zz", Reference: proxyRef})
	if out.Status != domain.Unreachable || out.ResponseCode != nil {
		t.Fatalf("want (unreachable, nil), got (%v, %v)", out.Status, out.ResponseCode)
	}
}

func TestCheckDNS_InvalidName(t *testing.T) {
	if got := CheckDNS(context.Background(), "").Class; got != DNSInvalidName {
		t.Fatalf("want %s, got %s", DNSInvalidName, got)
	}
	if got := CheckDNS(context.Background(), "http://x").Class; got != DNSInvalidName {
		t.Fatalf("want %s, got %s", DNSInvalidName, got)
	}
}
