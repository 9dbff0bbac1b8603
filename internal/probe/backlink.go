package probe

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"

	"github.com/hamed0406/backlinkmonitor/internal/domain"
)

const (
	DefaultUserAgent = "backlink-monitor/1.0"
	defaultMaxBody   = 10 << 20
)

type BacklinkChecker struct {
	Client    *http.Client
	UserAgent string
	MaxBody   int64
	// DiagnoseDNS adds a DNS class to the reason of unreachable results.
	DiagnoseDNS bool
}

func NewBacklinkChecker(timeout time.Duration) *BacklinkChecker {
	return &BacklinkChecker{
		Client:    &http.Client{Timeout: timeout},
		UserAgent: DefaultUserAgent,
		MaxBody:   defaultMaxBody,
	}
}

func (c *BacklinkChecker) Check(ctx context.Context, t domain.Target) domain.CheckResult {
	start := time.Now()
	res := domain.CheckResult{Backlink: t.Backlink, Reference: t.Reference}
	finish := func(st domain.Status, reason string) domain.CheckResult {
		res.Status = st
		res.Reason = reason
		res.LatencyMS = time.Since(start).Seconds() * 1000
		res.CheckedAt = time.Now().UTC()
		return res
	}

	target := NormalizeBacklink(t.Backlink)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return finish(domain.Unreachable, err.Error())
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		reason := err.Error()
		if c.DiagnoseDNS {
			dns := CheckDNS(ctx, extractHost(target))
			reason = strings.TrimSpace(fmt.Sprintf("%s dns=%s", reason, dns.Class))
		}
		return finish(domain.Unreachable, reason)
	}
	defer resp.Body.Close()

	code := resp.StatusCode
	res.ResponseCode = &code
	if code != http.StatusOK {
		return finish(domain.Unreachable, resp.Status)
	}

	limit := c.MaxBody
	if limit <= 0 {
		limit = defaultMaxBody
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return finish(domain.Unreachable, "read body: "+err.Error())
	}

	doc, enc, err := parseDocument(body, resp.Header.Get("Content-Type"))
	if err != nil {
		return finish(domain.ParseError, err.Error())
	}
	return finish(Classify(doc, t.Reference), resp.Status+" charset="+enc)
}

// parseDocument decodes body with the resolved charset and parses it.
func parseDocument(body []byte, contentType string) (*goquery.Document, string, error) {
	enc, name := ResolveEncoding(body, contentType)
	doc, err := decodeHTML(bytes.NewReader(body), enc)
	if err != nil {
		return nil, name, fmt.Errorf("parse html (%s): %w", name, err)
	}
	return doc, name, nil
}

// decodeHTML parses r as HTML after decoding it from enc. Decoders replace
// invalid bytes with U+FFFD, so only read errors surface here.
func decodeHTML(r io.Reader, enc encoding.Encoding) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(transform.NewReader(r, enc.NewDecoder()))
}

// NormalizeBacklink prefixes http:// when the backlink has no http(s) scheme.
func NormalizeBacklink(raw string) string {
	s := strings.TrimSpace(raw)
	l := strings.ToLower(s)
	if strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://") {
		return s
	}
	return "http://" + s
}

func extractHost(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return raw
	}
	return u.Hostname()
}
