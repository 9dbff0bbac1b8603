package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr         string        // status API bind address, e.g., "127.0.0.1:8080" or ":8080" (Docker)
	LogDir       string        // logs directory
	TargetsFile  string        // YAML list of backlink/reference pairs
	OutputCSV    string        // status table, overwritten every run
	OutputXLSX   string        // optional spreadsheet copy of the status table
	SlackWebhook string        // empty disables notifications
	HTTPTimeout  time.Duration // per backlink fetch
	Concurrency  int           // 1 = strictly sequential
	UserAgent    string        // empty uses the checker default
	DiagnoseDNS  bool          // add a DNS class to unreachable results

	APIKeys     []string // guard POST /api/check; empty = open (local dev)
	CheckPerMin int      // ad-hoc checks per client IP per minute; 0 = unlimited
	CheckBurst  int
	TrustProxy  bool // take client IPs from X-Forwarded-For (behind a reverse proxy only)

	RunOnStart  bool   // cmd/api: run one batch at startup into the in-memory store
	MetricsFile string // batch: write metrics in text format for a node_exporter textfile collector
}

func FromEnv() Config {
	// Bind address (Windows-friendly default)
	addr := os.Getenv("API_ADDR")
	if addr == "" {
		addr = "127.0.0.1:8080"
	}

	// Logs
	logDir := os.Getenv("LOG_DIR")
	if logDir == "" {
		logDir = "logs"
	}

	targets := os.Getenv("TARGETS_FILE")
	if targets == "" {
		targets = "targets.yaml"
	}

	out := os.Getenv("OUTPUT_CSV")
	if out == "" {
		out = "statuses.csv"
	}

	timeout := 30 * time.Second
	if v := os.Getenv("HTTP_TIMEOUT_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			timeout = time.Duration(ms) * time.Millisecond
		}
	}

	concurrency := intEnv("CONCURRENCY", 1, 1)

	diagnose := boolEnv("DNS_DIAGNOSTICS", true)

	return Config{
		Addr:         addr,
		LogDir:       logDir,
		TargetsFile:  targets,
		OutputCSV:    out,
		OutputXLSX:   os.Getenv("OUTPUT_XLSX"),
		SlackWebhook: os.Getenv("SLACK_WEBHOOK_URL"),
		HTTPTimeout:  timeout,
		Concurrency:  concurrency,
		UserAgent:    os.Getenv("USER_AGENT"),
		DiagnoseDNS:  diagnose,
		APIKeys:      splitCSV(os.Getenv("API_KEYS")),
		CheckPerMin:  intEnv("CHECK_RATE_PER_MIN", 30, 0),
		CheckBurst:   intEnv("CHECK_RATE_BURST", 5, 1),
		TrustProxy:   boolEnv("TRUST_PROXY", false),
		RunOnStart:   boolEnv("RUN_ON_START", false),
		MetricsFile:  os.Getenv("METRICS_TEXTFILE"),
	}
}

// intEnv reads an integer, falling back to def when unset,
// malformed or below floor.
func intEnv(key string, def, floor int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < floor {
		return def
	}
	return n
}

func boolEnv(key string, def bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return def
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
