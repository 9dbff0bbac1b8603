// cmd/preflight/main.go
package main

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/hamed0406/backlinkmonitor/internal/config"
)

func main() {
	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		os.Exit(1)
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	if err := godotenv.Load(); err == nil {
		ok(".env loaded")
	}
	cfg := config.FromEnv()

	targets, err := config.LoadTargets(cfg.TargetsFile)
	if err != nil {
		fail(fmt.Sprintf("TARGETS_FILE=%s: %v", cfg.TargetsFile, err))
	}
	ok(fmt.Sprintf("TARGETS_FILE=%s (%d targets)", cfg.TargetsFile, len(targets)))

	for name, path := range map[string]string{"OUTPUT_CSV": cfg.OutputCSV, "OUTPUT_XLSX": cfg.OutputXLSX} {
		if path == "" {
			continue
		}
		dir := filepath.Dir(path)
		if st, err := os.Stat(dir); err != nil || !st.IsDir() {
			fail(name + " directory " + dir + " does not exist.")
		}
		ok(name + "=" + path)
	}

	hook := strings.TrimSpace(cfg.SlackWebhook)
	if hook == "" {
		warn("SLACK_WEBHOOK_URL empty; problem reports will not be sent.")
	} else if u, err := url.Parse(hook); err != nil || u.Scheme != "https" || u.Host == "" {
		fail("SLACK_WEBHOOK_URL is not an https URL.")
	} else {
		ok("SLACK_WEBHOOK_URL present")
	}

	if _, _, err := net.SplitHostPort(cfg.Addr); err != nil {
		fail("API_ADDR=" + cfg.Addr + " is not host:port.")
	}
	ok("API_ADDR=" + cfg.Addr)

	if len(cfg.APIKeys) == 0 {
		warn("API_KEYS empty; POST /api/check is open to anyone who can reach API_ADDR.")
	}
	if cfg.Concurrency > 1 {
		ok(fmt.Sprintf("CONCURRENCY=%d", cfg.Concurrency))
	}

	ok("preflight passed")
}
