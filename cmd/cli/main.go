package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

func main() {
	api := os.Getenv("API_BASE")
	if api == "" {
		api = "http://localhost:8080"
	}

	reader := bufio.NewReader(os.Stdin)
	backlink := prompt(reader, "Backlink page to inspect (e.g., https://example.com/post): ")
	reference := prompt(reader, "Reference URL it should link to (e.g., https://oxylabs.io/blog/what-is-proxy): ")
	if backlink == "" || reference == "" {
		fmt.Println("Both a backlink and a reference are required.")
		os.Exit(2)
	}

	body, _ := json.Marshal(map[string]string{"backlink": backlink, "reference": reference})
	req, err := http.NewRequest(http.MethodPost, strings.TrimRight(api, "/")+"/api/check", bytes.NewReader(body))
	if err != nil {
		fmt.Println("Invalid API_BASE:", err)
		os.Exit(2)
	}
	req.Header.Set("Content-Type", "application/json")
	if key := os.Getenv("API_KEY"); key != "" {
		req.Header.Set("X-API-Key", key)
	}

	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Println("Error contacting API:", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		fmt.Println("API returned status:", resp.Status)
		os.Exit(1)
	}

	var out struct {
		Status       string  `json:"status"`
		ResponseCode *int    `json:"response_code"`
		Reason       string  `json:"reason"`
		LatencyMS    float64 `json:"latency_ms"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		fmt.Println("Unexpected response:", err)
		os.Exit(1)
	}

	code := "None"
	if out.ResponseCode != nil {
		code = fmt.Sprint(*out.ResponseCode)
	}
	fmt.Printf("%s (response code %s, %.0f ms)\n", out.Status, code, out.LatencyMS)
	if out.Reason != "" {
		fmt.Println(out.Reason)
	}
}

func prompt(r *bufio.Reader, label string) string {
	fmt.Print(label)
	s, _ := r.ReadString('\n')
	return strings.TrimSpace(s)
}
