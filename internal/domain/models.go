package domain

import (
	"strconv"
	"time"
)

// Target is one backlink page and the reference URL it is expected to link to.
type Target struct {
	Backlink  string `json:"backlink" yaml:"backlink"`
	Reference string `json:"reference" yaml:"reference"`
}

type CheckResult struct {
	Backlink     string    `json:"backlink"`
	Reference    string    `json:"reference"`
	Status       Status    `json:"status"`
	ResponseCode *int      `json:"response_code"` // nil when the fetch itself failed
	Reason       string    `json:"reason,omitempty"`
	LatencyMS    float64   `json:"latency_ms"`
	CheckedAt    time.Time `json:"checked_at"`
}

// Code renders the response code the way the status table does.
func (r CheckResult) Code() string {
	if r.ResponseCode == nil {
		return "None"
	}
	return strconv.Itoa(*r.ResponseCode)
}

// ResultSet holds one CheckResult per Target, in target order.
type ResultSet []CheckResult

// Problems returns the results that need attention: everything that is not a
// followed link.
func (rs ResultSet) Problems() ResultSet {
	out := make(ResultSet, 0, len(rs))
	for _, r := range rs {
		if r.Status != LinkFoundDofollow {
			out = append(out, r)
		}
	}
	return out
}

// Counts tallies results per status label.
func (rs ResultSet) Counts() map[Status]int {
	m := make(map[Status]int, len(rs))
	for _, r := range rs {
		m[r.Status]++
	}
	return m
}

func IntPtr(i int) *int { return &i }
