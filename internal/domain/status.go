package domain

import (
	"fmt"
	"strconv"
)

// Status is the closed set of outcomes a backlink check can have.
// The zero value is not a valid status.
type Status int

const (
	Unreachable Status = iota + 1
	Noindex
	LinkNotFound
	LinkFoundNofollow
	LinkFoundDofollow
	ParseError
)

var statusLabels = map[Status]string{
	Unreachable:       "Backlink not reachable",
	Noindex:           "Noindex",
	LinkNotFound:      "Link was not found",
	LinkFoundNofollow: "Link found, nofollow",
	LinkFoundDofollow: "Link found, dofollow",
	ParseError:        "Parse error",
}

var statusKeys = map[Status]string{
	Unreachable:       "unreachable",
	Noindex:           "noindex",
	LinkNotFound:      "link_not_found",
	LinkFoundNofollow: "link_found_nofollow",
	LinkFoundDofollow: "link_found_dofollow",
	ParseError:        "parse_error",
}

// AllStatuses lists every valid status in decision order.
func AllStatuses() []Status {
	return []Status{Unreachable, Noindex, LinkNotFound, LinkFoundNofollow, LinkFoundDofollow, ParseError}
}

func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

func (s Status) String() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return "Status(" + strconv.Itoa(int(s)) + ")"
}

// Key is a snake_case identifier for log fields and metric-friendly names.
func (s Status) Key() string {
	if k, ok := statusKeys[s]; ok {
		return k
	}
	return "invalid"
}

func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid status %d", int(s))
	}
	return []byte(statusLabels[s]), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	st, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// ParseStatus maps a status label back to its Status.
func ParseStatus(label string) (Status, error) {
	for st, l := range statusLabels {
		if l == label {
			return st, nil
		}
	}
	return 0, fmt.Errorf("unknown status label %q", label)
}
