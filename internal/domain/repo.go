package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// RepositoryReport is the single persisted record describing one GitHub
// repository and the outcome of the compliance checklist against it.
type RepositoryReport struct {
	Name          string          `json:"name"`
	IsPrivate     bool            `json:"is_private"`
	Status        bool            `json:"status"` // true = compliant, supplied by the producer
	DefaultBranch string          `json:"default_branch"`
	LastPush      string          `json:"last_push"`
	URL           string          `json:"url"`
	Checks        map[string]bool `json:"checks"`
	Infractions   []string        `json:"infractions,omitempty"`
	StoredAt      time.Time       `json:"stored_at"`
}

// Status labels used by the producer's older payloads and by badges.
const (
	StatusPass = "PASS"
	StatusFail = "FAIL"
)

// rawReport mirrors every field shape the ingestion job has ever sent.
type rawReport struct {
	Name          string           `json:"name"`
	IsPrivate     bool             `json:"is_private"`
	Status        json.RawMessage  `json:"status"`
	DefaultBranch string           `json:"default_branch"`
	LastPush      string           `json:"last_push"`
	URL           string           `json:"url"`
	Checks        map[string]bool  `json:"checks"`
	Report        map[string]bool  `json:"report"`
	Infractions   []string         `json:"infractions"`
	StoredAt      string           `json:"stored_at"`
	Data          *json.RawMessage `json:"data"`
}

// UnmarshalJSON accepts the current producer contract as well as the legacy
// shapes: `report` instead of `checks`, a PASS/FAIL string status, and the
// stored item envelope `{"name": ..., "data": {...}}`.
func (r *RepositoryReport) UnmarshalJSON(b []byte) error {
	var raw rawReport
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	if raw.Data != nil && bytes.HasPrefix(bytes.TrimSpace(*raw.Data), []byte("{")) {
		var inner RepositoryReport
		if err := json.Unmarshal(*raw.Data, &inner); err != nil {
			return fmt.Errorf("decode data envelope: %w", err)
		}
		if inner.Name == "" {
			inner.Name = raw.Name
		}
		*r = inner
		return nil
	}

	status, err := parseStatus(raw.Status)
	if err != nil {
		return err
	}

	checks := raw.Checks
	if checks == nil {
		checks = raw.Report
	}

	*r = RepositoryReport{
		Name:          raw.Name,
		IsPrivate:     raw.IsPrivate,
		Status:        status,
		DefaultBranch: raw.DefaultBranch,
		LastPush:      raw.LastPush,
		URL:           raw.URL,
		Checks:        checks,
		Infractions:   raw.Infractions,
	}
	// stored_at is server-assigned; only a well-formed echo of our own
	// value is kept so API responses round-trip.
	if t, err := time.Parse(time.RFC3339Nano, raw.StoredAt); err == nil {
		r.StoredAt = t
	}
	return nil
}

func parseStatus(raw json.RawMessage) (bool, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return false, nil
	}

	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return false, fmt.Errorf("status: expected boolean or string, got %s", string(raw))
	}
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case StatusPass, "TRUE":
		return true, nil
	case StatusFail, "FALSE":
		return false, nil
	}
	return false, fmt.Errorf("status: unknown value %q", s)
}

// StatusLabel returns PASS or FAIL.
func (r RepositoryReport) StatusLabel() string {
	if r.Status {
		return StatusPass
	}
	return StatusFail
}
