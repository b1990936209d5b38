package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ministryofjustice/operations-engineering-reports/internal/domain"
	"github.com/ministryofjustice/operations-engineering-reports/internal/metrics"
	"github.com/ministryofjustice/operations-engineering-reports/internal/port"
)

const maxEntryEcho = 256

var errMissingName = errors.New("missing required field \"name\"")

// IngestFailure describes one rejected batch entry.
type IngestFailure struct {
	Index  int    `json:"index"`
	Name   string `json:"name,omitempty"`
	Entry  string `json:"entry,omitempty"`
	Reason string `json:"reason"`
	Err    error  `json:"-"`
}

// IngestResult is the outcome of one batch. Accepted entries stay written
// even when later entries fail.
type IngestResult struct {
	BatchID  string          `json:"batch_id"`
	Accepted int             `json:"accepted"`
	Rejected int             `json:"rejected"`
	Failures []IngestFailure `json:"failures"`
}

// IngestService upserts batches of reports pushed by the producer job.
type IngestService struct {
	store     port.ReportStore
	decrypter port.PayloadDecrypter
}

// NewIngestService creates an ingestion coordinator. decrypter may be nil,
// in which case only plain JSON bodies are accepted.
func NewIngestService(store port.ReportStore, decrypter port.PayloadDecrypter) *IngestService {
	return &IngestService{store: store, decrypter: decrypter}
}

// IngestBody decodes a raw request body and ingests every entry in it.
func (s *IngestService) IngestBody(ctx context.Context, body []byte) (*IngestResult, error) {
	entries, err := s.DecodeBatch(body)
	if err != nil {
		return nil, err
	}
	return s.Ingest(ctx, entries), nil
}

// DecodeBatch splits a request body into entries. Accepted bodies are a
// JSON array of report strings or report objects, the legacy object
// {"data": [...]}, a single report object, or, when a decrypter is
// configured, an encrypted token (raw or as a JSON string) wrapping one of
// those. Any other body is a *port.DecodeError with Index -1.
func (s *IngestService) DecodeBatch(body []byte) ([]json.RawMessage, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, &port.DecodeError{Index: -1, Err: errors.New("empty body")}
	}

	if s.decrypter != nil && body[0] != '[' && body[0] != '{' {
		plain, err := s.decrypt(body)
		if err != nil {
			return nil, &port.DecodeError{Index: -1, Err: err}
		}
		body = bytes.TrimSpace(plain)
	}

	if len(body) == 0 {
		return nil, &port.DecodeError{Index: -1, Err: errors.New("empty body")}
	}

	switch body[0] {
	case '[':
		var entries []json.RawMessage
		if err := json.Unmarshal(body, &entries); err != nil {
			return nil, &port.DecodeError{Index: -1, Err: err}
		}
		return entries, nil
	case '{':
		var envelope struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(body, &envelope); err != nil {
			return nil, &port.DecodeError{Index: -1, Err: err}
		}
		// {"data": [...]} wraps a batch; {"name": ..., "data": {...}} is a
		// single stored item.
		if data := bytes.TrimSpace(envelope.Data); len(data) > 0 && data[0] == '[' {
			var entries []json.RawMessage
			if err := json.Unmarshal(data, &entries); err != nil {
				return nil, &port.DecodeError{Index: -1, Err: err}
			}
			return entries, nil
		}
		return []json.RawMessage{json.RawMessage(body)}, nil
	}
	return nil, &port.DecodeError{Index: -1, Err: errors.New("body is not a JSON array or object")}
}

func (s *IngestService) decrypt(body []byte) ([]byte, error) {
	token := body
	if body[0] == '"' {
		var str string
		if err := json.Unmarshal(body, &str); err != nil {
			return nil, err
		}
		token = []byte(str)
	}
	return s.decrypter.Decrypt(token)
}

// Ingest upserts each entry independently. A malformed entry, a missing
// name or a failed write is recorded and the loop moves on.
func (s *IngestService) Ingest(ctx context.Context, entries []json.RawMessage) *IngestResult {
	res := &IngestResult{
		BatchID:  uuid.NewString(),
		Failures: make([]IngestFailure, 0),
	}
	log := slog.With("batch_id", res.BatchID)

	for i, entry := range entries {
		report, err := decodeEntry(entry)
		if err != nil {
			res.reject(IngestFailure{Index: i, Entry: echo(entry), Err: &port.DecodeError{Index: i, Entry: echo(entry), Err: err}})
			log.Error("rejected report entry", "index", i, "error", err)
			continue
		}

		if _, err := s.store.Put(ctx, report.Name, report); err != nil {
			res.reject(IngestFailure{Index: i, Name: report.Name, Err: err})
			log.Error("failed to store report", "index", i, "name", report.Name, "error", err)
			continue
		}
		res.Accepted++
	}

	metrics.IngestBatch(res.Accepted, res.Rejected)
	log.Info("ingested report batch", "entries", len(entries), "accepted", res.Accepted, "rejected", res.Rejected)
	return res
}

func (r *IngestResult) reject(f IngestFailure) {
	f.Reason = f.Err.Error()
	r.Failures = append(r.Failures, f)
	r.Rejected++
}

// decodeEntry accepts a report either as a JSON object or as a JSON string
// holding the encoded object.
func decodeEntry(entry json.RawMessage) (domain.RepositoryReport, error) {
	var report domain.RepositoryReport

	raw := bytes.TrimSpace(entry)
	if len(raw) > 0 && raw[0] == '"' {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return report, err
		}
		raw = []byte(text)
	}

	if err := json.Unmarshal(raw, &report); err != nil {
		return report, err
	}
	if report.Name == "" {
		return report, errMissingName
	}
	return report, nil
}

func echo(entry json.RawMessage) string {
	if len(entry) > maxEntryEcho {
		return string(entry[:maxEntryEcho]) + "..."
	}
	return string(entry)
}
