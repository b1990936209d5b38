package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ministryofjustice/operations-engineering-reports/internal/domain"
)

func allChecks(v bool) map[string]bool {
	m := map[string]bool{}
	for _, item := range domain.Checklist {
		m[string(item.Check)] = v
	}
	return m
}

func TestFailureReasonsAllFailing(t *testing.T) {
	t.Parallel()

	got := domain.RepositoryReport{Checks: allChecks(false)}.FailureReasons()

	require.Len(t, got, 8)
	assert.Equal(t, []string{
		"The default branch is not `main`",
		"Branch protection is not enabled on the `main` branch",
		"Pull request require reviews is not enabled",
		"Administrator pull requests require a review is not enabled",
		"The issues section is not enabled",
		"The number of pull request approvers is not enabled (`Require approvals`)",
		"License is not present/approved",
		"Description section is empty",
	}, got)
}

func TestFailureReasonsAllPassing(t *testing.T) {
	t.Parallel()

	got := domain.RepositoryReport{Checks: allChecks(true)}.FailureReasons()
	assert.Empty(t, got)
}

func TestFailureReasonsMissingCheckFails(t *testing.T) {
	t.Parallel()

	checks := allChecks(true)
	delete(checks, "has_license")

	got := domain.RepositoryReport{Checks: checks}.FailureReasons()
	assert.Equal(t, []string{"License is not present/approved"}, got)

	assert.Len(t, domain.RepositoryReport{}.FailureReasons(), 8)
}

func TestUnmarshalCurrentContract(t *testing.T) {
	t.Parallel()

	in := `{
		"name": "operations-engineering",
		"is_private": false,
		"status": true,
		"default_branch": "main",
		"last_push": "2023-05-17T08:50:26Z",
		"url": "https://github.com/ministryofjustice/operations-engineering",
		"checks": {"has_license": true},
		"stored_at": "2023-05-18T10:00:00Z"
	}`

	var r domain.RepositoryReport
	require.NoError(t, json.Unmarshal([]byte(in), &r))

	assert.Equal(t, "operations-engineering", r.Name)
	assert.True(t, r.Status)
	assert.Equal(t, "main", r.DefaultBranch)
	assert.Equal(t, map[string]bool{"has_license": true}, r.Checks)
	assert.Equal(t, time.Date(2023, 5, 18, 10, 0, 0, 0, time.UTC), r.StoredAt)
}

func TestUnmarshalLegacyShapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		in     string
		status bool
		checks map[string]bool
	}{
		{"report alias", `{"name":"a","status":true,"report":{"has_license":false}}`, true, map[string]bool{"has_license": false}},
		{"PASS string", `{"name":"a","status":"PASS"}`, true, nil},
		{"FAIL string", `{"name":"a","status":"FAIL"}`, false, nil},
		{"lowercase true string", `{"name":"a","status":"true"}`, true, nil},
		{"null status", `{"name":"a","status":null}`, false, nil},
		{"missing status", `{"name":"a"}`, false, nil},
		{"data envelope", `{"name":"a","data":{"status":true,"checks":{"has_description":true}}}`, true, map[string]bool{"has_description": true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var r domain.RepositoryReport
			require.NoError(t, json.Unmarshal([]byte(tt.in), &r))
			assert.Equal(t, "a", r.Name)
			assert.Equal(t, tt.status, r.Status)
			assert.Equal(t, tt.checks, r.Checks)
		})
	}
}

func TestUnmarshalRejectsUnknownStatus(t *testing.T) {
	t.Parallel()

	for _, in := range []string{`{"name":"a","status":"maybe"}`, `{"name":"a","status":1}`} {
		var r domain.RepositoryReport
		assert.Error(t, json.Unmarshal([]byte(in), &r), in)
	}
}

func TestUnmarshalIgnoresMalformedStoredAt(t *testing.T) {
	t.Parallel()

	var r domain.RepositoryReport
	require.NoError(t, json.Unmarshal([]byte(`{"name":"a","stored_at":"yesterday"}`), &r))
	assert.True(t, r.StoredAt.IsZero())
}

func TestStatusLabel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "PASS", domain.RepositoryReport{Status: true}.StatusLabel())
	assert.Equal(t, "FAIL", domain.RepositoryReport{}.StatusLabel())
}
