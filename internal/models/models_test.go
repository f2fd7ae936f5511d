package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseScope(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want Scope
	}{
		{name: "absent_defaults_to_project", raw: "", want: ScopeProject},
		{name: "whitespace_defaults_to_project", raw: "  ", want: ScopeProject},
		{name: "tenant", raw: "tenant", want: ScopeTenant},
		{name: "system_mixed_case", raw: "System", want: ScopeSystem},
		{name: "project", raw: "project", want: ScopeProject},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ParseScope(tc.raw); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestListLen(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want int
	}{
		{name: "absent", raw: "", want: 0},
		{name: "null", raw: "null", want: 0},
		{name: "empty_array", raw: "[]", want: 0},
		{name: "two_items", raw: `["a", {"uid": "b"}]`, want: 2},
		{name: "object_is_not_a_list", raw: `{"uid": "a"}`, want: 0},
		{name: "string_is_not_a_list", raw: `"abc"`, want: 0},
		{name: "broken_array", raw: `[1, 2`, want: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ListLen(json.RawMessage(tc.raw)); got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestProfileKeyDistinguishesProjects(t *testing.T) {
	a := &Profile{UID: "p1", Scope: ScopeProject, ProjectUID: "proj-a"}
	b := &Profile{UID: "p1", Scope: ScopeProject, ProjectUID: "proj-b"}
	tenant := &Profile{UID: "p1", Scope: ScopeTenant, ProjectUID: "proj-a"}

	if a.Key() == b.Key() {
		t.Fatalf("expected distinct keys across projects, got %q", a.Key())
	}
	if tenant.Key() != "tenant/p1" {
		t.Fatalf("expected tenant key to ignore project, got %q", tenant.Key())
	}
}

func TestOutcomeRecordJSON(t *testing.T) {
	cases := []struct {
		name        string
		record      OutcomeRecord
		mustContain []string
		mustAbsent  []string
		uidOrAction string
	}{
		{
			name:        "unused_without_action",
			record:      OutcomeRecord{UID: "u1", Name: "p1", Version: "1.0.0", Scope: ScopeTenant, Status: StatusUnused},
			mustContain: []string{`"status":"UNUSED"`, `"scope":"tenant"`},
			mustAbsent:  []string{`"action"`, `"declined"`},
			uidOrAction: "u1",
		},
		{
			name:        "declined_marks_record",
			record:      OutcomeRecord{UID: "u2", Status: StatusInUse, Action: ActionSkipped, Declined: true},
			mustContain: []string{`"action":"Skipped"`, `"declined":true`},
			uidOrAction: "Skipped",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			payload, err := json.Marshal(tc.record)
			if err != nil {
				t.Fatalf("failed to marshal record: %v", err)
			}
			encoded := string(payload)
			for _, key := range tc.mustContain {
				if !strings.Contains(encoded, key) {
					t.Fatalf("expected JSON to contain %s, got %s", key, encoded)
				}
			}
			for _, key := range tc.mustAbsent {
				if strings.Contains(encoded, key) {
					t.Fatalf("expected JSON to not contain %s, got %s", key, encoded)
				}
			}
			if got := tc.record.UIDOrAction(); got != tc.uidOrAction {
				t.Fatalf("expected uid-or-action %q, got %q", tc.uidOrAction, got)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	summary := Summarize([]OutcomeRecord{
		{Status: StatusUnused},
		{Status: StatusInUse},
		{Status: StatusInUse},
		{Status: StatusDeleted},
		{Status: StatusFailed},
	})
	want := Summary{Total: 5, Unused: 1, InUse: 2, Deleted: 1, Failed: 1}
	if summary != want {
		t.Fatalf("expected %+v, got %+v", want, summary)
	}
}
