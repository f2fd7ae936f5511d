package models

import (
	"encoding/json"
	"time"
)

// Status is the terminal classification of a processed profile.
type Status string

const (
	StatusUnused  Status = "UNUSED"
	StatusInUse   Status = "IN_USE"
	StatusDeleted Status = "DELETED"
	StatusFailed  Status = "FAILED"
)

// Action is what the run did with a processed profile.
type Action string

const (
	ActionNone         Action = ""
	ActionDeleted      Action = "Deleted"
	ActionSkipped      Action = "Skipped"
	ActionDeleteFailed Action = "Delete Failed"
)

// Mode selects the workflow of a run.
type Mode string

const (
	ModeAnalyze Mode = "analyze"
	ModeCleanup Mode = "cleanup"
)

// OutcomeRecord is the single result row emitted for a processed profile.
type OutcomeRecord struct {
	UID        string `json:"uid"`
	Name       string `json:"name"`
	Version    string `json:"version"`
	Scope      Scope  `json:"scope"`
	Project    string `json:"project"`
	Status     Status `json:"status"`
	Action     Action `json:"action,omitempty"`
	Declined   bool   `json:"declined,omitempty"` // operator said no; Status still reads IN_USE
	BackupPath string `json:"backup_path,omitempty"`
	Error      string `json:"error,omitempty"`
}

// UIDOrAction is the last report column: the action taken, or the uid when
// nothing was done.
func (o OutcomeRecord) UIDOrAction() string {
	if o.Action != ActionNone {
		return string(o.Action)
	}
	return o.UID
}

// DeletedItem is one entry of the deleted-profiles manifest.
type DeletedItem struct {
	ProfileUID  string          `json:"profileUid"`
	ProfileName string          `json:"profileName"`
	Version     string          `json:"version"`
	Detail      json.RawMessage `json:"fullDetailSnapshot"`
}

// Report is the complete output structure
type Report struct {
	Tool      string          `json:"tool"`
	Version   string          `json:"version"`
	Timestamp string          `json:"timestamp"`
	Metadata  Metadata        `json:"metadata"`
	Outcomes  []OutcomeRecord `json:"outcomes"`
	Deleted   []DeletedItem   `json:"deleted"`
	Errors    []string        `json:"errors,omitempty"`
}

// Metadata contains report generation info
type Metadata struct {
	RunID            string    `json:"run_id"`
	Mode             Mode      `json:"mode"`
	GeneratedAt      time.Time `json:"generated_at"`
	APIEndpoint      string    `json:"api_endpoint"`
	ProjectFilter    string    `json:"project_filter,omitempty"`
	ProfileFilter    string    `json:"profile_filter,omitempty"`
	ProfilesFound    int       `json:"profiles_found"`
	ProfilesSkipped  int       `json:"profiles_skipped"`
	AnalysisDuration string    `json:"analysis_duration"`
	BackupsEnabled   bool      `json:"backups_enabled"`
	DryRun           bool      `json:"dry_run"`
}

// Summary counts outcome records by status.
type Summary struct {
	Total   int `json:"total"`
	Unused  int `json:"unused"`
	InUse   int `json:"in_use"`
	Deleted int `json:"deleted"`
	Failed  int `json:"failed"`
}

// Summarize counts outcomes by status.
func Summarize(outcomes []OutcomeRecord) Summary {
	s := Summary{Total: len(outcomes)}
	for _, o := range outcomes {
		switch o.Status {
		case StatusUnused:
			s.Unused++
		case StatusInUse:
			s.InUse++
		case StatusDeleted:
			s.Deleted++
		case StatusFailed:
			s.Failed++
		}
	}
	return s
}
