package history

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a recorded pipeline run.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

var allStatuses = []Status{
	StatusPending,
	StatusRunning,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// ParseStatus converts user input into a Status value.
func ParseStatus(value string) (Status, bool) {
	candidate := Status(strings.ToLower(strings.TrimSpace(value)))
	_, ok := statusSet[candidate]
	return candidate, ok
}

// Statuses returns the known status values in lifecycle order.
func Statuses() []Status {
	out := make([]Status, len(allStatuses))
	copy(out, allStatuses)
	return out
}

// Run captures one content-extraction run.
//
// Method holds the winning transcription backend ("local" or "remote"),
// empty when transcription produced nothing. JSONPath and TextPath point at
// the persisted artifacts. BatchID links the run to a batch session when the
// run was started by the batch driver.
type Run struct {
	ID            string
	Source        string
	Status        Status
	Method        string
	SubtitleCount int
	JSONPath      string
	TextPath      string
	ErrorMessage  string
	BatchID       string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Finished reports whether the run reached a terminal status.
func (r *Run) Finished() bool {
	return r != nil && (r.Status == StatusCompleted || r.Status == StatusFailed)
}

// Batch captures one batch-driver session over a directory of videos.
type Batch struct {
	ID         string
	InputDir   string
	Total      int
	Succeeded  int
	Failed     int
	ReportPath string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
