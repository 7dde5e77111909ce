package models

import "time"

const ActionAnalysisCompleted = "ANALYSIS_COMPLETED"

type User struct {
	ID       string `json:"id" yaml:"id"`
	Username string `json:"username" yaml:"username"`
}

// Anonymous is the submitter recorded when no user is signed in.
var Anonymous = User{ID: "anonymous", Username: "anonymous"}

// ActivityLogEntry records one completed analysis. Timestamp is Unix
// milliseconds.
type ActivityLogEntry struct {
	ID         string `json:"id" yaml:"id" firestore:"id"`
	UserID     string `json:"user_id" yaml:"user_id" firestore:"userId"`
	Username   string `json:"username" yaml:"username" firestore:"username"`
	Timestamp  int64  `json:"timestamp" yaml:"timestamp" firestore:"timestamp"`
	PaperTitle string `json:"paper_title" yaml:"paper_title" firestore:"paperTitle"`
	ActionType string `json:"action_type" yaml:"action_type" firestore:"actionType"`
}

func (e ActivityLogEntry) Time() time.Time {
	return time.UnixMilli(e.Timestamp).UTC()
}

// AnalysisRecord points at a stored AggregateResult.
type AnalysisRecord struct {
	RunID      string    `json:"run_id"`
	PaperTitle string    `json:"paper_title"`
	Location   string    `json:"location"`
	CreatedAt  time.Time `json:"created_at"`
}
