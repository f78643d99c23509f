package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RecordStatus is the stored outcome of a run.
type RecordStatus string

const (
	StatusCompleted     RecordStatus = "COMPLETED"
	StatusNotApplicable RecordStatus = "NOT_APPLICABLE"
	StatusError         RecordStatus = "ERROR"
)

const (
	KindAnalysis = "analysis"
	KindDynamic  = "dynamic"
)

// Record is the persisted form of a result envelope. Records are never updated;
// every run creates a new one.
type Record struct {
	ID         string          `json:"id"`
	Kind       string          `json:"kind"`
	Tool       string          `json:"tool"`
	Repository string          `json:"repository"`
	Status     RecordStatus    `json:"status"`
	Score      int             `json:"score"`
	Grade      Grade           `json:"grade"`
	CreatedAt  time.Time       `json:"createdAt"`
	Payload    json.RawMessage `json:"payload"`
}

// NewAnalysisRecord wraps an analyzer result.
func NewAnalysisRecord(r AnalysisResult) (Record, error) {
	status := StatusCompleted
	switch {
	case r.NotApplicable():
		status = StatusNotApplicable
	case !r.Success:
		status = StatusError
	}
	return newRecord(KindAnalysis, r.Metadata.Tool, r.Metadata.Repository, status, r.Score, r.Grade, r)
}

// NewDynamicRecord wraps a dynamic test result.
func NewDynamicRecord(r DynamicTestResult) (Record, error) {
	status := StatusCompleted
	if !r.Success {
		status = StatusError
	}
	return newRecord(KindDynamic, "dynamic:"+string(r.Details.TestType), r.Repository, status, r.Score, r.Grade, r)
}

func newRecord(kind, tool, repository string, status RecordStatus, score int, grade Grade, payload any) (Record, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Record{}, fmt.Errorf("encoding %s payload: %w", kind, err)
	}
	return Record{
		ID:         uuid.NewString(),
		Kind:       kind,
		Tool:       tool,
		Repository: repository,
		Status:     status,
		Score:      score,
		Grade:      grade,
		CreatedAt:  time.Now().UTC(),
		Payload:    data,
	}, nil
}
