// Package models contains the GORM persistence models and their
// conversions to and from the domain types.
package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/ffcsa/reports/internal/domain/report"
)

// RunModel maps report.Run to the runs table. Kinds and artifacts are
// stored as JSON text; they are read back whole and never queried by
// field.
type RunModel struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key"`
	Trigger         string    `gorm:"not null"`
	FulfillmentDate time.Time `gorm:"not null;index"`
	Kinds           string    `gorm:"not null"`
	Status          string    `gorm:"not null;index"`
	Error           string
	Artifacts       string
	StartedAt       time.Time `gorm:"not null;index"`
	FinishedAt      *time.Time
	CreatedAt       time.Time `gorm:"not null"`
	UpdatedAt       time.Time `gorm:"not null"`
}

// TableName overrides the GORM default
func (RunModel) TableName() string {
	return "runs"
}

// artifactRecord is the JSON shape of one stored artifact.
type artifactRecord struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// FromDomain populates the model from a domain run.
func (m *RunModel) FromDomain(run *report.Run) error {
	kinds := make([]string, len(run.Kinds))
	for i, k := range run.Kinds {
		kinds[i] = string(k)
	}
	kindsJSON, err := json.Marshal(kinds)
	if err != nil {
		return err
	}

	artifacts := make([]artifactRecord, len(run.Artifacts))
	for i, a := range run.Artifacts {
		artifacts[i] = artifactRecord{
			Kind: string(a.Kind),
			Name: a.Name,
			Path: a.Path,
			Size: a.Size,
		}
	}
	artifactsJSON, err := json.Marshal(artifacts)
	if err != nil {
		return err
	}

	m.ID = run.ID
	m.Trigger = string(run.Trigger)
	m.FulfillmentDate = run.FulfillmentDate
	m.Kinds = string(kindsJSON)
	m.Status = string(run.Status)
	m.Error = run.Error
	m.Artifacts = string(artifactsJSON)
	m.StartedAt = run.StartedAt
	m.FinishedAt = run.FinishedAt

	return nil
}

// ToDomain converts the model back to a domain run.
func (m *RunModel) ToDomain() (*report.Run, error) {
	var kindNames []string
	if m.Kinds != "" {
		if err := json.Unmarshal([]byte(m.Kinds), &kindNames); err != nil {
			return nil, err
		}
	}
	kinds := make([]report.Kind, len(kindNames))
	for i, k := range kindNames {
		kinds[i] = report.Kind(k)
	}

	var records []artifactRecord
	if m.Artifacts != "" {
		if err := json.Unmarshal([]byte(m.Artifacts), &records); err != nil {
			return nil, err
		}
	}
	artifacts := make([]report.Artifact, len(records))
	for i, r := range records {
		artifacts[i] = report.Artifact{
			Kind: report.Kind(r.Kind),
			Name: r.Name,
			Path: r.Path,
			Size: r.Size,
		}
	}

	return &report.Run{
		ID:              m.ID,
		Trigger:         report.Trigger(m.Trigger),
		FulfillmentDate: m.FulfillmentDate,
		Kinds:           kinds,
		Status:          report.Status(m.Status),
		Error:           m.Error,
		Artifacts:       artifacts,
		StartedAt:       m.StartedAt,
		FinishedAt:      m.FinishedAt,
	}, nil
}
