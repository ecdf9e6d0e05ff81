package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// JobStatus is the lifecycle state of a posting. Only active postings
// count against the plan quota.
type JobStatus string

const (
	JobStatusActive JobStatus = "active"
	JobStatusClosed JobStatus = "closed"
)

// JobPosting is a published (or closed) job offer owned by a recruiter.
type JobPosting struct {
	ID                     uuid.UUID `json:"id"`
	RecruiterID            uuid.UUID `json:"recruiterId"`
	Title                  string    `json:"title"`
	Description            string    `json:"description"`
	AIGeneratedDescription string    `json:"aiGeneratedDescription,omitempty"`
	Status                 JobStatus `json:"status"`
	CreatedAt              time.Time `json:"createdAt"`
	UpdatedAt              time.Time `json:"updatedAt"`
}

// JobDraft is the input for creating or updating a posting. A draft is
// publishable when it has a title and at least one description source;
// the manual description wins over the AI draft when both are present.
type JobDraft struct {
	Title                  string `json:"title"`
	Description            string `json:"description"`
	AIGeneratedDescription string `json:"aiGeneratedDescription"`
}

// ResolvedDescription returns the manual description when present,
// otherwise the AI-generated draft.
func (d *JobDraft) ResolvedDescription() string {
	if strings.TrimSpace(d.Description) != "" {
		return d.Description
	}
	return d.AIGeneratedDescription
}

// Validate checks the publishability gates that apply to both create and
// update: non-empty title and at least one description source.
func (d *JobDraft) Validate(op string) error {
	if strings.TrimSpace(d.Title) == "" {
		return Invalid(op, "Please add a title for the job posting.")
	}
	if strings.TrimSpace(d.Description) == "" && strings.TrimSpace(d.AIGeneratedDescription) == "" {
		return Invalid(op, "Please add a description or generate one with AI.")
	}
	return nil
}
