package icons

import (
	"time"

	"ico-builder-go/internal/domain/icon"
)

// CandidateView is the JSON projection of one validated upload.
type CandidateView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	MediaType string `json:"media_type"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Size      int    `json:"size"`
	Valid     bool   `json:"valid"`
	Reason    string `json:"reason,omitempty"`
	Message   string `json:"message,omitempty"`
}

// ValidationView is returned by the validate endpoint and on failed builds.
type ValidationView struct {
	Candidates []CandidateView `json:"candidates"`
	Summary    icon.Summary    `json:"summary"`
}

// ArtifactView describes a stored container.
type ArtifactView struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Size        int64            `json:"size"`
	Entries     []icon.EntryInfo `json:"entries"`
	CreatedAt   time.Time        `json:"created_at"`
	ExpiresAt   *time.Time       `json:"expires_at,omitempty"`
	DownloadURL string           `json:"download_url,omitempty"`
}

func newValidationView(candidates []icon.Candidate, summary icon.Summary) ValidationView {
	views := make([]CandidateView, 0, len(candidates))
	for _, c := range candidates {
		views = append(views, CandidateView{
			ID:        c.ID,
			Name:      c.Name,
			MediaType: c.MediaType,
			Width:     c.Width,
			Height:    c.Height,
			Size:      c.Size(),
			Valid:     c.Validity.IsValid(),
			Reason:    string(c.Validity.Reason),
			Message:   c.Validity.Reason.Message(),
		})
	}
	return ValidationView{Candidates: views, Summary: summary}
}
