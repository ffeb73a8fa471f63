package eventbus

import "time"

const (
	EventCandidateRejected = "icon:candidate_rejected"
	EventIconBuilt         = "icon:built"
	EventArtifactStored    = "artifact:stored"
	EventArtifactDeleted   = "artifact:deleted"
)

type CandidateRejectedData struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Size   int    `json:"size"`
}

type IconBuiltData struct {
	Name     string        `json:"name"`
	Size     int           `json:"size"`
	Entries  int           `json:"entries"`
	Rejected int           `json:"rejected"`
	Duration time.Duration `json:"duration"`
}

type ArtifactData struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}
