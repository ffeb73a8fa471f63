package icon

import (
	"strings"

	"github.com/google/uuid"
)

// Status is the validation state of a candidate.
type Status int

const (
	Unvalidated Status = iota
	Valid
	Rejected
)

func (s Status) String() string {
	switch s {
	case Valid:
		return "valid"
	case Rejected:
		return "rejected"
	default:
		return "unvalidated"
	}
}

// Reason explains a rejection.
type Reason string

const (
	ReasonNone              Reason = ""
	ReasonUnsupportedFormat Reason = "unsupported_format"
	ReasonNotSquare         Reason = "not_square"
	ReasonSizeOutOfRange    Reason = "size_out_of_range"
	ReasonUnreadable        Reason = "unreadable"
	ReasonEmptyPayload      Reason = "empty_payload"
	ReasonTooLarge          Reason = "too_large"
)

// Message is the human readable form shown next to a rejected image.
func (r Reason) Message() string {
	switch r {
	case ReasonUnsupportedFormat:
		return "only PNG images can be embedded"
	case ReasonNotSquare:
		return "image is not square"
	case ReasonSizeOutOfRange:
		return "invalid size: edges must be between 1 and 256 pixels"
	case ReasonUnreadable:
		return "image could not be read"
	case ReasonEmptyPayload:
		return "file is empty"
	case ReasonTooLarge:
		return "file exceeds the upload limit"
	default:
		return ""
	}
}

// Validity is the verdict attached to a candidate.
type Validity struct {
	Status Status
	Reason Reason
}

func Accept() Validity { return Validity{Status: Valid} }

func Reject(reason Reason) Validity { return Validity{Status: Rejected, Reason: reason} }

func (v Validity) IsValid() bool { return v.Status == Valid }

func (v Validity) String() string {
	if v.Status == Rejected {
		return "rejected(" + string(v.Reason) + ")"
	}
	return v.Status.String()
}

// Candidate is one submitted image together with its verdict.
type Candidate struct {
	ID        string
	Name      string
	Payload   []byte
	MediaType string
	Width     int
	Height    int
	Validity  Validity
	// Err is set when the source could not be read or decoded.
	Err error
}

// NewCandidate assigns a fresh ID to an unvalidated candidate.
func NewCandidate(name string, payload []byte, mediaType string, width, height int) Candidate {
	return Candidate{
		ID:        uuid.NewString(),
		Name:      name,
		Payload:   payload,
		MediaType: mediaType,
		Width:     width,
		Height:    height,
	}
}

// Size is the payload length in bytes.
func (c Candidate) Size() int { return len(c.Payload) }

// Entry is one image handed to the encoder.
type Entry struct {
	Width   int
	Height  int
	Payload []byte
}

// EntryInfo describes an encoded entry without its payload.
type EntryInfo struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	Size   int `json:"size"`
}

// Artifact is a finished container and the name it should be saved under.
type Artifact struct {
	Name    string
	Data    []byte
	Entries []EntryInfo
}

// NormalizeName trims name, falls back to DefaultName and ensures a .ico suffix.
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultName
	}
	if !strings.HasSuffix(strings.ToLower(name), ".ico") {
		name += ".ico"
	}
	return name
}
