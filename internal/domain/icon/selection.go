package icon

import (
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Limits bounds what a selection accepts and builds.
type Limits struct {
	// MaxFileSize rejects larger payloads as TooLarge. <= 0 disables the check.
	MaxFileSize int64
	// MaxEntries caps how many valid images one build may contain. <= 0 means MaxEntries.
	MaxEntries int
}

// Summary is the status projection a UI renders for a selection.
type Summary struct {
	Total    int    `json:"total"`
	Valid    int    `json:"valid"`
	Rejected int    `json:"rejected"`
	Ready    bool   `json:"ready"`
	Message  string `json:"message"`
}

// Selection is an ordered set of validated candidates keyed by ID. Every
// command returns a new Selection; the receiver is never modified.
type Selection struct {
	limits Limits
	items  *orderedmap.OrderedMap[string, Candidate]
}

func NewSelection(limits Limits) Selection {
	return Selection{
		limits: limits,
		items:  orderedmap.New[string, Candidate](),
	}
}

func (s Selection) clone() Selection {
	out := NewSelection(s.limits)
	if s.items == nil {
		return out
	}
	for pair := s.items.Oldest(); pair != nil; pair = pair.Next() {
		out.items.Set(pair.Key, pair.Value)
	}
	return out
}

// Add screens and validates each candidate and appends it in submission
// order. A candidate with an existing ID replaces it in place.
func (s Selection) Add(candidates ...Candidate) Selection {
	out := s.clone()
	for _, c := range candidates {
		c.Validity = Screen(c, s.limits.MaxFileSize)
		out.items.Set(c.ID, c)
	}
	return out
}

// Remove drops the candidate with id. Unknown IDs are ignored.
func (s Selection) Remove(id string) Selection {
	out := s.clone()
	out.items.Delete(id)
	return out
}

// Reset returns an empty selection with the same limits.
func (s Selection) Reset() Selection {
	return NewSelection(s.limits)
}

func (s Selection) Len() int {
	if s.items == nil {
		return 0
	}
	return s.items.Len()
}

func (s Selection) Get(id string) (Candidate, bool) {
	if s.items == nil {
		return Candidate{}, false
	}
	return s.items.Get(id)
}

// Candidates returns every candidate in submission order.
func (s Selection) Candidates() []Candidate {
	out := make([]Candidate, 0, s.Len())
	if s.items == nil {
		return out
	}
	for pair := s.items.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

// Accepted returns the encoder input for the valid candidates, in order.
func (s Selection) Accepted() []Entry {
	var entries []Entry
	for _, c := range s.Candidates() {
		if !c.Validity.IsValid() {
			continue
		}
		entries = append(entries, Entry{Width: c.Width, Height: c.Height, Payload: c.Payload})
	}
	return entries
}

func (s Selection) Summary() Summary {
	sum := Summary{Total: s.Len()}
	for _, c := range s.Candidates() {
		if c.Validity.IsValid() {
			sum.Valid++
		} else {
			sum.Rejected++
		}
	}
	sum.Ready = sum.Valid > 0
	switch {
	case sum.Total == 0:
		sum.Message = "select image files to include in the icon"
	case sum.Ready:
		sum.Message = fmt.Sprintf("%d valid image(s) will be converted", sum.Valid)
	default:
		sum.Message = "no valid images to include in the icon"
	}
	return sum
}

// Build encodes the accepted entries under the normalized name.
func (s Selection) Build(name string) (Artifact, error) {
	entries := s.Accepted()
	limit := s.limits.MaxEntries
	if limit <= 0 || limit > MaxEntries {
		limit = MaxEntries
	}
	if len(entries) > limit {
		return Artifact{}, fmt.Errorf("%w: %d valid images, limit %d", ErrTooManyEntries, len(entries), limit)
	}

	data, err := Encode(entries)
	if err != nil {
		return Artifact{}, err
	}

	infos := make([]EntryInfo, len(entries))
	for i, e := range entries {
		infos[i] = EntryInfo{Width: e.Width, Height: e.Height, Size: len(e.Payload)}
	}
	return Artifact{Name: NormalizeName(name), Data: data, Entries: infos}, nil
}
