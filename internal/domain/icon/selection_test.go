package icon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidate(name, mediaType string, w, h, size int) Candidate {
	return NewCandidate(name, filled(size, 7), mediaType, w, h)
}

func TestSelection_EmptySummary(t *testing.T) {
	sum := NewSelection(Limits{}).Summary()
	assert.Equal(t, Summary{Message: "select image files to include in the icon"}, sum)
}

func TestSelection_AddValidatesImmediately(t *testing.T) {
	sel := NewSelection(Limits{}).Add(
		candidate("a.png", "image/png", 16, 16, 10),
		candidate("b.png", "image/png", 16, 32, 10),
		candidate("c.jpg", "image/jpeg", 16, 16, 10),
	)

	got := sel.Candidates()
	require.Len(t, got, 3)
	assert.True(t, got[0].Validity.IsValid())
	assert.Equal(t, Reject(ReasonNotSquare), got[1].Validity)
	assert.Equal(t, Reject(ReasonUnsupportedFormat), got[2].Validity)

	sum := sel.Summary()
	assert.Equal(t, 3, sum.Total)
	assert.Equal(t, 1, sum.Valid)
	assert.Equal(t, 2, sum.Rejected)
	assert.True(t, sum.Ready)
	assert.Equal(t, "1 valid image(s) will be converted", sum.Message)
}

func TestSelection_CommandsDoNotMutateReceiver(t *testing.T) {
	base := NewSelection(Limits{})
	a := candidate("a.png", "image/png", 16, 16, 10)

	one := base.Add(a)
	assert.Equal(t, 0, base.Len())
	assert.Equal(t, 1, one.Len())

	removed := one.Remove(a.ID)
	assert.Equal(t, 1, one.Len())
	assert.Equal(t, 0, removed.Len())

	reset := one.Reset()
	assert.Equal(t, 1, one.Len())
	assert.Equal(t, 0, reset.Len())
}

func TestSelection_RemoveUnknownID(t *testing.T) {
	sel := NewSelection(Limits{}).Add(candidate("a.png", "image/png", 16, 16, 10))
	assert.Equal(t, 1, sel.Remove("missing").Len())
}

func TestSelection_AllRejected(t *testing.T) {
	sel := NewSelection(Limits{}).Add(candidate("big.png", "image/png", 512, 512, 10))

	sum := sel.Summary()
	assert.False(t, sum.Ready)
	assert.Equal(t, "no valid images to include in the icon", sum.Message)

	_, err := sel.Build("")
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestSelection_AcceptedKeepsSubmissionOrder(t *testing.T) {
	a := candidate("64.png", "image/png", 64, 64, 3)
	b := candidate("bad.png", "image/png", 64, 1, 3)
	c := candidate("16.png", "image/png", 16, 16, 5)

	entries := NewSelection(Limits{}).Add(a, b, c).Accepted()
	require.Len(t, entries, 2)
	assert.Equal(t, 64, entries[0].Width)
	assert.Equal(t, 16, entries[1].Width)
}

func TestSelection_ReAddReplacesInPlace(t *testing.T) {
	a := candidate("a.png", "image/png", 16, 16, 10)
	b := candidate("b.png", "image/png", 32, 32, 10)
	sel := NewSelection(Limits{}).Add(a, b)

	a.Width, a.Height = 48, 48
	sel = sel.Add(a)

	got := sel.Candidates()
	require.Len(t, got, 2)
	assert.Equal(t, a.ID, got[0].ID)
	assert.Equal(t, 48, got[0].Width)
}

func TestSelection_TooLargeUsesLimit(t *testing.T) {
	sel := NewSelection(Limits{MaxFileSize: 5}).Add(candidate("a.png", "image/png", 16, 16, 6))
	c := sel.Candidates()[0]
	assert.Equal(t, Reject(ReasonTooLarge), c.Validity)
}

func TestSelection_Build(t *testing.T) {
	sel := NewSelection(Limits{}).Add(
		candidate("16.png", "image/png", 16, 16, 100),
		candidate("32.png", "image/png", 32, 32, 200),
		candidate("256.png", "image/png", 256, 256, 300),
		candidate("bad.png", "image/png", 300, 300, 1),
	)

	art, err := sel.Build("  app ")
	require.NoError(t, err)
	assert.Equal(t, "app.ico", art.Name)
	assert.Len(t, art.Data, 654)
	assert.Equal(t, []EntryInfo{
		{Width: 16, Height: 16, Size: 100},
		{Width: 32, Height: 32, Size: 200},
		{Width: 256, Height: 256, Size: 300},
	}, art.Entries)
}

func TestSelection_BuildRespectsMaxEntries(t *testing.T) {
	sel := NewSelection(Limits{MaxEntries: 1}).Add(
		candidate("16.png", "image/png", 16, 16, 1),
		candidate("32.png", "image/png", 32, 32, 1),
	)
	_, err := sel.Build("x")
	assert.ErrorIs(t, err, ErrTooManyEntries)
}

func TestSelection_ZeroValueIsUsable(t *testing.T) {
	var sel Selection
	assert.Equal(t, 0, sel.Len())
	assert.Empty(t, sel.Candidates())
	assert.Equal(t, 1, sel.Add(candidate("a.png", "image/png", 1, 1, 1)).Len())
}
