package icon

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mediaType string
		w, h      int
		want      Validity
	}{
		{"smallest", "image/png", 1, 1, Accept()},
		{"typical", "image/png", 32, 32, Accept()},
		{"largest", "image/png", 256, 256, Accept()},
		{"mixed case type", "Image/PNG", 48, 48, Accept()},
		{"type with parameters", "image/png; charset=binary", 48, 48, Accept()},
		{"zero edge", "image/png", 0, 0, Reject(ReasonSizeOutOfRange)},
		{"negative edge", "image/png", -4, -4, Reject(ReasonSizeOutOfRange)},
		{"too large", "image/png", 257, 257, Reject(ReasonSizeOutOfRange)},
		{"not square", "image/png", 32, 16, Reject(ReasonNotSquare)},
		{"jpeg", "image/jpeg", 32, 32, Reject(ReasonUnsupportedFormat)},
		{"empty type", "", 32, 32, Reject(ReasonUnsupportedFormat)},
		// Format is checked before shape.
		{"jpeg not square", "image/jpeg", 32, 16, Reject(ReasonUnsupportedFormat)},
		// Shape is checked before range.
		{"oversized not square", "image/png", 512, 300, Reject(ReasonNotSquare)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Candidate{MediaType: tt.mediaType, Width: tt.w, Height: tt.h, Payload: []byte{1}}
			assert.Equal(t, tt.want, Validate(c))
		})
	}
}

func TestValidate_SameInputSameVerdict(t *testing.T) {
	c := Candidate{MediaType: "image/png", Width: 300, Height: 300}
	assert.Equal(t, Validate(c), Validate(c))
}

func TestScreen(t *testing.T) {
	png := Candidate{MediaType: "image/png", Width: 16, Height: 16, Payload: filled(10, 1)}

	unreadable := png
	unreadable.Err = errors.New("broken")
	empty := png
	empty.Payload = nil
	notSquare := png
	notSquare.Height = 8

	tests := []struct {
		name    string
		c       Candidate
		maxSize int64
		want    Validity
	}{
		{"valid", png, 0, Accept()},
		{"within limit", png, 10, Accept()},
		{"over limit", png, 9, Reject(ReasonTooLarge)},
		{"unreadable wins", unreadable, 1, Reject(ReasonUnreadable)},
		{"empty", empty, 0, Reject(ReasonEmptyPayload)},
		{"falls through to core rules", notSquare, 0, Reject(ReasonNotSquare)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Screen(tt.c, tt.maxSize))
		})
	}
}

func TestValidity_String(t *testing.T) {
	assert.Equal(t, "valid", Accept().String())
	assert.Equal(t, "rejected(not_square)", Reject(ReasonNotSquare).String())
	assert.Equal(t, "unvalidated", Validity{}.String())
	assert.NotEmpty(t, ReasonSizeOutOfRange.Message())
}

func TestNormalizeName(t *testing.T) {
	tests := map[string]string{
		"":            "favicon.ico",
		"   ":         "favicon.ico",
		"app":         "app.ico",
		" app.ico ":   "app.ico",
		"APP.ICO":     "APP.ICO",
		"site.png":    "site.png.ico",
		"my icon.ico": "my icon.ico",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeName(in), "input %q", in)
	}
}
