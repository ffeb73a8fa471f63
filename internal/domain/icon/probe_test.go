package icon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbe_PNG(t *testing.T) {
	res, err := Probe(pngBytes(t, 24, 24), "")
	require.NoError(t, err)
	assert.Equal(t, "image/png", res.MediaType)
	assert.Equal(t, 24, res.Width)
	assert.Equal(t, 24, res.Height)
}

func TestProbe_DeclaredTypeWins(t *testing.T) {
	res, err := Probe(jpegBytes(t, 8, 4), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", res.MediaType)
	assert.Equal(t, 8, res.Width)
	assert.Equal(t, 4, res.Height)
}

func TestProbe_SniffsOctetStream(t *testing.T) {
	res, err := Probe(jpegBytes(t, 10, 10), "application/octet-stream")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", res.MediaType)
}

func TestProbe_DeclaredPNGWithoutSignature(t *testing.T) {
	_, err := Probe(jpegBytes(t, 10, 10), "image/png")
	assert.Error(t, err)
}

func TestProbe_Garbage(t *testing.T) {
	res, err := Probe([]byte("definitely not an image"), "")
	assert.Error(t, err)
	assert.NotEqual(t, MediaTypePNG, res.MediaType)
}

func TestProbe_Empty(t *testing.T) {
	_, err := Probe(nil, "image/png")
	assert.Error(t, err)
}

func TestMediaTypeFromName(t *testing.T) {
	assert.Equal(t, "image/png", MediaTypeFromName("a/b/icon.PNG"))
	assert.Equal(t, "image/jpeg", MediaTypeFromName("photo.jpg"))
	assert.Equal(t, "", MediaTypeFromName("noext"))
}
