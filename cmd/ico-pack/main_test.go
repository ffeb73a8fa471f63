package main

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, w, h))))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestRun_WritesContainer(t *testing.T) {
	dir := t.TempDir()
	a := writePNG(t, dir, "a.png", 16, 16)
	b := writePNG(t, dir, "b.png", 32, 32)
	skipped := writePNG(t, dir, "wide.png", 32, 16)
	out := filepath.Join(dir, "out.ico")

	var stdout, stderr bytes.Buffer
	code := run([]string{"-o", out, a, skipped, b}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 1, 0, 2, 0}, data[:6])
	assert.Contains(t, stdout.String(), "not_square")
	assert.Contains(t, stdout.String(), "wrote "+out)
}

func TestRun_AllRejected(t *testing.T) {
	dir := t.TempDir()
	wide := writePNG(t, dir, "wide.png", 32, 16)
	out := filepath.Join(dir, "out.ico")

	var stdout, stderr bytes.Buffer
	code := run([]string{"-o", out, wide}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	_, err := os.Stat(out)
	assert.True(t, os.IsNotExist(err))
}

func TestRun_Usage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 2, run(nil, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "usage")
}
