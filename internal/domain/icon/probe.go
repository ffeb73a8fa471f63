package icon

import (
	"bytes"
	"fmt"
	"image"
	"mime"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ProbeResult is what the dimension probe learned about a payload.
type ProbeResult struct {
	MediaType string
	Width     int
	Height    int
}

// Probe determines the media type and pixel dimensions of payload. A
// non-empty declared type wins over sniffing. Only the image header is
// decoded; pixels are never touched.
func Probe(payload []byte, declared string) (ProbeResult, error) {
	res := ProbeResult{MediaType: strings.TrimSpace(declared)}
	if len(payload) == 0 {
		return res, fmt.Errorf("empty payload")
	}
	if res.MediaType == "" || res.MediaType == "application/octet-stream" {
		res.MediaType = mimetype.Detect(payload).String()
	}

	if isPNG(res.MediaType) && !bytes.HasPrefix(payload, pngSignature) {
		return res, fmt.Errorf("declared %s but payload has no PNG signature", res.MediaType)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(payload))
	if err != nil {
		return res, fmt.Errorf("decode image header: %w", err)
	}
	res.Width = cfg.Width
	res.Height = cfg.Height
	if res.MediaType == "" {
		res.MediaType = "image/" + format
	}
	return res, nil
}

// MediaTypeFromName guesses a media type from a file extension.
func MediaTypeFromName(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return ""
	}
	if ext == ".png" {
		return MediaTypePNG
	}
	return mime.TypeByExtension(ext)
}
