package icon

import "math"

// Container layout constants. All multi-byte fields are little-endian.
const (
	HeaderSize   = 6
	DirEntrySize = 16

	// MaxDimension is the largest edge length an entry may declare. It is
	// stored as 0 in the one-byte directory fields.
	MaxDimension = 256
	// MaxEntries is the largest count the 16-bit header field can hold.
	MaxEntries = math.MaxUint16

	resourceType = 1
	colorPlanes  = 1
	bitsPerPixel = 32

	// MediaTypePNG is the only payload format embedded in containers.
	MediaTypePNG = "image/png"
	// ContentType is served for finished containers.
	ContentType = "image/x-icon"
	// DefaultName is used when the caller supplies no output name.
	DefaultName = "favicon.ico"
)

var pngSignature = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

// dimensionByte encodes an edge length for the directory. 256 wraps to 0.
func dimensionByte(v int) byte {
	if v == MaxDimension {
		return 0
	}
	return byte(v)
}

// ContainerSize returns the exact byte length Encode produces for entries.
func ContainerSize(entries []Entry) int64 {
	total := int64(HeaderSize) + int64(DirEntrySize)*int64(len(entries))
	for _, e := range entries {
		total += int64(len(e.Payload))
	}
	return total
}
