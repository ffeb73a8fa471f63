package icon

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
)

var (
	// ErrEmptyInput is returned when there is nothing to encode.
	ErrEmptyInput = errors.New("icon: no valid images to encode")
	// ErrTooManyEntries is returned when the count does not fit the 16-bit header field.
	ErrTooManyEntries = errors.New("icon: too many entries for one container")
	// ErrContainerTooLarge is returned when an offset or size would overflow 32 bits.
	ErrContainerTooLarge = errors.New("icon: container exceeds 4 GiB")
)

// Encode assembles header, directory and payloads into one container.
// Entries are written in order and are not re-validated.
func Encode(entries []Entry) ([]byte, error) {
	if err := checkEntries(entries); err != nil {
		return nil, err
	}
	buf := bytes.NewBuffer(make([]byte, 0, ContainerSize(entries)))
	if _, err := writeContainer(buf, entries); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeTo streams the same bytes as Encode into w and returns the count written.
// Nothing is written when entries fail the structural checks.
func EncodeTo(w io.Writer, entries []Entry) (int64, error) {
	if err := checkEntries(entries); err != nil {
		return 0, err
	}
	return writeContainer(w, entries)
}

func checkEntries(entries []Entry) error {
	if len(entries) == 0 {
		return ErrEmptyInput
	}
	if len(entries) > MaxEntries {
		return ErrTooManyEntries
	}
	if ContainerSize(entries) > math.MaxUint32 {
		return ErrContainerTooLarge
	}
	return nil
}

func writeContainer(w io.Writer, entries []Entry) (int64, error) {
	count := len(entries)
	head := make([]byte, HeaderSize+DirEntrySize*count)

	binary.LittleEndian.PutUint16(head[0:], 0)
	binary.LittleEndian.PutUint16(head[2:], resourceType)
	binary.LittleEndian.PutUint16(head[4:], uint16(count))

	offset := uint32(len(head))
	for i, e := range entries {
		d := head[HeaderSize+DirEntrySize*i:]
		d[0] = dimensionByte(e.Width)
		d[1] = dimensionByte(e.Height)
		d[2] = 0 // palette
		d[3] = 0 // reserved
		binary.LittleEndian.PutUint16(d[4:], colorPlanes)
		binary.LittleEndian.PutUint16(d[6:], bitsPerPixel)
		binary.LittleEndian.PutUint32(d[8:], uint32(len(e.Payload)))
		binary.LittleEndian.PutUint32(d[12:], offset)
		offset += uint32(len(e.Payload))
	}

	n, err := w.Write(head)
	written := int64(n)
	if err != nil {
		return written, err
	}
	for _, e := range entries {
		n, err := w.Write(e.Payload)
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
	return written, nil
}
