package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	maxTags          = 128
	maxTagNameBytes  = 1024
	maxTagValueBytes = 3072
)

// Tag is a name/value pair attached to an uploaded data item.
type Tag struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func validateTags(tags []Tag) error {
	if len(tags) > maxTags {
		return fmt.Errorf("too many tags: %d > %d", len(tags), maxTags)
	}
	for _, t := range tags {
		if t.Name == "" || len(t.Name) > maxTagNameBytes {
			return fmt.Errorf("tag name %q: length must be 1..%d bytes", t.Name, maxTagNameBytes)
		}
		if t.Value == "" || len(t.Value) > maxTagValueBytes {
			return fmt.Errorf("tag %q value: length must be 1..%d bytes", t.Name, maxTagValueBytes)
		}
	}
	return nil
}

// encodeTags renders tags as an Avro array of {name: bytes, value: bytes}
// records. An empty list encodes to no bytes at all.
func encodeTags(tags []Tag) []byte {
	if len(tags) == 0 {
		return nil
	}

	// Avro longs are zig-zag varints, which is what binary.AppendVarint writes.
	buf := binary.AppendVarint(nil, int64(len(tags)))
	for _, t := range tags {
		buf = binary.AppendVarint(buf, int64(len(t.Name)))
		buf = append(buf, t.Name...)
		buf = binary.AppendVarint(buf, int64(len(t.Value)))
		buf = append(buf, t.Value...)
	}
	return binary.AppendVarint(buf, 0)
}

var errTagEncoding = errors.New("malformed tag encoding")

func decodeTags(b []byte) ([]Tag, error) {
	if len(b) == 0 {
		return nil, nil
	}

	var tags []Tag
	readLong := func() (int64, error) {
		v, n := binary.Varint(b)
		if n <= 0 {
			return 0, errTagEncoding
		}
		b = b[n:]
		return v, nil
	}
	readBytes := func() (string, error) {
		l, err := readLong()
		if err != nil || l < 0 || int64(len(b)) < l {
			return "", errTagEncoding
		}
		s := string(b[:l])
		b = b[l:]
		return s, nil
	}

	for {
		count, err := readLong()
		if err != nil {
			return nil, err
		}
		if count == 0 {
			break
		}
		if count < 0 {
			// negative block count is followed by the block byte size
			count = -count
			if _, err := readLong(); err != nil {
				return nil, err
			}
		}
		for i := int64(0); i < count; i++ {
			name, err := readBytes()
			if err != nil {
				return nil, err
			}
			value, err := readBytes()
			if err != nil {
				return nil, err
			}
			tags = append(tags, Tag{Name: name, Value: value})
		}
	}

	if len(b) != 0 {
		return nil, errTagEncoding
	}
	return tags, nil
}
