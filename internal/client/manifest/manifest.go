// Package manifest builds the path manifest that maps every uploaded file
// of a batch to its content id.
package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/permalink/internal/client/models"
	"github.com/dmitrijs2005/permalink/internal/common"
)

const (
	// ContentType is the media type gateways use to recognise a path manifest.
	ContentType = "application/x.arweave-manifest+json"

	Format  = "arweave/paths"
	Version = "0.1.0"
)

type Index struct {
	Path string `json:"path"`
}

type Entry struct {
	ID string `json:"id"`
}

// Paths is an insertion-ordered mapping of manifest path to entry.
type Paths struct {
	keys    []string
	entries map[string]Entry
}

func (p *Paths) set(path string, e Entry) {
	if p.entries == nil {
		p.entries = make(map[string]Entry)
	}
	if _, ok := p.entries[path]; !ok {
		p.keys = append(p.keys, path)
	}
	p.entries[path] = e
}

func (p Paths) Len() int { return len(p.keys) }

// Keys returns the paths in insertion order.
func (p Paths) Keys() []string {
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}

func (p Paths) Get(path string) (Entry, bool) {
	e, ok := p.entries[path]
	return e, ok
}

func (p Paths) Has(path string) bool {
	_, ok := p.entries[path]
	return ok
}

func (p Paths) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range p.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(p.entries[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (p *Paths) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("paths: expected object, got %v", tok)
	}

	*p = Paths{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("paths: expected string key, got %v", tok)
		}

		var e Entry
		if err := dec.Decode(&e); err != nil {
			return fmt.Errorf("paths: entry %q: %w", key, err)
		}
		p.set(key, e)
	}

	_, err = dec.Token()
	return err
}

// Manifest is the document stored on the network after the batch files.
type Manifest struct {
	Manifest string `json:"manifest"`
	Version  string `json:"version"`
	Index    Index  `json:"index"`
	Paths    Paths  `json:"paths"`
}

// Build maps files to ids positionally. The first file becomes the index.
func Build(files []models.File, ids []string) (*Manifest, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: cannot build manifest with zero files", common.ErrEmptyBatch)
	}
	if len(files) != len(ids) {
		return nil, fmt.Errorf("%w: %d files, %d ids", common.ErrCountMismatch, len(files), len(ids))
	}

	seen := make(map[string]struct{}, len(files))
	m := &Manifest{Manifest: Format, Version: Version}

	for i, f := range files {
		if ids[i] == "" {
			return nil, fmt.Errorf("%w: file %s", common.ErrMissingContentID, f.Name)
		}
		m.Paths.set(StablePath(f.Name, i, seen), Entry{ID: ids[i]})
	}

	m.Index.Path = m.Paths.keys[0]
	return m, nil
}

func (m *Manifest) Encode() ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	return data, nil
}
