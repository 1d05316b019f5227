package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/permalink/internal/client/models"
	"github.com/dmitrijs2005/permalink/internal/common"
)

func files(names ...string) []models.File {
	out := make([]models.File, 0, len(names))
	for _, n := range names {
		out = append(out, models.NewFile(n, []byte(n)))
	}
	return out
}

func TestBuild_TwoFiles(t *testing.T) {
	m, err := Build(files("index.html", "app.js"), []string{"tx-1", "tx-2"})
	require.NoError(t, err)

	assert.Equal(t, Format, m.Manifest)
	assert.Equal(t, Version, m.Version)
	assert.Equal(t, 2, m.Paths.Len())
	assert.Equal(t, []string{"001-index.html", "002-app.js"}, m.Paths.Keys())
	assert.Equal(t, "001-index.html", m.Index.Path)
	assert.True(t, m.Paths.Has(m.Index.Path))

	e, ok := m.Paths.Get("002-app.js")
	require.True(t, ok)
	assert.Equal(t, "tx-2", e.ID)
}

func TestBuild_Errors(t *testing.T) {
	_, err := Build(nil, nil)
	assert.True(t, errors.Is(err, common.ErrEmptyBatch))

	_, err = Build(files("a", "b"), []string{"tx-1"})
	assert.True(t, errors.Is(err, common.ErrCountMismatch))

	_, err = Build(files("a", "b"), []string{"tx-1", ""})
	assert.True(t, errors.Is(err, common.ErrMissingContentID))
}

func TestBuild_InvariantsHoldForCollidingNames(t *testing.T) {
	names := []string{"a.txt", "A.TXT", "a.txt", "", "!!", "dir/a.txt", "dir\\a.txt"}
	ids := make([]string, len(names))
	for i := range ids {
		ids[i] = fmt.Sprintf("tx-%d", i)
	}

	m, err := Build(files(names...), ids)
	require.NoError(t, err)

	keys := m.Paths.Keys()
	assert.Len(t, keys, len(names))

	unique := map[string]struct{}{}
	for _, k := range keys {
		unique[k] = struct{}{}
		assert.Regexp(t, `^[a-z0-9._-]+$`, k)
	}
	assert.Len(t, unique, len(names))
	assert.True(t, m.Paths.Has(m.Index.Path))
	assert.Equal(t, keys[0], m.Index.Path)
}

func TestBuild_Deterministic(t *testing.T) {
	in := files("index.html", "style.css", "img/logo.png")
	ids := []string{"x1", "x2", "x3"}

	first, err := Build(in, ids)
	require.NoError(t, err)
	second, err := Build(in, ids)
	require.NoError(t, err)

	a, err := first.Encode()
	require.NoError(t, err)
	b, err := second.Encode()
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestManifest_WireFormat(t *testing.T) {
	m, err := Build(files("index.html", "app.js"), []string{"tx-1", "tx-2"})
	require.NoError(t, err)

	data, err := m.Encode()
	require.NoError(t, err)

	want := `{"manifest":"arweave/paths","version":"0.1.0","index":{"path":"001-index.html"},` +
		`"paths":{"001-index.html":{"id":"tx-1"},"002-app.js":{"id":"tx-2"}}}`
	assert.Equal(t, want, string(data))
}

func TestPaths_UnmarshalKeepsOrder(t *testing.T) {
	in := []byte(`{"manifest":"arweave/paths","version":"0.1.0","index":{"path":"b"},` +
		`"paths":{"b":{"id":"2"},"a":{"id":"1"}}}`)

	var m Manifest
	require.NoError(t, json.Unmarshal(in, &m))

	if diff := cmp.Diff([]string{"b", "a"}, m.Paths.Keys()); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}

	out, err := m.Encode()
	require.NoError(t, err)
	assert.JSONEq(t, string(in), string(out))
}
