package descriptor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalvas/servlet/mapping"
)

const sampleDescriptor = `
contexts:
  - path: /dummy
    filters: [request-id, recovery]
    servlets:
      - name: Mapping
        mappings: ["/mapping", "*.test"]
        params:
          kind: report
      - name: Default
        mappings: ["/"]
  - path: ""
    servlets:
      - name: Root
        mappings: [""]
`

func TestLoad(t *testing.T) {
	d, err := Load(strings.NewReader(sampleDescriptor))
	require.NoError(t, err)
	require.Len(t, d.Contexts, 2)

	c := d.Contexts[0]
	assert.Equal(t, "/dummy", c.Path)
	assert.Equal(t, []string{FilterRequestID, FilterRecovery}, c.Filters)
	require.Len(t, c.Servlets, 2)
	assert.Equal(t, "report", c.Servlets[0].Params["kind"])

	assert.Equal(t, []mapping.Registration{
		{Pattern: "/mapping", Handler: "Mapping"},
		{Pattern: "*.test", Handler: "Mapping"},
		{Pattern: "/", Handler: "Default"},
	}, c.Registrations())

	assert.Equal(t, "", d.Contexts[1].Path)
	assert.Equal(t, []string{""}, d.Contexts[1].Servlets[0].Mappings)
}

func TestLoadErrors(t *testing.T) {
	t.Run("empty document", func(t *testing.T) {
		_, err := Load(strings.NewReader(""))
		assert.ErrorIs(t, err, ErrInvalidDescriptor)
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := Load(strings.NewReader("contexts:\n  - path: /a\n    servlet: []\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "servlet")
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := Load(strings.NewReader("contexts: [\n"))
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "no contexts",
			doc:  "contexts: []\n",
			want: "Contexts needs at least 1 entries",
		},
		{
			name: "bad context path",
			doc:  "contexts:\n  - path: dummy/\n",
			want: `invalid context path "dummy/"`,
		},
		{
			name: "duplicate context path",
			doc:  "contexts:\n  - path: /a\n  - path: /a\n",
			want: "Contexts has duplicate entries",
		},
		{
			name: "unknown filter",
			doc:  "contexts:\n  - path: /a\n    filters: [gzip]\n",
			want: `unknown filter "gzip"`,
		},
		{
			name: "duplicate filter",
			doc:  "contexts:\n  - path: /a\n    filters: [recovery, recovery]\n",
			want: "Filters has duplicate entries",
		},
		{
			name: "missing servlet name",
			doc:  "contexts:\n  - path: /a\n    servlets:\n      - mappings: [/x]\n",
			want: "Name is required",
		},
		{
			name: "duplicate servlet name",
			doc:  "contexts:\n  - path: /a\n    servlets:\n      - name: s\n      - name: s\n",
			want: "Servlets has duplicate entries",
		},
		{
			name: "invalid pattern",
			doc:  "contexts:\n  - path: /a\n    servlets:\n      - name: s\n        mappings: [/foo/*/bar]\n",
			want: `invalid url pattern "/foo/*/bar"`,
		},
		{
			name: "pattern mapped twice",
			doc:  "contexts:\n  - path: /a\n    servlets:\n      - name: s1\n        mappings: [/x]\n      - name: s2\n        mappings: [/x]\n",
			want: `pattern "/x" is already mapped to "s1"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidDescriptor)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	t.Run("nil descriptor", func(t *testing.T) {
		assert.ErrorIs(t, Validate(nil), ErrInvalidDescriptor)
	})
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid", func(t *testing.T) {
		path := filepath.Join(dir, "servlets.yaml")
		require.NoError(t, os.WriteFile(path, []byte(sampleDescriptor), 0o600))

		d, err := LoadFile(path)
		require.NoError(t, err)
		assert.Len(t, d.Contexts, 2)
	})

	t.Run("invalid names the file", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("contexts: []\n"), 0o600))

		_, err := LoadFile(path)
		assert.ErrorIs(t, err, ErrInvalidDescriptor)
		assert.Contains(t, err.Error(), path)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(dir, "missing.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestMarshal(t *testing.T) {
	d, err := Load(strings.NewReader(sampleDescriptor))
	require.NoError(t, err)

	data, err := d.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), "  - path: /dummy\n")

	again, err := Load(strings.NewReader(string(data)))
	require.NoError(t, err)
	assert.Equal(t, d, again)
}
