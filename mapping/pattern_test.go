package mapping

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePattern(t *testing.T) {
	tests := []struct {
		raw  string
		kind Kind
		key  string
	}{
		{"", KindContextRoot, ""},
		{"/", KindDefault, ""},
		{"/foo/bar", KindExact, "/foo/bar"},
		{"/foo/bar/*", KindPath, "/foo/bar"},
		{"/*", KindPath, ""},
		{"*.test", KindExtension, "test"},
		{"*.tar.gz", KindExtension, "tar.gz"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			p, err := ParsePattern(tt.raw, "H1")
			require.NoError(t, err)
			assert.Equal(t, tt.kind, p.Kind())
			assert.Equal(t, tt.key, p.key)
			assert.Equal(t, tt.raw, p.String())
			assert.Equal(t, "H1", p.Handler())
		})
	}
}

func TestParsePatternInvalid(t *testing.T) {
	for _, raw := range []string{"foo", "*", "*.", "/foo/*.jsp", "/a/*/b", "*./x", "/*/*", "*.j*"} {
		t.Run(raw, func(t *testing.T) {
			_, err := ParsePattern(raw, "H1")
			assert.ErrorIs(t, err, ErrInvalidPattern)
		})
	}
}

func TestKindMatchType(t *testing.T) {
	assert.Equal(t, MatchContextRoot, KindContextRoot.MatchType())
	assert.Equal(t, MatchExact, KindExact.MatchType())
	assert.Equal(t, MatchPath, KindPath.MatchType())
	assert.Equal(t, MatchExtension, KindExtension.MatchType())
	assert.Equal(t, MatchDefault, KindDefault.MatchType())
	assert.Equal(t, MatchUnknown, Kind(0).MatchType())
	assert.Equal(t, "PATH", KindPath.String())
}

func TestMatchType(t *testing.T) {
	t.Run("string", func(t *testing.T) {
		assert.Equal(t, "CONTEXT_ROOT", MatchContextRoot.String())
		assert.Equal(t, "UNKNOWN", MatchUnknown.String())
		assert.Equal(t, "MatchType(42)", MatchType(42).String())
	})

	t.Run("text round trip", func(t *testing.T) {
		var mt MatchType
		require.NoError(t, mt.UnmarshalText([]byte("EXTENSION")))
		assert.Equal(t, MatchExtension, mt)
		assert.Error(t, mt.UnmarshalText([]byte("WILDCARD")))
	})

	t.Run("json uses names", func(t *testing.T) {
		data, err := json.Marshal(Mapping{MatchValue: "/foo2", Pattern: "/foo/bar/*", MatchType: MatchPath, HandlerName: "H1"})
		require.NoError(t, err)
		assert.JSONEq(t, `{"matchValue":"/foo2","pattern":"/foo/bar/*","matchType":"PATH","handlerName":"H1"}`, string(data))
	})
}

func TestMappingIsZero(t *testing.T) {
	assert.True(t, Mapping{}.IsZero())
	assert.False(t, Mapping{MatchType: MatchContextRoot}.IsZero())
}
