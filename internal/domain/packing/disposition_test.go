package packing

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	t.Run("override wins over tag", func(t *testing.T) {
		overrides := Overrides{"1023667": DispositionFrozen}

		got := Resolve("1023667", "Beef Bones", "dairy", overrides)

		assert.Equal(t, DispositionFrozen, got)
	})

	t.Run("product name override", func(t *testing.T) {
		overrides := Overrides{"Beef Bones": DispositionFrozen}

		got := Resolve("42", "Beef Bones", "", overrides)

		assert.Equal(t, DispositionFrozen, got)
	})

	t.Run("lowercased name override", func(t *testing.T) {
		overrides := Overrides{"beef bones": DispositionFrozen}

		got := Resolve("42", "Beef Bones", "", overrides)

		assert.Equal(t, DispositionFrozen, got)
	})

	t.Run("tag fallback", func(t *testing.T) {
		assert.Equal(t, DispositionDairy, Resolve("1", "Milk", "dairy", nil))
		assert.Equal(t, DispositionFrozen, Resolve("1", "Chops", " Frozen ", nil))
	})

	t.Run("blank tag defaults to tote", func(t *testing.T) {
		assert.Equal(t, DispositionTote, Resolve("1", "Honey", "", nil))
	})

	t.Run("unknown tag defaults to tote", func(t *testing.T) {
		assert.Equal(t, DispositionTote, Resolve("1", "Honey", "shelf-stable", nil))
	})

	t.Run("resolution is total", func(t *testing.T) {
		// Whatever the inputs, exactly one of the three categories comes back.
		for _, tag := range []string{"", "dairy", "frozen", "tote", "???", "  "} {
			got := Resolve("", "", tag, Overrides{})
			assert.Contains(t, AllDispositions(), got)
		}
	})
}

func TestParseDisposition(t *testing.T) {
	d, ok := ParseDisposition(" Frozen ")
	require.True(t, ok)
	assert.Equal(t, DispositionFrozen, d)

	_, ok = ParseDisposition("refrigerated")
	assert.False(t, ok)

	assert.Equal(t, "Frozen", DispositionFrozen.Title())
}

func TestLoadOverrides(t *testing.T) {
	writeFile := func(t *testing.T, v any) string {
		t.Helper()
		data, err := json.Marshal(v)
		require.NoError(t, err)
		path := filepath.Join(t.TempDir(), "manual_dispositions.json")
		require.NoError(t, os.WriteFile(path, data, 0o644))
		return path
	}

	t.Run("loads id and name keys case-insensitively", func(t *testing.T) {
		path := writeFile(t, map[string]string{
			"1023667":    "Frozen",
			"Beef Bones": "frozen",
			"Raw Milk":   "DAIRY",
		})

		overrides, err := LoadOverrides(path)

		require.NoError(t, err)
		d, ok := overrides.Lookup("1023667", "")
		require.True(t, ok)
		assert.Equal(t, DispositionFrozen, d)

		d, ok = overrides.Lookup("", "raw milk")
		require.True(t, ok)
		assert.Equal(t, DispositionDairy, d)
	})

	t.Run("unknown disposition values are skipped", func(t *testing.T) {
		path := writeFile(t, map[string]string{"99": "shelf"})

		overrides, err := LoadOverrides(path)

		require.NoError(t, err)
		_, ok := overrides.Lookup("99", "")
		assert.False(t, ok)
	})

	t.Run("missing file degrades to empty map", func(t *testing.T) {
		overrides, err := LoadOverrides(filepath.Join(t.TempDir(), "nope.json"))

		assert.Error(t, err)
		assert.NotNil(t, overrides)
		assert.Empty(t, overrides)
	})

	t.Run("unparsable file degrades to empty map", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

		overrides, err := LoadOverrides(path)

		assert.Error(t, err)
		assert.Empty(t, overrides)
	})
}
