package classify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExactTitles_NilIsEmpty(t *testing.T) {
	var exact *ExactTitles
	assert.Equal(t, 0, exact.Len())
	assert.False(t, exact.Has("Picture-in-Picture"))
}

func TestExactTitles_Dedup(t *testing.T) {
	exact := NewExactTitles("Floating Player", "Floating  Player", " Floating Player ", "")
	assert.Equal(t, 1, exact.Len())
	assert.True(t, exact.Has("Floating Player"))
}

func TestParseMatchers(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		expected []string
		count    int
	}{
		{
			name:     "both browsers",
			data:     `{"firefox": ["Firefox PiP"], "chrome": ["Chrome PiP", "Brave PiP"]}`,
			expected: []string{"Firefox PiP", "Chrome PiP", "Brave PiP"},
			count:    3,
		},
		{
			name:     "missing key",
			data:     `{"chrome": ["Chrome PiP"]}`,
			expected: []string{"Chrome PiP"},
			count:    1,
		},
		{
			name:     "unknown key ignored",
			data:     `{"opera": ["Opera PiP"], "firefox": ["Firefox PiP"]}`,
			expected: []string{"Firefox PiP"},
			count:    1,
		},
		{
			name:     "non-array value skipped",
			data:     `{"firefox": "Firefox PiP", "chrome": ["Chrome PiP"]}`,
			expected: []string{"Chrome PiP"},
			count:    1,
		},
		{
			name:     "bad entries skipped",
			data:     `{"firefox": ["", 42, null, {"t": 1}, "Good  Title", ["x"]]}`,
			expected: []string{"Good Title"},
			count:    1,
		},
		{
			name:     "duplicates across keys collapse",
			data:     `{"firefox": ["Same"], "chrome": ["Same", " Same "]}`,
			expected: []string{"Same"},
			count:    1,
		},
		{
			name: "comments and trailing commas",
			data: `{
				// Firefox titles its PiP window per locale
				"firefox": ["Bild-im-Bild",],
				/* all Chromium derivatives */
				"chrome": ["Bild im Bild"],
			}`,
			expected: []string{"Bild-im-Bild", "Bild im Bild"},
			count:    2,
		},
		{
			name:  "empty object",
			data:  `{}`,
			count: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exact, err := ParseMatchers([]byte(tt.data))
			require.NoError(t, err)
			assert.Equal(t, tt.count, exact.Len())
			for _, title := range tt.expected {
				assert.True(t, exact.Has(title), "missing %q", title)
			}
		})
	}
}

func TestParseMatchers_NotAnObject(t *testing.T) {
	for _, data := range []string{`[]`, `"firefox"`, `42`, `null`, `{`, ``} {
		t.Run(data, func(t *testing.T) {
			_, err := ParseMatchers([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestLoadMatchers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pip-title-matchers.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"firefox": ["Firefox PiP"]}`), 0644))

	exact := LoadMatchers(path, nil)
	assert.Equal(t, 1, exact.Len())
	assert.True(t, Classify("Firefox  PiP", exact))
}

func TestLoadMatchers_FailuresAreNotFatal(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		exact := LoadMatchers(filepath.Join(dir, "missing.json"), nil)
		require.NotNil(t, exact)
		assert.Equal(t, 0, exact.Len())
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(path, []byte(`this is not json`), 0644))

		exact := LoadMatchers(path, nil)
		require.NotNil(t, exact)
		assert.Equal(t, 0, exact.Len())

		// built-in rules still apply
		assert.True(t, Classify("Picture-in-Picture", exact))
	})

	t.Run("directory", func(t *testing.T) {
		exact := LoadMatchers(dir, nil)
		assert.Equal(t, 0, exact.Len())
	})
}

func TestReadMatchers(t *testing.T) {
	dir := t.TempDir()

	exact, err := ReadMatchers(filepath.Join(dir, "missing.json"))
	require.NoError(t, err)
	assert.Equal(t, 0, exact.Len())

	path := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`["not", "an", "object"]`), 0644))
	_, err = ReadMatchers(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)

	_, err = ReadMatchers(dir)
	assert.Error(t, err)
}
