package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	t.Parallel()
	reg := DefaultPublisherRegistry()

	t.Run("known publisher by substring", func(t *testing.T) {
		t.Parallel()
		p := reg.Resolve("Reuters Fact Check")
		assert.Equal(t, "Reuters", p.Name)
		assert.InDelta(t, 0.95, p.Weight, 0.001)
	})

	t.Run("case insensitive", func(t *testing.T) {
		t.Parallel()
		p := reg.Resolve("SNOPES.com")
		assert.Equal(t, "Snopes", p.Name)
	})

	t.Run("satire publisher type", func(t *testing.T) {
		t.Parallel()
		p := reg.Resolve("The Onion")
		assert.Equal(t, "satire", p.Type)
	})

	t.Run("unknown publisher gets default weight", func(t *testing.T) {
		t.Parallel()
		p := reg.Resolve("Random Blog Nobody Knows")
		assert.Equal(t, "Random Blog Nobody Knows", p.Name)
		assert.InDelta(t, 0.5, p.Weight, 0.001)
	})
}

func TestLoadPublisherRegistry(t *testing.T) {
	t.Parallel()

	t.Run("loads yaml file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "publishers.yaml")
		content := `default_weight: 0.4
publishers:
  - id: example-news
    name: Example News
    weight: 0.8
    type: news
    region: us
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		reg, err := LoadPublisherRegistry(path)
		require.NoError(t, err)

		p := reg.Resolve("Example News Online")
		assert.Equal(t, "example-news", p.ID)
		assert.InDelta(t, 0.8, p.Weight, 0.001)

		unknown := reg.Resolve("someone else")
		assert.InDelta(t, 0.4, unknown.Weight, 0.001)
	})

	t.Run("empty path falls back to defaults", func(t *testing.T) {
		t.Parallel()
		reg, err := LoadPublisherRegistry("")
		require.NoError(t, err)
		assert.Equal(t, "Reuters", reg.Resolve("reuters").Name)
	})

	t.Run("missing file errors", func(t *testing.T) {
		t.Parallel()
		_, err := LoadPublisherRegistry("/does/not/exist.yaml")
		assert.Error(t, err)
	})
}
