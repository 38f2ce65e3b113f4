package reference

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbeddedDefaults(t *testing.T) {
	c, err := Load("", "")
	require.NoError(t, err)

	assert.True(t, c.IsProvince("Tehran"))
	assert.False(t, c.IsProvince("tehran"))
	assert.False(t, c.IsProvince("Atlantis"))
	assert.Len(t, c.Provinces(), 31)

	assert.True(t, c.IsSkill("electrician"))
	assert.True(t, c.IsGender("female"))
	assert.False(t, c.IsGender("unknown"))
}

func TestLoadFromFiles(t *testing.T) {
	dir := t.TempDir()
	provinces := filepath.Join(dir, "provinces.txt")
	catalog := filepath.Join(dir, "catalog.yaml")

	require.NoError(t, os.WriteFile(provinces, []byte("# header\nTehran\n\n  Qom  \nTehran\n"), 0o644))
	require.NoError(t, os.WriteFile(catalog, []byte("skills: [welder]\ngenders: [male, female]\n"), 0o644))

	c, err := Load(provinces, catalog)
	require.NoError(t, err)
	assert.Equal(t, []string{"Tehran", "Qom"}, c.Provinces())
	assert.Equal(t, []string{"welder"}, c.Skills())
}

func TestLoadRejectsEmptyProvinces(t *testing.T) {
	dir := t.TempDir()
	provinces := filepath.Join(dir, "provinces.txt")
	require.NoError(t, os.WriteFile(provinces, []byte("# nothing here\n"), 0o644))

	_, err := Load(provinces, "")
	assert.Error(t, err)
}

func TestProvincesReturnsCopy(t *testing.T) {
	c := New([]string{"Tehran", "Fars"}, []string{"mason"}, []string{"male"})
	list := c.Provinces()
	list[0] = "Changed"
	assert.Equal(t, "Tehran", c.Provinces()[0])
}
