package otlcommon

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/npillmayer/otlcommon/internal/otbuild"
	"github.com/npillmayer/otlcommon/ot"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFamilyName(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	otf, err := FromBinary(testFont(map[uint16]string{1: "Test Sans", 2: "Bold"}).Bytes())
	require.NoError(t, err)
	family, subfamily := FamilyName(otf)
	assert.Equal(t, "Test Sans", family)
	assert.Equal(t, "Bold", subfamily)
	assert.Equal(t, "Test Sans Bold", FullName(otf))
}

func TestLoadOpenTypeFont(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	path := filepath.Join(t.TempDir(), "test.otf")
	data := testFont(map[uint16]string{1: "Test Sans", 4: "Test Sans Regular"}).Bytes()
	require.NoError(t, os.WriteFile(path, data, 0o644))
	f, err := LoadOpenTypeFont(path)
	require.NoError(t, err)
	assert.Equal(t, path, f.Filepath)
	assert.Equal(t, "Test Sans Regular", f.Fontname)
	assert.Equal(t, uint16(1000), f.OT.UnitsPerEm())
	//
	_, err = LoadOpenTypeFont(filepath.Join(t.TempDir(), "missing.otf"))
	assert.Error(t, err)
	_, err = ParseOpenTypeFont([]byte("not a font"))
	assert.ErrorIs(t, err, ot.ErrFontFormat)
}

func testFont(names map[uint16]string) *otbuild.Font {
	return otbuild.NewFont().
		Add("head", otbuild.Head(1000, 0)).
		Add("maxp", otbuild.MaxP(4)).
		Add("name", otbuild.Name(names))
}
