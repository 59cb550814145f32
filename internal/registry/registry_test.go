package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	uidFile := writeFile(t, dir, "maps.txt", "UID1\n\n# a comment\nUID2\n  UID3  \n")
	mapFile := writeFile(t, dir, "maps_dict.txt", "UID1\tDodo *1* Sprint\nUID2\tDodo *2* Climb\nbadline\n")

	r, err := Load(uidFile, mapFile, zerolog.Nop())
	require.NoError(t, err)

	require.Equal(t, []string{"UID1", "UID2", "UID3"}, r.UIDs())
	require.Equal(t, "Dodo *1* Sprint", r.Name("UID1"))
	require.Equal(t, "UID3", r.Name("UID3"), "unnamed uids fall back to the uid")

	uid, ok := r.UIDByShortKey("1")
	require.True(t, ok)
	require.Equal(t, "UID1", uid)

	_, ok = r.UIDByShortKey("99")
	require.False(t, ok)
}

func TestLoadMissingNameTable(t *testing.T) {
	dir := t.TempDir()
	uidFile := writeFile(t, dir, "maps.txt", "UID1\n")

	r, err := Load(uidFile, filepath.Join(dir, "missing.txt"), zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, "UID1", r.Name("UID1"))
}

func TestLoadMissingUIDList(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(filepath.Join(dir, "missing.txt"), filepath.Join(dir, "missing2.txt"), zerolog.Nop())
	require.Error(t, err)
}
