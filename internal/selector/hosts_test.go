package selector

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeHosts(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hosts")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func newEditor() *HostsEditor {
	return NewHostsEditor(DefaultHostsConfig(), zerolog.Nop())
}

func TestBlock(t *testing.T) {
	e := newEditor()

	want := []string{
		"# begin ServerSelector entries",
		"1.2.3.4 global-lobby.nikke-kr.com",
		"1.2.3.4 jp-lobby.nikke-kr.com",
		"1.2.3.4 us-lobby.nikke-kr.com",
		"1.2.3.4 kr-lobby.nikke-kr.com",
		"1.2.3.4 sea-lobby.nikke-kr.com",
		"1.2.3.4 hmt-lobby.nikke-kr.com",
		"1.2.3.4 aws-na-dr.intlgame.com",
		"1.2.3.4 sg-vas.intlgame.com",
		"1.2.3.4 aws-na.intlgame.com",
		"1.2.3.4 na-community.playerinfinite.com",
		"1.2.3.4 common-web.intlgame.com",
		"1.2.3.4 li-sg.intlgame.com",
		"255.255.221.21 na.fleetlogd.com",
		"1.2.3.4 www.jupiterlauncher.com",
		"1.2.3.4 data-aws-na.intlgame.com",
		"255.255.221.21 sentry.io",
		"# end ServerSelector entries",
	}
	assert.Equal(t, want, e.Block("1.2.3.4", false))

	offline := e.Block("1.2.3.4", true)
	require.Len(t, offline, len(want)+1)
	assert.Equal(t, "1.2.3.4 cloud.nikke-kr.com", offline[2])
}

func TestAppendManagedBlock_Scenario(t *testing.T) {
	path := writeHosts(t, "127.0.0.1 localhost\n")
	e := newEditor()

	require.NoError(t, e.AppendManagedBlock(path, "1.2.3.4", true))

	got := readFile(t, path)
	want := "127.0.0.1 localhost\n\n" + strings.Join(e.Block("1.2.3.4", true), "\n") + "\n"
	assert.Equal(t, want, got)

	lines := strings.Split(got, "\n")
	assert.Equal(t, "127.0.0.1 localhost", lines[0])
	assert.Contains(t, lines, "1.2.3.4 global-lobby.nikke-kr.com")
	assert.Contains(t, lines, "1.2.3.4 cloud.nikke-kr.com")
	assert.Contains(t, lines, "255.255.221.21 na.fleetlogd.com")
	assert.Contains(t, lines, "255.255.221.21 sentry.io")
}

func TestAppendManagedBlock_Idempotent(t *testing.T) {
	path := writeHosts(t, "127.0.0.1 localhost\n::1 localhost\n")
	e := newEditor()

	require.NoError(t, e.AppendManagedBlock(path, "1.2.3.4", false))
	once := readFile(t, path)
	require.NoError(t, e.AppendManagedBlock(path, "1.2.3.4", false))
	assert.Equal(t, once, readFile(t, path))

	// a different address replaces the block instead of adding one
	require.NoError(t, e.AppendManagedBlock(path, "5.6.7.8", true))
	got := readFile(t, path)
	assert.Equal(t, 1, strings.Count(got, "# begin ServerSelector entries"))
	assert.Equal(t, 1, strings.Count(got, "# end ServerSelector entries"))
	assert.NotContains(t, got, "1.2.3.4")
	assert.Contains(t, got, "5.6.7.8 cloud.nikke-kr.com")
}

func TestRemoveManagedBlock_RoundTrip(t *testing.T) {
	for name, original := range map[string]string{
		"lf":    "# comment\n127.0.0.1 localhost\n\n10.0.0.1 nas\n",
		"crlf":  "# comment\r\n127.0.0.1 localhost\r\n",
		"empty": "",
	} {
		t.Run(name, func(t *testing.T) {
			path := writeHosts(t, original)
			e := newEditor()

			require.NoError(t, e.AppendManagedBlock(path, "1.2.3.4", false))
			if name == "crlf" {
				assert.Contains(t, readFile(t, path), "1.2.3.4 global-lobby.nikke-kr.com\r\n")
			}

			changed, err := e.RemoveManagedBlock(path)
			require.NoError(t, err)
			assert.True(t, changed)
			assert.Equal(t, original, readFile(t, path))
		})
	}
}

func TestAppendManagedBlock_NoTrailingNewline(t *testing.T) {
	path := writeHosts(t, "127.0.0.1 localhost")
	e := newEditor()

	require.NoError(t, e.AppendManagedBlock(path, "1.2.3.4", false))
	assert.True(t, strings.HasPrefix(readFile(t, path), "127.0.0.1 localhost\n\n# begin ServerSelector entries\n"))

	_, err := e.RemoveManagedBlock(path)
	require.NoError(t, err)
	// the terminator added for the last line stays
	assert.Equal(t, "127.0.0.1 localhost\n", readFile(t, path))
}

func TestRemoveManagedBlock_NoBlock(t *testing.T) {
	original := "127.0.0.1 localhost\n# unrelated comment\n"
	path := writeHosts(t, original)
	past := time.Now().Add(-time.Hour).Truncate(time.Second)
	require.NoError(t, os.Chtimes(path, past, past))

	changed, err := newEditor().RemoveManagedBlock(path)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, original, readFile(t, path))

	st, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, st.ModTime().Equal(past), "file must not be rewritten")
}

func TestRemoveManagedBlock_PreservesSurroundingLines(t *testing.T) {
	content := "127.0.0.1 localhost\n" +
		"\n" +
		"# BEGIN ServerSelector Entries\n" +
		"1.2.3.4 global-lobby.nikke-kr.com\n" +
		"# End ServerSelector Entries\n" +
		"10.0.0.1 nas\n" +
		"10.0.0.2 printer\n"
	path := writeHosts(t, content)

	changed, err := newEditor().RemoveManagedBlock(path)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "127.0.0.1 localhost\n10.0.0.1 nas\n10.0.0.2 printer\n", readFile(t, path))
}

func TestRemoveManagedBlock_PurgesFragments(t *testing.T) {
	// leftovers of interrupted runs: a start marker with no end, stray
	// mappings in any case, a lone end marker
	content := "127.0.0.1 localhost\n" +
		"# begin ServerSelector entries\n" +
		"1.2.3.4 global-lobby.nikke-kr.com\n" +
		"10.0.0.1 nas\n" +
		"9.9.9.9 SENTRY.IO\n" +
		"# end ServerSelector entries\n" +
		"# end ServerSelector entries\n" +
		"8.8.8.8 Cloud.Nikke-KR.com\n" +
		"10.0.0.2 printer\n"
	path := writeHosts(t, content)

	changed, err := newEditor().RemoveManagedBlock(path)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "127.0.0.1 localhost\n10.0.0.2 printer\n", readFile(t, path))
}

func TestRemoveManagedBlock_StartWithoutEnd(t *testing.T) {
	content := "127.0.0.1 localhost\n" +
		"# begin ServerSelector entries\n" +
		"1.2.3.4 global-lobby.nikke-kr.com\n" +
		"10.0.0.1 nas\n"
	path := writeHosts(t, content)

	changed, err := newEditor().RemoveManagedBlock(path)
	require.NoError(t, err)
	assert.True(t, changed)
	// without a bounded block only managed lines go
	assert.Equal(t, "127.0.0.1 localhost\n10.0.0.1 nas\n", readFile(t, path))
}

func TestRemoveManagedBlock_MissingFile(t *testing.T) {
	_, err := newEditor().RemoveManagedBlock(filepath.Join(t.TempDir(), "hosts"))
	assert.Error(t, err)
}

func TestAppendManagedBlock_CustomConfig(t *testing.T) {
	cfg := DefaultHostsConfig()
	cfg.Mappings = append(cfg.Mappings, Mapping{Host: "new-lobby.nikke-kr.com"})
	cfg.SinkholeAddr = "0.0.0.0"
	require.NoError(t, cfg.Validate())

	path := writeHosts(t, "")
	e := NewHostsEditor(cfg, zerolog.Nop())
	require.NoError(t, e.AppendManagedBlock(path, "1.2.3.4", false))

	got := readFile(t, path)
	assert.Contains(t, got, "1.2.3.4 new-lobby.nikke-kr.com\n")
	assert.Contains(t, got, "0.0.0.0 sentry.io\n")
}
