package selector

import (
	"bytes"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/octopilot/server-selector/internal/util"
	"github.com/rs/zerolog"
)

// HostsEditor owns one marker-delimited block inside a hosts-like file.
type HostsEditor struct {
	cfg     HostsConfig
	log     zerolog.Logger
	prepare func(path string) error
}

// NewHostsEditor returns an editor for the given block layout.
func NewHostsEditor(cfg HostsConfig, log zerolog.Logger) *HostsEditor {
	return &HostsEditor{cfg: cfg, log: log, prepare: util.ClearReadOnly}
}

// line keeps its own terminator so untouched lines are written back byte for byte.
type line struct {
	text string
	eol  string
}

func splitLines(s string) []line {
	var out []line
	for len(s) > 0 {
		i := strings.IndexAny(s, "\r\n")
		if i < 0 {
			out = append(out, line{text: s})
			break
		}
		eol := s[i : i+1]
		if s[i] == '\r' && i+1 < len(s) && s[i+1] == '\n' {
			eol = "\r\n"
		}
		out = append(out, line{text: s[:i], eol: eol})
		s = s[i+len(eol):]
	}
	return out
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func (e *HostsEditor) isMarker(text string) bool {
	return containsFold(text, e.cfg.StartMarker) || containsFold(text, e.cfg.EndMarker)
}

func (e *HostsEditor) mentionsManagedHost(text string) bool {
	for _, h := range e.cfg.ManagedHosts() {
		if containsFold(text, h) {
			return true
		}
	}
	return false
}

// RemoveManagedBlock drops the managed block, plus any stray marker or managed
// hostname line left behind by an interrupted run. The file is only rewritten
// when a line was actually removed.
func (e *HostsEditor) RemoveManagedBlock(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	lines := splitLines(string(data))

	start, end := -1, -1
	for i, l := range lines {
		if start == -1 {
			if containsFold(l.text, e.cfg.StartMarker) {
				start = i
			}
			continue
		}
		if containsFold(l.text, e.cfg.EndMarker) {
			end = i
			break
		}
	}

	drop := make([]bool, len(lines))
	if start != -1 && end != -1 {
		for i := start; i <= end; i++ {
			drop[i] = true
		}
		// blank separator written by AppendManagedBlock
		if start > 0 && lines[start-1].text == "" {
			drop[start-1] = true
		}
	}

	var out strings.Builder
	removed := 0
	for i, l := range lines {
		if drop[i] || e.isMarker(l.text) || e.mentionsManagedHost(l.text) {
			removed++
			continue
		}
		out.WriteString(l.text)
		out.WriteString(l.eol)
	}
	if removed == 0 {
		return false, nil
	}

	if err := e.write(path, []byte(out.String())); err != nil {
		return false, err
	}
	e.log.Debug().Str("file", path).Int("lines", removed).Msg("removed managed hosts entries")
	return true, nil
}

// Block renders the managed block lines, markers included.
func (e *HostsEditor) Block(ip string, offline bool) []string {
	lines := []string{
		e.cfg.StartMarker,
		fmt.Sprintf("%s %s", ip, e.cfg.Primary),
	}
	if offline {
		lines = append(lines, fmt.Sprintf("%s %s", ip, e.cfg.Secondary))
	}
	for _, m := range e.cfg.Mappings {
		addr := ip
		if m.Sinkhole {
			addr = e.cfg.SinkholeAddr
		}
		lines = append(lines, fmt.Sprintf("%s %s", addr, m.Host))
	}
	return append(lines, e.cfg.EndMarker)
}

// AppendManagedBlock replaces any existing block with a fresh one pointing at ip.
// Repeated calls converge on exactly one block.
func (e *HostsEditor) AppendManagedBlock(path, ip string, offline bool) error {
	if _, err := e.RemoveManagedBlock(path); err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if strings.Contains(string(data), e.cfg.Primary) {
		return nil
	}

	eol := detectEOL(data)
	var b strings.Builder
	if len(data) > 0 && !bytes.HasSuffix(data, []byte("\n")) && !bytes.HasSuffix(data, []byte("\r")) {
		b.WriteString(eol)
	}
	b.WriteString(eol)
	for _, l := range e.Block(ip, offline) {
		b.WriteString(l)
		b.WriteString(eol)
	}

	if err := e.write(path, append(data, b.String()...)); err != nil {
		return err
	}
	e.log.Debug().Str("file", path).Str("ip", ip).Bool("offline", offline).Msg("appended managed hosts block")
	return nil
}

func (e *HostsEditor) write(path string, data []byte) error {
	if err := e.prepare(path); err != nil {
		return err
	}
	mode := os.FileMode(0o644)
	if st, err := os.Stat(path); err == nil {
		mode = st.Mode().Perm()
	}
	return os.WriteFile(path, data, mode)
}

func detectEOL(data []byte) string {
	if bytes.Contains(data, []byte("\r\n")) {
		return "\r\n"
	}
	if len(data) > 0 || runtime.GOOS != "windows" {
		return "\n"
	}
	return "\r\n"
}
