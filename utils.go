package main

import (
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"shegen/internal/diagram"
	"shegen/internal/viewport"
)

// canvasRows is the terminal height minus the status line.
func (m *model) canvasRows() int {
	if m.height < 2 {
		return 1
	}
	return m.height - 1
}

func (m *model) cursorScreen() viewport.Point {
	return cellCenter(m.cursorX, m.cursorY)
}

func (m *model) cursorWorld() diagram.Point {
	return m.session.Viewport.ScreenToWorld(m.cursorScreen())
}

// targetAtCursor finds the port, box or wire under the cursor. Ports win
// over boxes so a wire can start from a box edge.
func (m *model) targetAtCursor() target {
	s := m.session
	w := m.cursorWorld()

	var t target
	if ref, ok := s.Model.PortAt(w, portPickRadius/s.Viewport.Scale); ok {
		t.port, t.hasPort = ref, true
	}
	if n, ok := s.Model.NodeAt(w); ok {
		t.node = n
	} else if t.hasPort {
		t.node, _ = s.Model.Node(t.port.NodeID)
	}
	if t.node == nil {
		if hit, ok := s.Router.HitTest(m.cursorScreen(), wirePickTolerance); ok {
			t.wireID = hit.WireID
		}
	}
	return t
}

// afterChange schedules the deferred wire refresh when the canvas grew.
func (m *model) afterChange() tea.Cmd {
	if !m.session.NeedsRefresh() {
		return nil
	}
	return tea.Tick(refreshDelay, func(time.Time) tea.Msg { return refreshMsg{} })
}

func readClipboardText() (string, error) {
	if runtime.GOOS == "darwin" {
		if output, err := exec.Command("pbpaste", "-Prefer", "txt").Output(); err == nil {
			return string(output), nil
		}
	}
	return clipboard.ReadAll()
}

func isRTF(text string) bool {
	return strings.HasPrefix(text, "{\\rtf") || strings.Contains(text, "\\rtf1")
}

func isHTML(text string) bool {
	t := strings.TrimSpace(text)
	return strings.HasPrefix(t, "<") &&
		(strings.Contains(t, "<html") || strings.Contains(t, "<body") || strings.Contains(t, "<div") || strings.Contains(t, "<pre"))
}

// cleanClipboardText turns rich clipboard content back into scheme text:
// RTF and HTML markup is removed, control characters dropped and line
// endings normalized.
func cleanClipboardText(text string) string {
	switch {
	case isRTF(text):
		text = extractTextFromRTF(text)
	case isHTML(text):
		text = extractTextFromHTML(text)
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r == '\n' || r == '\t' || r >= 32 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// extractTextFromRTF keeps the plain text of an RTF document. Control
// words are dropped except paragraph and tab breaks; \'hh escapes and
// escaped braces are decoded. Destination groups such as font tables
// are skipped.
func extractTextFromRTF(rtf string) string {
	var b strings.Builder
	depth := 0
	skipDepth := -1
	for i := 0; i < len(rtf); i++ {
		c := rtf[i]
		switch c {
		case '{':
			depth++
			if skipDepth < 0 && strings.HasPrefix(rtf[i+1:], "\\*") {
				skipDepth = depth
			}
			if skipDepth < 0 {
				for _, dest := range []string{"\\fonttbl", "\\colortbl", "\\stylesheet", "\\info"} {
					if strings.HasPrefix(rtf[i+1:], dest) {
						skipDepth = depth
					}
				}
			}
			continue
		case '}':
			if depth == skipDepth {
				skipDepth = -1
			}
			depth--
			continue
		case '\r', '\n':
			continue
		}
		if skipDepth >= 0 {
			continue
		}
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		if i+1 >= len(rtf) {
			break
		}
		next := rtf[i+1]
		switch {
		case next == '\\' || next == '{' || next == '}':
			b.WriteByte(next)
			i++
		case next == '\'' && i+3 < len(rtf):
			if v, err := strconv.ParseUint(rtf[i+2:i+4], 16, 8); err == nil {
				b.WriteByte(byte(v))
			}
			i += 3
		case isLetter(next):
			j := i + 1
			for j < len(rtf) && isLetter(rtf[j]) {
				j++
			}
			word := rtf[i+1 : j]
			for j < len(rtf) && (rtf[j] == '-' || rtf[j] >= '0' && rtf[j] <= '9') {
				j++
			}
			if j < len(rtf) && rtf[j] == ' ' {
				j++
			}
			switch word {
			case "par", "line":
				b.WriteByte('\n')
			case "tab":
				b.WriteByte('\t')
			}
			i = j - 1
		default:
			i++
		}
	}
	return b.String()
}

func isLetter(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }

var htmlEntities = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", "\"",
	"&#39;", "'",
	"&nbsp;", " ",
	"&amp;", "&",
)

func extractTextFromHTML(html string) string {
	html = strings.NewReplacer("<br>", "\n", "<br/>", "\n", "<br />", "\n", "</p>", "\n", "</div>", "\n").Replace(html)
	var b strings.Builder
	inTag := false
	for _, r := range html {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return htmlEntities.Replace(b.String())
}
