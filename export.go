package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"shegen/internal/render"
	"shegen/internal/shelang"
)

func (m *model) startFileInput(op FileOperation) {
	m.mode = ModeFileInput
	m.fileOp = op
	m.errorMessage = ""
	m.filename = ""
	m.selectedFileIndex = -1
	if name := m.session.Filename; name != "" {
		m.filename = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	}
	if op == FileOpOpen {
		m.filename = ""
		m.scanSchemeFiles()
	}
}

// scanSchemeFiles lists .shelang files in the save directory, or in the
// working directory when none is configured.
func (m *model) scanSchemeFiles() {
	dir := m.config.SaveDirectory
	if dir == "" {
		dir = "."
	}
	entries, err := os.ReadDir(dir)
	m.fileList = m.fileList[:0]
	if err != nil {
		return
	}
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), shelang.FileExt) {
			m.fileList = append(m.fileList, e.Name())
		}
	}
	sort.Strings(m.fileList)
}

func (m *model) handleFileKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.mode = ModeNormal
		m.errorMessage = ""
		return nil
	case "up":
		if m.fileOp == FileOpOpen && m.selectedFileIndex > 0 {
			m.selectedFileIndex--
			m.filename = strings.TrimSuffix(m.fileList[m.selectedFileIndex], shelang.FileExt)
		}
		return nil
	case "down":
		if m.fileOp == FileOpOpen && m.selectedFileIndex < len(m.fileList)-1 {
			m.selectedFileIndex++
			m.filename = strings.TrimSuffix(m.fileList[m.selectedFileIndex], shelang.FileExt)
		}
		return nil
	case "backspace":
		if r := []rune(m.filename); len(r) > 0 {
			m.filename = string(r[:len(r)-1])
		}
		m.selectedFileIndex = -1
		return nil
	case "enter":
		return m.submitFilename()
	}
	if msg.Type == tea.KeyRunes {
		m.filename += string(msg.Runes)
		m.selectedFileIndex = -1
	}
	return nil
}

func (m *model) submitFilename() tea.Cmd {
	name := strings.TrimSpace(m.filename)
	if name == "" {
		m.errorMessage = "filename cannot be empty"
		return nil
	}
	path := m.config.GetSavePath(withExt(name, m.fileExt()))

	if m.fileOp == FileOpOpen {
		if err := m.openFile(path); err != nil {
			m.errorMessage = err.Error()
			return nil
		}
		m.mode = ModeNormal
		return m.afterChange()
	}

	if _, err := os.Stat(path); err == nil && m.config.Confirmations {
		m.pendingPath = path
		m.confirm(ConfirmOverwriteFile, "")
		return nil
	}
	m.performFileOp(path)
	return nil
}

func (m *model) fileExt() string {
	switch m.fileOp {
	case FileOpExportPNG:
		return ".png"
	case FileOpExportSVG:
		return ".svg"
	}
	return shelang.FileExt
}

func withExt(name, ext string) string {
	if strings.EqualFold(filepath.Ext(name), ext) {
		return name
	}
	return name + ext
}

// performFileOp writes the current session in the pending file format.
func (m *model) performFileOp(path string) {
	var err error
	switch m.fileOp {
	case FileOpSave:
		err = m.saveScheme(path)
	case FileOpExportPNG:
		err = render.SavePNG(path, m.session.Model, render.Options{})
	case FileOpExportSVG:
		err = m.exportSVG(path)
	}
	if err != nil {
		m.mode = ModeFileInput
		m.errorMessage = err.Error()
		return
	}
	m.mode = ModeNormal
	m.errorMessage = ""
	if m.fileOp != FileOpSave {
		m.successMessage = "wrote " + path
	}
}

func (m *model) saveScheme(path string) error {
	var b strings.Builder
	if err := m.session.ExportScheme(&b, shelang.EncodeOptions{}); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return err
	}
	m.session.Filename = path
	m.session.Dirty = false
	m.successMessage = "saved " + path
	m.logger.Info("scheme saved", zap.String("path", path), zap.Int("boxes", m.session.Model.Len()))
	return nil
}

func (m *model) exportSVG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if err := render.SVG(f, m.session.Model, render.Options{Title: title}); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// openFile loads a scheme, reporting the import summary in the status
// line. An empty document still opens.
func (m *model) openFile(path string) error {
	r, err := loadSchemeFile(m.session, path)
	if err != nil {
		return err
	}
	m.selected = ""
	m.reportImport(r)
	return nil
}

func (m *model) reportImport(r *shelang.Report) {
	m.logger.Info("scheme imported", zap.String("summary", r.Summary()))
	if err := r.Err(); err != nil {
		m.errorMessage = r.Summary()
		return
	}
	m.successMessage = r.Summary()
}

func (m *model) copyToClipboard() error {
	var b strings.Builder
	if err := m.session.ExportScheme(&b, shelang.EncodeOptions{}); err != nil {
		return err
	}
	if err := clipboard.WriteAll(b.String()); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	m.successMessage = "scheme copied to clipboard"
	return nil
}

var errEmptyClipboard = errors.New("clipboard is empty")

func (m *model) pasteFromClipboard() error {
	text, err := readClipboardText()
	if err != nil {
		return fmt.Errorf("read clipboard: %w", err)
	}
	text = cleanClipboardText(text)
	if strings.TrimSpace(text) == "" {
		return errEmptyClipboard
	}
	r := m.session.ImportScheme(text)
	m.session.Filename = ""
	m.selected = ""
	m.reportImport(r)
	return nil
}

func (m model) fileListView(rows int) []string {
	lines := []string{titleStyle.Render("Open a scheme:"), strings.Repeat("─", m.width)}
	if len(m.fileList) == 0 {
		lines = append(lines, "(no "+shelang.FileExt+" files found)")
	}

	maxFiles := rows - len(lines)
	if maxFiles < 1 {
		maxFiles = 1
	}
	start := 0
	if m.selectedFileIndex >= maxFiles {
		start = m.selectedFileIndex - maxFiles + 1
	}
	for i := start; i < len(m.fileList) && i < start+maxFiles; i++ {
		name := strings.TrimSuffix(m.fileList[i], shelang.FileExt)
		if i == m.selectedFileIndex {
			lines = append(lines, "> "+name+" <")
		} else {
			lines = append(lines, "  "+name)
		}
	}
	for len(lines) < rows {
		lines = append(lines, "")
	}
	return lines[:rows]
}
