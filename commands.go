package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"shegen/internal/collision"
	"shegen/internal/config"
	"shegen/internal/editor"
	"shegen/internal/logging"
	"shegen/internal/render"
	"shegen/internal/shelang"
)

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

// newSession builds an editor session from the config. Width and height
// are the host surface in screen pixels.
func newSession(cfg *config.Config, logger *zap.Logger, width, height float64) *editor.Session {
	return editor.New(editor.Options{
		ContainerWidth:  width,
		ContainerHeight: height,
		GridSize:        cfg.GridSize,
		CanvasWidth:     cfg.CanvasWidth,
		CanvasHeight:    cfg.CanvasHeight,
		Policy:          collision.Policy{Magnet: cfg.Magnet, Layer: cfg.Layer},
		HistoryLimit:    cfg.HistoryLimit,
		Logger:          logger,
	})
}

// loadSchemeFile imports a file into a session.
func loadSchemeFile(s *editor.Session, path string) (*shelang.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	text, err := shelang.ReadScheme(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	r := s.ImportScheme(text)
	s.Filename = path
	return r, nil
}

func printIssues(path string, r *shelang.Report) {
	for _, issue := range r.Issues {
		fmt.Fprintf(os.Stderr, "%s: %s\n", path, issue)
	}
}

func runEditor(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	m := initialModel(cfg, logger)
	if len(args) == 1 {
		err := m.openFile(args[0])
		switch {
		case errors.Is(err, os.ErrNotExist):
			m.session.Filename = args[0]
		case err != nil:
			return err
		}
	}

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err = p.Run()
	return err
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	in, out := args[0], args[1]

	format, _ := cmd.Flags().GetString("format")
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(out)), ".")
	}
	if format != "svg" && format != "png" {
		return fmt.Errorf("unknown format %q (want svg or png)", format)
	}

	s := newSession(cfg, zap.NewNop(), 0, 0)
	r, err := loadSchemeFile(s, in)
	if err != nil {
		return err
	}
	printIssues(in, r)

	opts := render.Options{Title: strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))}
	if format == "png" {
		return render.SavePNG(out, s.Model, opts)
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := render.SVG(f, s.Model, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func runFmt(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	path := args[0]
	s := newSession(cfg, zap.NewNop(), 0, 0)
	r, err := loadSchemeFile(s, path)
	if err != nil {
		return err
	}
	printIssues(path, r)

	write, _ := cmd.Flags().GetBool("write")
	if !write {
		return s.ExportScheme(cmd.OutOrStdout(), shelang.EncodeOptions{})
	}

	var b strings.Builder
	if err := s.ExportScheme(&b, shelang.EncodeOptions{}); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	path := args[0]
	s := newSession(cfg, zap.NewNop(), 0, 0)
	r, err := loadSchemeFile(s, path)
	if err != nil {
		return err
	}
	printIssues(path, r)
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", path, r.Summary())
	return r.Err()
}
