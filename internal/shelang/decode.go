package shelang

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"shegen/internal/diagram"
	"shegen/internal/viewport"
)

// Block types the decoder reads. Anything else is parsed and ignored.
const (
	BlockCanvas  = "CANVAS"
	BlockFrame   = "FRAME"
	BlockControl = "CONTROL"
)

// Frame defaults for fields a FRAME block leaves out.
const (
	DefaultPorts   = 1
	staggerOrigin  = 100.0
	staggerSpacing = 50.0
)

// Decode replaces the contents of m with the scheme in text and applies
// the canvas size to vp. It never fails: missing fields are defaulted,
// wires that reference unknown boxes or ports are skipped, and everything
// of note is listed in the returned report and logged.
//
// Nodes are created through the model's normal constructors. A frame
// named "box_7" gets node id "7"; a name already taken gets a fresh id.
func Decode(text string, m *diagram.Model, vp *viewport.Viewport, logger *zap.Logger) *Report {
	if logger == nil {
		logger = zap.NewNop()
	}
	doc, parseIssues := Parse(text)
	r := &Report{Issues: parseIssues}

	m.Clear()
	applyCanvas(doc, vp, r)

	frames := doc.BlocksOf(BlockFrame)
	r.Frames = len(frames)
	ids := make(map[string]string, len(frames))
	for i, b := range frames {
		n, err := m.CreateNode(frameSpec(b, i, m, r, logger), diagram.Placement{})
		if err != nil {
			r.add(FormatError, b.Line, "frame %d skipped: %v", i+1, err)
			logger.Warn("frame skipped", zap.Int("line", b.Line), zap.Error(err))
			continue
		}
		r.Nodes++
		keys := []string{n.ID()}
		if name, ok := nameKeys.str(b); ok {
			keys = append(keys, frameKey(name))
		}
		for _, k := range keys {
			if _, seen := ids[k]; !seen {
				ids[k] = n.ID()
			}
		}
	}

	controls := doc.BlocksOf(BlockControl)
	r.Controls = len(controls)
	for _, b := range controls {
		if decodeWire(b, m, ids, r, logger) {
			r.Wires++
		}
	}

	if len(frames) == 0 {
		r.add(EmptyDocument, 0, "no %s blocks found", BlockFrame)
		logger.Warn("no frames found in scheme", zap.Int("blocks", len(doc.Blocks)))
	}
	for _, issue := range parseIssues {
		logger.Debug("parse issue", zap.Stringer("issue", issue))
	}
	logger.Info("scheme decoded",
		zap.Int("frames", r.Frames),
		zap.Int("nodes", r.Nodes),
		zap.Int("wires", r.Wires),
		zap.Int("issues", len(r.Issues)),
	)
	return r
}

func applyCanvas(doc *Document, vp *viewport.Viewport, r *Report) {
	blocks := doc.BlocksOf(BlockCanvas)
	if len(blocks) == 0 {
		return
	}
	b := blocks[0]
	if w, ok := widthKeys.float(b); ok && w > 0 {
		vp.CanvasWidth = w
	} else if widthKeys.present(b) {
		r.add(FormatError, b.Line, "canvas width is not a positive number")
	}
	if h, ok := heightKeys.float(b); ok && h > 0 {
		vp.CanvasHeight = h
	} else if heightKeys.present(b) {
		r.add(FormatError, b.Line, "canvas height is not a positive number")
	}
	vp.Clamp()
}

// frameSpec resolves every field of a FRAME block independently; each one
// falls back to its default when missing or malformed.
func frameSpec(b *Block, index int, m *diagram.Model, r *Report, logger *zap.Logger) diagram.NodeSpec {
	spec := diagram.NodeSpec{}

	if name, ok := nameKeys.str(b); ok {
		id := frameKey(name)
		if _, taken := m.Node(id); taken || id == "" {
			r.add(FormatError, b.Line, "frame name %q is not unique, using a new id", name)
		} else {
			spec.ID = id
		}
	}

	if title, ok := titleKeys.str(b); ok {
		spec.Title = fitText(title, diagram.MaxTitleLength, "title", b, r)
	} else {
		spec.Title = fmt.Sprintf("Box %d", index+1)
		missing(r, b, titleKeys, "title")
	}

	if desc, ok := descriptionKeys.str(b); ok {
		spec.Description = fitText(desc, diagram.MaxDescriptionLength, "description", b, r)
	}

	if pos, ok := resolvePosition(b); ok {
		spec.Position = &pos
	} else {
		off := staggerOrigin + staggerSpacing*float64(index)
		spec.Position = &diagram.Point{X: off, Y: off}
		if positionPresent(b) {
			r.add(FormatError, b.Line, "malformed position, placed at (%g, %g)", off, off)
		} else {
			r.add(FormatError, b.Line, "missing position, placed at (%g, %g)", off, off)
		}
	}

	if color, ok := colorKeys.str(b); ok {
		spec.Color = color
	}

	spec.Inputs = portCount(b, inputCountKeys, "input", r)
	spec.Outputs = portCount(b, outputCountKeys, "output", r)

	var via string
	spec.InputNames, via = resolveNames(b, diagram.Input, spec.Inputs)
	if via != "" {
		logger.Debug("input names resolved", zap.Int("line", b.Line), zap.String("via", via))
	}
	spec.OutputNames, via = resolveNames(b, diagram.Output, spec.Outputs)
	if via != "" {
		logger.Debug("output names resolved", zap.Int("line", b.Line), zap.String("via", via))
	}
	return spec
}

// fitText cuts text that is longer than a node allows.
func fitText(text string, max int, what string, b *Block, r *Report) string {
	out, cut := diagram.TruncateText(text, max)
	if cut {
		r.add(FormatError, b.Line, "%s longer than %d characters, truncated", what, max)
	}
	return out
}

func portCount(b *Block, keys keyVariants, what string, r *Report) int {
	if n, ok := keys.count(b); ok {
		if n > diagram.MaxPorts {
			r.add(FormatError, b.Line, "%s port count %d is more than %d, using %d", what, n, diagram.MaxPorts, diagram.MaxPorts)
			return diagram.MaxPorts
		}
		return n
	}
	if keys.present(b) {
		r.add(FormatError, b.Line, "malformed %s port count, using %d", what, DefaultPorts)
	} else {
		r.add(FormatError, b.Line, "missing %s port count, using %d", what, DefaultPorts)
	}
	return DefaultPorts
}

func missing(r *Report, b *Block, keys keyVariants, what string) {
	if keys.present(b) {
		r.add(FormatError, b.Line, "malformed %s, using default", what)
		return
	}
	r.add(FormatError, b.Line, "missing %s, using default", what)
}

func decodeWire(b *Block, m *diagram.Model, ids map[string]string, r *Report, logger *zap.Logger) bool {
	srcBox, srcPort, okS := resolveEndpoint(b, sourceKeys)
	dstBox, dstPort, okT := resolveEndpoint(b, targetKeys)
	if !okS || !okT {
		r.add(FormatError, b.Line, "wire without a readable source and target")
		logger.Warn("wire skipped: unreadable endpoints", zap.Int("line", b.Line))
		return false
	}

	srcID, okS := ids[frameKey(srcBox)]
	dstID, okT := ids[frameKey(dstBox)]
	if !okS || !okT {
		r.add(StructuralError, b.Line, "wire %s:%d -> %s:%d references a missing box", srcBox, srcPort, dstBox, dstPort)
		logger.Warn("wire skipped: missing box",
			zap.Int("line", b.Line),
			zap.String("source", srcBox),
			zap.String("target", dstBox),
			zap.Bool("source_found", okS),
			zap.Bool("target_found", okT),
		)
		return false
	}

	_, err := m.CreateWire(
		diagram.PortRef{NodeID: srcID, Index: srcPort, Direction: diagram.Output},
		diagram.PortRef{NodeID: dstID, Index: dstPort, Direction: diagram.Input},
	)
	if err != nil {
		r.add(StructuralError, b.Line, "wire %s:%d -> %s:%d: %v", srcBox, srcPort, dstBox, dstPort, err)
		logger.Warn("wire skipped", zap.Int("line", b.Line), zap.Error(err))
		return false
	}
	return true
}

// ErrNotText is returned by ReadScheme for binary input.
var ErrNotText = errors.New("shelang: input is not text")

// ReadScheme reads scheme text supplied by the host, dropping a UTF-8
// byte order mark and normalizing line endings.
func ReadScheme(rd io.Reader) (string, error) {
	data, err := io.ReadAll(rd)
	if err != nil {
		return "", fmt.Errorf("read scheme: %w", err)
	}
	if bytes.IndexByte(data, 0) >= 0 {
		return "", ErrNotText
	}
	data = bytes.TrimPrefix(data, []byte(bom))
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	return text, nil
}
