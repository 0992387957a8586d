package shelang

import (
	"bytes"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"shegen/internal/diagram"
	"shegen/internal/viewport"
)

var stamp = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newModel() *diagram.Model {
	return diagram.NewModel(diagram.WithRand(rand.New(rand.NewSource(3))))
}

func decode(t *testing.T, text string) (*diagram.Model, *viewport.Viewport, *Report) {
	t.Helper()
	m := newModel()
	vp := viewport.New(800, 600)
	r := Decode(text, m, vp, zap.NewNop())
	require.NotNil(t, r)
	return m, vp, r
}

func addNode(t *testing.T, m *diagram.Model, spec diagram.NodeSpec) *diagram.Node {
	t.Helper()
	n, err := m.CreateNode(spec, diagram.Placement{})
	require.NoError(t, err)
	return n
}

func connect(t *testing.T, m *diagram.Model, from *diagram.Node, out int, to *diagram.Node, in int) {
	t.Helper()
	_, err := m.CreateWire(
		diagram.PortRef{NodeID: from.ID(), Index: out, Direction: diagram.Output},
		diagram.PortRef{NodeID: to.ID(), Index: in, Direction: diagram.Input},
	)
	require.NoError(t, err)
}

// edges describes connectivity by node title and port name, independent of
// ids.
func edges(m *diagram.Model) []string {
	var out []string
	for _, w := range m.Wires() {
		src, _ := m.Node(w.Source.NodeID)
		dst, _ := m.Node(w.Target.NodeID)
		out = append(out, fmt.Sprintf("%s.%s->%s.%s",
			src.Title, src.Outputs[w.Source.Index].Name,
			dst.Title, dst.Inputs[w.Target.Index].Name))
	}
	sort.Strings(out)
	return out
}

func TestEncodeLayout(t *testing.T) {
	m := newModel()
	vp := viewport.New(800, 600)
	a := addNode(t, m, diagram.NodeSpec{ID: "a", Title: "A", Outputs: 1, Color: "#fff", Position: &diagram.Point{X: 100, Y: 100}})
	b := addNode(t, m, diagram.NodeSpec{ID: "b", Title: "B", Inputs: 2, InputNames: []string{"clk", ""}, Color: "#000", Position: &diagram.Point{X: 400, Y: 100.5}})
	connect(t, m, a, 0, b, 1)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, m, vp, EncodeOptions{Now: stamp}))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "# SHELANG Scheme File\n"))
	assert.Contains(t, out, `width: "2000px",`)
	assert.Contains(t, out, "FRAME * {\n    name: \"box_a\",\n    title: \"A\",")
	assert.Contains(t, out, "position: {x: 400, y: 100.5}")
	assert.Contains(t, out, "input_names: [\n        \"clk\",\n        \"Input 1\"\n    ]\n}")
	assert.NotContains(t, out, "output_names")
	assert.Contains(t, out, `source: {box: "box_a", port: 0},`)
	assert.Contains(t, out, `target: {box: "box_b", port: 1}`)
	assert.Contains(t, out, `"timestamp": "2024-05-01T12:00:00Z"`)
	assert.Contains(t, out, `"version": "1.0"`)

	doc, issues := Parse(out)
	assert.Empty(t, issues)
	assert.Len(t, doc.Blocks, 7)
}

func TestRoundTrip(t *testing.T) {
	m := newModel()
	vp := viewport.New(800, 600)
	vp.CanvasWidth = 2500

	a := addNode(t, m, diagram.NodeSpec{Title: "Source \"quoted\"", Description: "line1\nline2", Outputs: 2,
		OutputNames: []string{"left", "right"}, Position: &diagram.Point{X: 10, Y: 20}})
	b := addNode(t, m, diagram.NodeSpec{Title: "Sink", Inputs: 2, Outputs: 1, Position: &diagram.Point{X: 400, Y: 20}})
	c := addNode(t, m, diagram.NodeSpec{Title: "Loop", Inputs: 1, Outputs: 1, Color: "rgb(1, 2, 3)", Position: &diagram.Point{X: 700, Y: 300}})
	connect(t, m, a, 0, b, 0)
	connect(t, m, a, 1, b, 1)
	connect(t, m, b, 0, c, 0)
	connect(t, m, c, 0, c, 0)

	text := EncodeToString(m, vp, EncodeOptions{Now: stamp})
	m2, vp2, r := decode(t, text)

	assert.NoError(t, r.Err())
	assert.Zero(t, r.Count(FormatError))
	assert.Equal(t, 2500.0, vp2.CanvasWidth)
	require.Equal(t, m.Len(), m2.Len())
	for i, n := range m.Nodes() {
		got := m2.Nodes()[i]
		assert.Equal(t, n.ID(), got.ID())
		assert.Equal(t, n.Title, got.Title)
		assert.Equal(t, n.Description, got.Description)
		assert.Equal(t, n.Position, got.Position)
		assert.Equal(t, n.Color, got.Color)
		assert.Equal(t, n.PortNames(diagram.Input), got.PortNames(diagram.Input))
		assert.Equal(t, n.PortNames(diagram.Output), got.PortNames(diagram.Output))
	}
	assert.Equal(t, edges(m), edges(m2))

	// Encoding is stable.
	assert.Equal(t, text, EncodeToString(m2, vp2, EncodeOptions{Now: stamp}))
}

func TestScenarioTwoNodesOneWire(t *testing.T) {
	m := newModel()
	vp := viewport.New(800, 600)
	a := addNode(t, m, diagram.NodeSpec{Title: "A", Outputs: 1, Position: &diagram.Point{X: 100, Y: 100}})
	b := addNode(t, m, diagram.NodeSpec{Title: "B", Inputs: 1, Position: &diagram.Point{X: 400, Y: 100}})
	connect(t, m, a, 0, b, 0)

	m2, _, r := decode(t, EncodeToString(m, vp, EncodeOptions{}))
	require.Len(t, m2.Wires(), 1)
	w := m2.Wires()[0]
	src, _ := m2.Node(w.Source.NodeID)
	dst, _ := m2.Node(w.Target.NodeID)
	assert.Len(t, src.Outputs, 1)
	assert.Len(t, dst.Inputs, 1)
	assert.Equal(t, 1, r.Wires)
}

func TestMissingPortCountsDefaultToOne(t *testing.T) {
	m, _, r := decode(t, `FRAME * {
    name: "box_x",
    title: "X",
    position: {x: 5, y: 6}
}`)
	require.Equal(t, 1, m.Len())
	n := m.Nodes()[0]
	assert.Len(t, n.Inputs, 1)
	assert.Len(t, n.Outputs, 1)
	assert.Equal(t, "x", n.ID())
	assert.Equal(t, 2, r.Count(FormatError))
	assert.NoError(t, r.Err())
}

func TestFrameDefaults(t *testing.T) {
	m, _, _ := decode(t, "FRAME * { }\nFRAME * { title: \"second\" }")
	require.Equal(t, 2, m.Len())
	nodes := m.Nodes()
	assert.Equal(t, "Box 1", nodes[0].Title)
	assert.Equal(t, diagram.Point{X: 100, Y: 100}, nodes[0].Position)
	assert.Equal(t, "second", nodes[1].Title)
	assert.Equal(t, diagram.Point{X: 150, Y: 150}, nodes[1].Position)
	assert.Contains(t, diagram.Palette, nodes[0].Color)
}

func TestPortNameSyntaxesAgree(t *testing.T) {
	frame := func(names string) string {
		return "FRAME * {\n    title: \"T\",\n    position: {x: 0, y: 0},\n    input_ports: 2,\n    output_ports: 1,\n" + names + "\n}"
	}
	variants := map[string]string{
		"bracketed": `    input_names: ["a", "b"], output_names: ["z"]`,
		"braced":    `    input_names: {"a", "b"}, output_names: {"z"}`,
		"labels":    `    input_labels: ["a", "b"], output_labels: {"z"}`,
		"per-port":  "    input1: \"a\",\n    input 2: \"b\"\n    output1: \"z\"",
	}
	for name, body := range variants {
		t.Run(name, func(t *testing.T) {
			m, _, r := decode(t, frame(body))
			assert.Empty(t, r.Issues)
			require.Equal(t, 1, m.Len())
			n := m.Nodes()[0]
			assert.Equal(t, []string{"a", "b"}, n.PortNames(diagram.Input))
			assert.Equal(t, []string{"z"}, n.PortNames(diagram.Output))
		})
	}
}

func TestPerPortNamesFillGaps(t *testing.T) {
	m, _, _ := decode(t, `FRAME * { input_ports: 3, output_ports: 0, input2: "mid", input9: "ignored" }`)
	n := m.Nodes()[0]
	assert.Equal(t, []string{"Input 0", "mid", "Input 2"}, n.PortNames(diagram.Input))
	assert.Empty(t, n.Outputs)
}

func TestBadWireIsSkipped(t *testing.T) {
	m, _, r := decode(t, `
FRAME * { name: "box_a", input_ports: 0, output_ports: 1 }
FRAME * { name: "box_b", input_ports: 1, output_ports: 0 }
CONTROL * { source: {box: "box_a", port: 0}, target: {box: "box_b", port: 0} }
CONTROL * { source: {box: "box_ghost", port: 0}, target: {box: "box_b", port: 0} }
CONTROL * { source: {box: "box_a", port: 4}, target: {box: "box_b", port: 0} }
CONTROL * { source: {box: "box_a"}, target: {box: "box_b", port: 0} }
CONTROL * { source: {box: "a", port: 0}, target: {box: "b", port: 0} }
`)
	assert.Len(t, m.Wires(), 2)
	assert.Equal(t, 5, r.Controls)
	assert.Equal(t, 2, r.Wires)
	assert.Equal(t, 2, r.Count(StructuralError))
	assert.ErrorIs(t, r.Err(), ErrBrokenWires)
	assert.Contains(t, r.Summary(), "3 wires skipped")
}

func TestOversizedFieldsAreCutNotDropped(t *testing.T) {
	title := strings.Repeat("t", diagram.MaxTitleLength+44)
	desc := strings.Repeat("d", diagram.MaxDescriptionLength+1)
	m, _, r := decode(t, `
FRAME * { name: "box_a", title: "`+title+`", description: "`+desc+`", position: {x: 0, y: 0}, input_ports: 0, output_ports: 1 }
FRAME * { name: "box_b", title: "B", position: {x: 300, y: 0}, input_ports: 1, output_ports: 0 }
FRAME * { name: "box_c", title: "C", position: {x: 600, y: 0}, input_ports: 100, output_ports: 0 }
CONTROL * { source: {box: "box_a", port: 0}, target: {box: "box_b", port: 0} }
CONTROL * { source: {box: "box_a", port: 0}, target: {box: "box_c", port: 63} }
`)
	require.Equal(t, 3, m.Len())
	assert.Equal(t, 2, r.Wires)
	assert.False(t, r.Has(StructuralError))
	assert.Equal(t, 3, r.Count(FormatError))
	assert.NoError(t, r.Err())

	a, ok := m.Node("a")
	require.True(t, ok)
	assert.Equal(t, title[:diagram.MaxTitleLength], a.Title)
	assert.Equal(t, desc[:diagram.MaxDescriptionLength], a.Description)

	c, ok := m.Node("c")
	require.True(t, ok)
	assert.Len(t, c.Inputs, diagram.MaxPorts)
}

func TestEmptyDocumentWarns(t *testing.T) {
	m := newModel()
	addNode(t, m, diagram.NodeSpec{Title: "old"})
	r := Decode("this is not a scheme", m, viewport.New(800, 600), nil)

	assert.Zero(t, m.Len(), "import clears the model first")
	assert.True(t, r.Has(EmptyDocument))
	assert.ErrorIs(t, r.Err(), ErrEmptyDocument)
}

func TestDuplicateFrameNames(t *testing.T) {
	m, _, r := decode(t, `
FRAME * { name: "box_a", title: "first", input_ports: 0, output_ports: 1, position: {x: 0, y: 0} }
FRAME * { name: "box_a", title: "second", input_ports: 1, output_ports: 0, position: {x: 0, y: 0} }
CONTROL * { source: {box: "box_a", port: 0}, target: {box: "box_a", port: 0} }
`)
	require.Equal(t, 2, m.Len())
	assert.NotEqual(t, m.Nodes()[0].ID(), m.Nodes()[1].ID())
	assert.Equal(t, 1, r.Count(FormatError))
	// Both ends resolve to the first frame, which has no input.
	assert.Empty(t, m.Wires())
	assert.Equal(t, 1, r.Count(StructuralError))
}

func TestCanvasSize(t *testing.T) {
	_, vp, r := decode(t, `CANVAS * { width: "3000px", height: 1200 }
FRAME * { title: "t", input_ports: 1, output_ports: 1, position: {x: 1, y: 1} }`)
	assert.Equal(t, 3000.0, vp.CanvasWidth)
	assert.Equal(t, 1200.0, vp.CanvasHeight)
	assert.Empty(t, r.Issues)

	_, vp, r = decode(t, `CANVAS * { width: "wide" }`)
	assert.Equal(t, viewport.DefaultCanvasWidth, vp.CanvasWidth)
	assert.Equal(t, 1, r.Count(FormatError))
}

func TestReadScheme(t *testing.T) {
	text, err := ReadScheme(strings.NewReader("\uFEFFFRAME * {\r\n}\r\n"))
	require.NoError(t, err)
	assert.Equal(t, "FRAME * {\n}\n", text)

	_, err = ReadScheme(bytes.NewReader([]byte{0x89, 'P', 'N', 'G', 0}))
	assert.ErrorIs(t, err, ErrNotText)
}
