package shelang

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"shegen/internal/diagram"
	"shegen/internal/viewport"
)

// Format metadata written to every file.
const (
	FormatVersion = "1.0"
	EditorName    = "SHEGEN Canvas"
	FileExt       = ".shelang"
)

// EncodeOptions tunes Encode.
type EncodeOptions struct {
	// Now stamps the metadata block. Zero means time.Now.
	Now time.Time
}

// Encode writes the model and canvas size as SheLang: header comments,
// the fixed WINDOW, PAGE and CANVAS blocks, one FRAME per node, one
// CONTROL per wire and a VARIABLE metadata block.
func Encode(w io.Writer, m *diagram.Model, vp *viewport.Viewport, opts EncodeOptions) error {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	var b strings.Builder
	b.WriteString("# SHELANG Scheme File\n")
	b.WriteString("# Created with SHEGEN Canvas Editor\n\n")

	writeBlock(&b, "WINDOW", []string{
		`name: "main_win"`,
		`type: "terminal"`,
		`title: "SHEGEN"`,
	})
	writeBlock(&b, "PAGE", []string{
		`name: "main_page"`,
		`decoration: {fill-both, expand-both}`,
		`layout: "absolute"`,
	})
	writeBlock(&b, "CANVAS", []string{
		`name: "main_canvas"`,
		"width: " + quote(formatNumber(vp.CanvasWidth)+"px"),
		"height: " + quote(formatNumber(vp.CanvasHeight)+"px"),
		`decoration: {align: center}`,
	})

	for _, n := range m.Nodes() {
		writeBlock(&b, "FRAME", frameFields(n))
	}

	for i, wire := range m.Wires() {
		writeBlock(&b, "CONTROL", []string{
			fmt.Sprintf(`name: "wire_%d"`, i),
			`type: "connection"`,
			fmt.Sprintf("source: {box: %s, port: %d}", quote(boxPrefix+wire.Source.NodeID), wire.Source.Index),
			fmt.Sprintf("target: {box: %s, port: %d}", quote(boxPrefix+wire.Target.NodeID), wire.Target.Index),
		})
	}

	writeBlock(&b, "VARIABLE", []string{
		`name: "metadata"`,
		`type: "object"`,
		"value: {\n" +
			"        \"timestamp\": " + quote(now.UTC().Format(time.RFC3339)) + ",\n" +
			"        \"version\": " + quote(FormatVersion) + ",\n" +
			"        \"editor\": " + quote(EditorName) + "\n" +
			"    }",
	})

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write scheme: %w", err)
	}
	return nil
}

// EncodeToString is Encode into a string.
func EncodeToString(m *diagram.Model, vp *viewport.Viewport, opts EncodeOptions) string {
	var b strings.Builder
	_ = Encode(&b, m, vp, opts)
	return b.String()
}

func frameFields(n *diagram.Node) []string {
	fields := []string{
		"name: " + quote(boxPrefix+n.ID()),
		"title: " + quote(n.Title),
		"description: " + quote(n.Description),
		fmt.Sprintf("position: {x: %s, y: %s}", formatNumber(n.Position.X), formatNumber(n.Position.Y)),
		"background: " + quote(n.Color),
		"input_ports: " + strconv.Itoa(len(n.Inputs)),
		"output_ports: " + strconv.Itoa(len(n.Outputs)),
	}
	if n.HasCustomNames(diagram.Input) {
		fields = append(fields, "input_names: "+nameList(n.PortNames(diagram.Input)))
	}
	if n.HasCustomNames(diagram.Output) {
		fields = append(fields, "output_names: "+nameList(n.PortNames(diagram.Output)))
	}
	return fields
}

func writeBlock(b *strings.Builder, typ string, fields []string) {
	b.WriteString(typ)
	b.WriteString(" * {\n    ")
	b.WriteString(strings.Join(fields, ",\n    "))
	b.WriteString("\n}\n\n")
}

func nameList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "        " + quote(n)
	}
	return "[\n" + strings.Join(quoted, ",\n") + "\n    ]"
}

var quoter = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\t", `\t`, "\r", `\r`)

func quote(s string) string {
	return `"` + quoter.Replace(s) + `"`
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
