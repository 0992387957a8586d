package shelang

import (
	"strconv"
	"strings"

	"shegen/internal/diagram"
)

// keyVariants lists the accepted spellings of one logical field, most
// preferred first.
type keyVariants []string

type getter interface {
	Get(key string) (Value, bool)
}

var (
	nameKeys        = keyVariants{"name", "id"}
	titleKeys       = keyVariants{"title", "label"}
	descriptionKeys = keyVariants{"description", "desc"}
	positionKeys    = keyVariants{"position", "pos"}
	colorKeys       = keyVariants{"background", "color", "background_color"}
	inputCountKeys  = keyVariants{"input_ports", "inputs", "input_count"}
	outputCountKeys = keyVariants{"output_ports", "outputs", "output_count"}

	widthKeys  = keyVariants{"width", "w"}
	heightKeys = keyVariants{"height", "h"}

	sourceKeys = keyVariants{"source", "from"}
	targetKeys = keyVariants{"target", "to"}
	boxKeys    = keyVariants{"box", "node", "frame"}
	portKeys   = keyVariants{"port", "index"}
)

// find returns the value of the first variant present.
func (k keyVariants) find(g getter) (Value, bool) {
	for _, key := range k {
		if v, ok := g.Get(key); ok {
			return v, true
		}
	}
	return Value{}, false
}

func (k keyVariants) present(g getter) bool {
	_, ok := k.find(g)
	return ok
}

func (k keyVariants) str(g getter) (string, bool) {
	v, ok := k.find(g)
	if !ok {
		return "", false
	}
	return v.Str()
}

func (k keyVariants) float(g getter) (float64, bool) {
	v, ok := k.find(g)
	if !ok {
		return 0, false
	}
	return v.Float()
}

// count resolves a non-negative port count. Capping is up to the caller.
func (k keyVariants) count(g getter) (int, bool) {
	v, ok := k.find(g)
	if !ok {
		return 0, false
	}
	n, ok := v.Int()
	if !ok || n < 0 {
		return 0, false
	}
	return n, true
}

// resolvePosition accepts `position: {x, y}`, `pos: {x, y}` or bare x and
// y fields on the block.
func resolvePosition(b *Block) (diagram.Point, bool) {
	if v, ok := positionKeys.find(b); ok {
		x, okX := keyVariants{"x", "left"}.float(v)
		y, okY := keyVariants{"y", "top"}.float(v)
		if okX && okY {
			return diagram.Point{X: x, Y: y}, true
		}
		return diagram.Point{}, false
	}
	x, okX := keyVariants{"x"}.float(b)
	y, okY := keyVariants{"y"}.float(b)
	return diagram.Point{X: x, Y: y}, okX && okY
}

func positionPresent(b *Block) bool {
	return positionKeys.present(b) || keyVariants{"x"}.present(b) || keyVariants{"y"}.present(b)
}

// namesResolver is one way of spelling a node's port names.
type namesResolver struct {
	name    string
	resolve func(b *Block, d diagram.Direction, count int) ([]string, bool)
}

// portNameResolvers are tried in order; the first match wins.
var portNameResolvers = []namesResolver{
	{"names list", listNames("%s_names")},
	{"labels list", listNames("%s_labels")},
	{"per-port fields", perPortNames},
}

// resolveNames returns the port names of one direction and the resolver
// that produced them. Missing entries are left empty for the model to
// fill with defaults.
func resolveNames(b *Block, d diagram.Direction, count int) ([]string, string) {
	for _, r := range portNameResolvers {
		if names, ok := r.resolve(b, d, count); ok {
			return names, r.name
		}
	}
	return nil, ""
}

// listNames matches `input_names: ["a", "b"]` and the braced
// `input_names: {"a", "b"}` form.
func listNames(pattern string) func(*Block, diagram.Direction, int) ([]string, bool) {
	return func(b *Block, d diagram.Direction, _ int) ([]string, bool) {
		v, ok := b.Get(strings.Replace(pattern, "%s", d.String(), 1))
		if !ok {
			return nil, false
		}
		names, ok := v.Strings()
		if !ok || len(names) == 0 {
			return nil, false
		}
		return names, true
	}
}

// perPortNames matches one field per port: `input1: "a"` or `input 1: "a"`,
// numbered from 1.
func perPortNames(b *Block, d diagram.Direction, count int) ([]string, bool) {
	prefix := d.String()
	names := make([]string, count)
	found := false
	for _, f := range b.Fields {
		key := strings.ToLower(f.Key)
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(key[len(prefix):]))
		if err != nil || n < 1 {
			continue
		}
		name, ok := f.Value.Str()
		if !ok {
			continue
		}
		found = true
		if n <= count {
			names[n-1] = name
		}
	}
	return names, found
}

// resolveEndpoint reads `source: {box: "box_id", port: N}`.
func resolveEndpoint(b *Block, keys keyVariants) (box string, port int, ok bool) {
	v, ok := keys.find(b)
	if !ok {
		return "", 0, false
	}
	box, ok = boxKeys.str(v)
	if !ok || box == "" {
		return "", 0, false
	}
	pv, ok := portKeys.find(v)
	if !ok {
		return "", 0, false
	}
	port, ok = pv.Int()
	if !ok || port < 0 {
		return "", 0, false
	}
	return box, port, true
}

// frameKey turns a frame name or box reference into the key frames are
// matched by: "box_7" and "7" both name frame "7".
func frameKey(name string) string {
	return strings.TrimPrefix(strings.TrimSpace(name), boxPrefix)
}

const boxPrefix = "box_"
