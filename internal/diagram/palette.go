package diagram

import "math/rand"

// Palette is the fixed set of node colors picked from when a node has
// none.
var Palette = []string{
	"#4285F4", // blue
	"#DB4437", // red
	"#F4B400", // yellow
	"#0F9D58", // green
	"#8833FF", // purple
	"#FF5722", // deep orange
	"#00ACC1", // cyan
	"#43A047", // light green
	"#E91E63", // pink
	"#3949AB", // indigo
}

func randomColor(rng *rand.Rand) string {
	return Palette[rng.Intn(len(Palette))]
}
