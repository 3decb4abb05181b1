package viseme

// Category is one of the 15 mouth-shape classes, indexed in the order the
// lip-sync library reports them.
type Category int

const (
	Sil Category = iota // silence
	PP                  // p, b, m
	FF                  // f, v
	TH                  // th
	DD                  // t, d
	KK                  // k, g
	CH                  // ch, sh, j
	SS                  // s, z
	NN                  // n, ng, l
	RR                  // r
	AA                  // ah
	E                   // eh, ae
	I                   // ih, ey
	O                   // oh, ow
	U                   // uh, uw
)

const Count = 15

var names = [Count]string{"sil", "PP", "FF", "TH", "DD", "kk", "CH", "SS", "nn", "RR", "aa", "E", "I", "O", "U"}

func (c Category) String() string {
	if c < 0 || int(c) >= Count {
		return "unknown"
	}
	return names[c]
}

// Names returns the category names in index order.
func Names() []string {
	out := make([]string, Count)
	copy(out, names[:])
	return out
}

// Parse looks a category up by its name.
func Parse(name string) (Category, bool) {
	for i, n := range names {
		if n == name {
			return Category(i), true
		}
	}
	return Sil, false
}

// Weights is one frame of library output.
type Weights [Count]float32

// Dominant returns the highest weighted category; ties go to the lowest index.
func (w Weights) Dominant() Category {
	best := 0
	for i := 1; i < Count; i++ {
		if w[i] > w[best] {
			best = i
		}
	}
	return Category(best)
}

// Map keys each weight by category name.
func (w Weights) Map() map[string]float64 {
	m := make(map[string]float64, Count)
	for i, v := range w {
		m[names[i]] = float64(v)
	}
	return m
}
