package force

import "strings"

// Pair is one attractive/repulsive expression combination.
type Pair struct {
	Attractive string `json:"attractive" toml:"attractive" yaml:"attractive"`
	Repulsive  string `json:"repulsive" toml:"repulsive" yaml:"repulsive"`
}

// ZipPairs splits two ';'-separated expression lists and pairs them up
// index by index. When the lists differ in length, the shorter one's last
// expression is repeated, so "a1;a2;a3" with "r1" yields (a1,r1) (a2,r1)
// (a3,r1). Empty lists yield a single pair of built-in forces.
func ZipPairs(attractive, repulsive string) []Pair {
	as := splitList(attractive)
	rs := splitList(repulsive)

	n := max(len(as), len(rs))
	pairs := make([]Pair, n)
	for i := range n {
		pairs[i] = Pair{
			Attractive: as[min(i, len(as)-1)],
			Repulsive:  rs[min(i, len(rs)-1)],
		}
	}
	return pairs
}

// splitList returns at least one element; "" stands for the built-in force.
func splitList(s string) []string {
	parts := strings.Split(s, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{""}
	}
	return out
}

// Model compiles the pair.
func (p Pair) Model() (Model, error) {
	return NewModel(p.Attractive, p.Repulsive)
}

// String renders the pair for logs and table rows.
func (p Pair) String() string {
	a, r := p.Attractive, p.Repulsive
	if a == "" {
		a = DefaultAttractiveExpr
	}
	if r == "" {
		r = DefaultRepulsiveExpr
	}
	return "fa=" + a + " fr=" + r
}
