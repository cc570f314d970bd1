package force

import (
	"strings"
)

// Func computes a force magnitude from the distance d between two vertices
// and the characteristic distance k.
type Func func(d, k float64) float64

// Default force expressions, as shown to users who want to edit them.
const (
	DefaultAttractiveExpr = "(d * d) / k"
	DefaultRepulsiveExpr  = "(k * k) / d"
)

// Attractive is the built-in attractive force d²/k.
func Attractive(d, k float64) float64 {
	return (d * d) / k
}

// Repulsive is the built-in repulsive force k²/d.
func Repulsive(d, k float64) float64 {
	return (k * k) / d
}

// Model is a pair of force functions used by one simulation run.
type Model struct {
	Attractive Func
	Repulsive  Func
}

// Default returns the built-in Fruchterman-Reingold model.
func Default() Model {
	return Model{Attractive: Attractive, Repulsive: Repulsive}
}

// NewModel compiles a model from expression text. Empty text selects the
// built-in function for that side. Errors name the offending side as the
// field ("attractive" or "repulsive").
func NewModel(attractive, repulsive string) (Model, error) {
	m := Default()

	if strings.TrimSpace(attractive) != "" {
		f, err := Compile(attractive)
		if err != nil {
			return Model{}, withField(err, "attractive")
		}
		m.Attractive = f
	}

	if strings.TrimSpace(repulsive) != "" {
		f, err := Compile(repulsive)
		if err != nil {
			return Model{}, withField(err, "repulsive")
		}
		m.Repulsive = f
	}

	return m, nil
}
