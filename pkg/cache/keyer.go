package cache

// Keyer builds cache keys. Every option that changes a result must be part
// of its key.
type Keyer interface {
	LayoutKey(graphHash string, opts LayoutKeyOpts) string
	SweepKey(graphSpec string, opts SweepKeyOpts) string
}

// LayoutKeyOpts are the simulation parameters that determine a layout.
type LayoutKeyOpts struct {
	Width         int     `json:"w"`
	Height        int     `json:"h"`
	Attractive    string  `json:"fa"`
	Repulsive     string  `json:"fr"`
	Mode          string  `json:"mode"`
	Criterion     float64 `json:"crit"`
	CoolingRate   float64 `json:"rate"`
	MaxIterations int     `json:"max"`
	Seed          uint64  `json:"seed"`
}

// SweepKeyOpts are the parameters that determine a sweep result.
type SweepKeyOpts struct {
	Width         int     `json:"w"`
	Height        int     `json:"h"`
	Attractive    string  `json:"fa"`
	Repulsive     string  `json:"fr"`
	Criterion     float64 `json:"crit"`
	MaxIterations int     `json:"max"`
	From          float64 `json:"from"`
	To            float64 `json:"to"`
	Step          float64 `json:"step"`
	SampleSize    int     `json:"n"`
	Seed          uint64  `json:"seed"`
}

// DefaultKeyer produces "layout:<sha256>" and "sweep:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey keys a layout by the hash of its input graph and parameters.
func (DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

// SweepKey keys a sweep by its graph source and parameters. graphSpec is a
// topology description such as "ring:6" or the hash of an input graph.
func (DefaultKeyer) SweepKey(graphSpec string, opts SweepKeyOpts) string {
	return hashKey("sweep", graphSpec, opts)
}
