package background

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/nearlyfreeapps/Rolling-Ball-Algorithm/images/kernels"
)

// Stats describes a background surface before rounding.
type Stats struct {
	Mean   float64 `json:"mean" yaml:"mean"`
	StdDev float64 `json:"std_dev" yaml:"std_dev"`
	Min    float64 `json:"min" yaml:"min"`
	Max    float64 `json:"max" yaml:"max"`
}

func (s Stats) String() string {
	return fmt.Sprintf("mean %.2f stddev %.2f range [%.2f, %.2f]", s.Mean, s.StdDev, s.Min, s.Max)
}

func summarize(bg *kernels.Surface) Stats {
	if len(bg.Pix) == 0 {
		return Stats{}
	}
	vals := make([]float64, len(bg.Pix))
	for i, v := range bg.Pix {
		vals[i] = float64(v)
	}
	mean, std := stat.PopMeanStdDev(vals, nil)
	return Stats{
		Mean:   mean,
		StdDev: std,
		Min:    floats.Min(vals),
		Max:    floats.Max(vals),
	}
}
