package background

import (
	"math"

	"github.com/pkg/errors"
)

// Params configures one background estimation.
type Params struct {
	// Radius is the ball radius in pixels. Must be positive and finite.
	Radius float64 `json:"radius" yaml:"radius"`
	// LightBackground selects dark objects on a bright floor.
	LightBackground bool `json:"light_background" yaml:"light_background"`
	// Presmooth applies a 3×3 maximum filter to the surface the ball rolls
	// under. In light-background mode that surface is the inverted image, so
	// on the image itself the filter is a 3×3 minimum.
	//
	// A single-pixel spike is kept out of the background only with Presmooth
	// off. With it on, the filter widens the spike to 3×3 and at small radii
	// the ball may rise a level or two under the spike pixel itself; the
	// background still never crosses the image.
	Presmooth bool `json:"presmooth" yaml:"presmooth"`
	// Paraboloid replaces the sphere with h = d²/2r.
	Paraboloid bool `json:"paraboloid" yaml:"paraboloid"`
	// Parallel spreads every pass over row chunks. Results are identical.
	Parallel bool `json:"parallel" yaml:"parallel"`
}

// DefaultParams returns the parameters used when nothing else is given.
func DefaultParams() Params {
	return Params{
		Radius:    50,
		Presmooth: true,
		Parallel:  true,
	}
}

// Validate checks the parameters that do not depend on the image.
func (p Params) Validate() error {
	if !(p.Radius > 0) || math.IsInf(p.Radius, 1) {
		return errors.Wrapf(ErrInvalidParameter, "radius must be a positive finite number, got %v", p.Radius)
	}
	return nil
}
