package core

import (
	"math"

	"github.com/slipcheck/slipcheck/internal/contract"
	"github.com/slipcheck/slipcheck/schema"
)

// ResolveTolerance returns the tolerance pair to apply when comparing one
// displacement value. Method-specific overrides win over the defaults, and
// reference magnitudes at or below the small-displacement threshold swap in
// the small-displacement pair instead.
//
// Relative error is unstable near zero: a reference of 0.01 cm against a
// candidate of 0.02 cm is a 100% relative error but a negligible absolute
// one. Below the threshold the relative field may be +Inf, which means the
// relative check never fires.
func ResolveTolerance(tol *contract.ToleranceConfig, method schema.Method, refMagnitude float64) schema.ToleranceSetting {
	setting := schema.ToleranceSetting{
		Relative: tol.DefaultRelative,
		Absolute: tol.DefaultAbsolute,
	}

	if mt, ok := tol.Methods[method]; ok {
		if mt.Relative != nil {
			setting.Relative = *mt.Relative
		}
		if mt.Absolute != nil {
			setting.Absolute = *mt.Absolute
		}
	}

	if IsSmallDisplacement(tol, refMagnitude) {
		setting.Relative = tol.SmallDisplacementRelative
		setting.Absolute = tol.SmallDisplacementAbsolute
	}

	return setting
}

// IsSmallDisplacement reports whether a reference magnitude falls in the
// small-displacement regime where only the absolute check applies.
func IsSmallDisplacement(tol *contract.ToleranceConfig, refMagnitude float64) bool {
	return math.Abs(refMagnitude) <= tol.SmallDisplacementThreshold
}

// AdditionalTolerance returns the relative-only tolerance for a secondary
// engine output such as kmax or the degraded shear wave velocity.
func AdditionalTolerance(tol *contract.ToleranceConfig, out schema.AdditionalOutput) float64 {
	if rel, ok := tol.Additional[out]; ok {
		return rel
	}
	return contract.DefaultAdditionalRelative
}
