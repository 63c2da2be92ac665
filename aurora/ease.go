package aurora

// CubicBezier is a CSS timing function with control points (X1, Y1) and
// (X2, Y2); the end points are fixed at (0, 0) and (1, 1).
type CubicBezier struct {
	X1, Y1, X2, Y2 float64
}

// EaseInOut is the CSS "ease-in-out" keyword.
var EaseInOut = CubicBezier{0.42, 0, 0.58, 1}

func bezierAxis(p1, p2, s float64) float64 {
	inv := 1 - s
	return 3*inv*inv*s*p1 + 3*inv*s*s*p2 + s*s*s
}

func bezierSlope(p1, p2, s float64) float64 {
	inv := 1 - s
	return 3*inv*inv*p1 + 6*inv*s*(p2-p1) + 3*s*s*(1-p2)
}

// Ease maps linear progress x in [0, 1] to eased progress.
func (b CubicBezier) Ease(x float64) float64 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}
	// Newton first, bisection if the slope flattens out.
	s := x
	for i := 0; i < 8; i++ {
		err := bezierAxis(b.X1, b.X2, s) - x
		if err < 1e-9 && err > -1e-9 {
			return bezierAxis(b.Y1, b.Y2, s)
		}
		d := bezierSlope(b.X1, b.X2, s)
		if d < 1e-6 && d > -1e-6 {
			break
		}
		s -= err / d
	}
	lo, hi := 0.0, 1.0
	s = x
	for i := 0; i < 64; i++ {
		v := bezierAxis(b.X1, b.X2, s)
		if v < x {
			lo = s
		} else {
			hi = s
		}
		s = (lo + hi) / 2
	}
	return bezierAxis(b.Y1, b.Y2, s)
}
