package surrogate

import (
	"fmt"
	"math"

	"github.com/chewxy/math32"
)

// Sigmoid is the derivative of σ(αx) = 1/(1+exp(-αx)):
//
//	g(x) = α·σ(αx)·(1-σ(αx))
//
// Alpha defaults to 4.
type Sigmoid struct {
	Alpha float64
}

func (f Sigmoid) alpha() float64 { return orDefault(f.Alpha, 4) }

// Name implements Function.
func (f Sigmoid) Name() string { return fmt.Sprintf("sigmoid(alpha=%g)", f.alpha()) }

// Grad64 implements Function.
func (f Sigmoid) Grad64(x float64) float64 {
	a := f.alpha()
	s := 1 / (1 + math.Exp(-a*x))
	return a * s * (1 - s)
}

// Grad32 implements Function.
func (f Sigmoid) Grad32(x float32) float32 {
	a := float32(f.alpha())
	s := 1 / (1 + math32.Exp(-a*x))
	return a * s * (1 - s)
}

// Primitive implements Function.
func (f Sigmoid) Primitive(x float64) float64 {
	return 1 / (1 + math.Exp(-f.alpha()*x))
}

// WGSL implements Shader.
func (f Sigmoid) WGSL() string {
	return fmt.Sprintf(`fn sg(x: f32) -> f32 {
    let a = %s;
    let s = 1.0 / (1.0 + exp(-a * x));
    return a * s * (1.0 - s);
}`, wgslFloat(f.alpha()))
}

// ATan is the derivative of 1/π·atan(π/2·αx) + 1/2:
//
//	g(x) = α/2 / (1 + (π/2·αx)²)
//
// Alpha defaults to 2.
type ATan struct {
	Alpha float64
}

func (f ATan) alpha() float64 { return orDefault(f.Alpha, 2) }

// Name implements Function.
func (f ATan) Name() string { return fmt.Sprintf("atan(alpha=%g)", f.alpha()) }

// Grad64 implements Function.
func (f ATan) Grad64(x float64) float64 {
	a := f.alpha()
	u := math.Pi / 2 * a * x
	return a / 2 / (1 + u*u)
}

// Grad32 implements Function.
func (f ATan) Grad32(x float32) float32 {
	a := float32(f.alpha())
	u := math32.Pi / 2 * a * x
	return a / 2 / (1 + u*u)
}

// Primitive implements Function.
func (f ATan) Primitive(x float64) float64 {
	return math.Atan(math.Pi/2*f.alpha()*x)/math.Pi + 0.5
}

// WGSL implements Shader.
func (f ATan) WGSL() string {
	return fmt.Sprintf(`fn sg(x: f32) -> f32 {
    let a = %s;
    let u = 1.5707963267948966 * a * x;
    return a * 0.5 / (1.0 + u * u);
}`, wgslFloat(f.alpha()))
}

// Triangle is a fixed-width triangular bump (piecewise quadratic spike):
//
//	g(x) = max(0, α - α²·|x|)
//
// It is non-zero only for |x| < 1/α. Alpha defaults to 1.
type Triangle struct {
	Alpha float64
}

func (f Triangle) alpha() float64 { return orDefault(f.Alpha, 1) }

// Name implements Function.
func (f Triangle) Name() string { return fmt.Sprintf("triangle(alpha=%g)", f.alpha()) }

// Grad64 implements Function.
func (f Triangle) Grad64(x float64) float64 {
	a := f.alpha()
	return math.Max(0, a-a*a*math.Abs(x))
}

// Grad32 implements Function.
func (f Triangle) Grad32(x float32) float32 {
	a := float32(f.alpha())
	return math32.Max(0, a-a*a*math32.Abs(x))
}

// Primitive implements Function.
func (f Triangle) Primitive(x float64) float64 {
	a := f.alpha()
	switch {
	case x <= -1/a:
		return 0
	case x >= 1/a:
		return 1
	default:
		return -a*a/2*x*math.Abs(x) + a*x + 0.5
	}
}

// WGSL implements Shader.
func (f Triangle) WGSL() string {
	return fmt.Sprintf(`fn sg(x: f32) -> f32 {
    let a = %s;
    return max(0.0, a - a * a * abs(x));
}`, wgslFloat(f.alpha()))
}

// SoftSign is the derivative of 1/2·(αx/(1+|αx|) + 1):
//
//	g(x) = α / (2·(1+|αx|)²)
//
// Alpha defaults to 2.
type SoftSign struct {
	Alpha float64
}

func (f SoftSign) alpha() float64 { return orDefault(f.Alpha, 2) }

// Name implements Function.
func (f SoftSign) Name() string { return fmt.Sprintf("softsign(alpha=%g)", f.alpha()) }

// Grad64 implements Function.
func (f SoftSign) Grad64(x float64) float64 {
	a := f.alpha()
	d := 1 + math.Abs(a*x)
	return a / (2 * d * d)
}

// Grad32 implements Function.
func (f SoftSign) Grad32(x float32) float32 {
	a := float32(f.alpha())
	d := 1 + math32.Abs(a*x)
	return a / (2 * d * d)
}

// Primitive implements Function.
func (f SoftSign) Primitive(x float64) float64 {
	ax := f.alpha() * x
	return 0.5 * (ax/(1+math.Abs(ax)) + 1)
}

// WGSL implements Shader.
func (f SoftSign) WGSL() string {
	return fmt.Sprintf(`fn sg(x: f32) -> f32 {
    let a = %s;
    let d = 1.0 + abs(a * x);
    return a / (2.0 * d * d);
}`, wgslFloat(f.alpha()))
}

// Rectangular is a box of unit area centred on the threshold:
//
//	g(x) = 1/w if |x| < w/2, else 0
//
// Width defaults to 1.
type Rectangular struct {
	Width float64
}

func (f Rectangular) width() float64 { return orDefault(f.Width, 1) }

// Name implements Function.
func (f Rectangular) Name() string { return fmt.Sprintf("rect(width=%g)", f.width()) }

// Grad64 implements Function.
func (f Rectangular) Grad64(x float64) float64 {
	w := f.width()
	if math.Abs(x) < w/2 {
		return 1 / w
	}
	return 0
}

// Grad32 implements Function.
func (f Rectangular) Grad32(x float32) float32 {
	w := float32(f.width())
	if math32.Abs(x) < w/2 {
		return 1 / w
	}
	return 0
}

// Primitive implements Function.
func (f Rectangular) Primitive(x float64) float64 {
	w := f.width()
	return math.Min(1, math.Max(0, x/w+0.5))
}

// WGSL implements Shader.
func (f Rectangular) WGSL() string {
	return fmt.Sprintf(`fn sg(x: f32) -> f32 {
    let w = %s;
    return select(0.0, 1.0 / w, abs(x) < w * 0.5);
}`, wgslFloat(f.width()))
}

// Func adapts arbitrary Go functions into a surrogate. It has no shader form
// and therefore only runs on the CPU backend.
//
// Prim may be nil; Primitive then panics, which only matters for gradient checks.
type Func struct {
	Label string
	Fn    func(x float64) float64
	Prim  func(x float64) float64
}

// Name implements Function.
func (f Func) Name() string {
	if f.Label == "" {
		return "func"
	}
	return f.Label
}

// Grad64 implements Function.
func (f Func) Grad64(x float64) float64 { return f.Fn(x) }

// Grad32 implements Function.
func (f Func) Grad32(x float32) float32 { return float32(f.Fn(float64(x))) }

// Primitive implements Function.
func (f Func) Primitive(x float64) float64 {
	if f.Prim == nil {
		panic(fmt.Sprintf("surrogate %s has no primitive", f.Name()))
	}
	return f.Prim(x)
}

var (
	_ Shader = Sigmoid{}
	_ Shader = ATan{}
	_ Shader = Triangle{}
	_ Shader = SoftSign{}
	_ Shader = Rectangular{}
)
