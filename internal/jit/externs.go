package jit

import "math"

// HostFunc is a native function an extern declaration can bind against.
// Host functions operate on doubles, matching the real-typed externs the
// language surface can express usefully.
type HostFunc struct {
	Arity int
	Fn    func(args []float64) float64
}

func unary(fn func(float64) float64) HostFunc {
	return HostFunc{Arity: 1, Fn: func(args []float64) float64 { return fn(args[0]) }}
}

func binaryHost(fn func(float64, float64) float64) HostFunc {
	return HostFunc{Arity: 2, Fn: func(args []float64) float64 { return fn(args[0], args[1]) }}
}

// defaultExterns is the table extern declarations resolve against at
// evaluation time.
func defaultExterns() map[string]HostFunc {
	return map[string]HostFunc{
		"cos":   unary(math.Cos),
		"sin":   unary(math.Sin),
		"tan":   unary(math.Tan),
		"sqrt":  unary(math.Sqrt),
		"exp":   unary(math.Exp),
		"log":   unary(math.Log),
		"fabs":  unary(math.Abs),
		"floor": unary(math.Floor),
		"ceil":  unary(math.Ceil),
		"pow":   binaryHost(math.Pow),
		"fmod":  binaryHost(math.Mod),
		"atan2": binaryHost(math.Atan2),
	}
}

// RegisterExtern adds or replaces a host binding, letting embedders expose
// their own native functions to extern declarations.
func (s *Session) RegisterExtern(name string, fn HostFunc) {
	s.externs[name] = fn
}
