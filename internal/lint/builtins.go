package lint

// builtinFunctions maps builtin function names to their arity; -1 means
// variadic. The table mirrors the language runtime and is append-only.
var builtinFunctions = map[string]int{
	"abs": 1, "sign": 1, "sqrt": 1, "cbrt": 1, "root": 2,
	"round": 1, "floor": 1, "ceiling": 1, "trunc": 1,
	"sin": 1, "cos": 1, "tan": 1, "csc": 1, "sec": 1, "cot": 1,
	"asin": 1, "acos": 1, "atan": 1, "atan2": 2,
	"sinh": 1, "cosh": 1, "tanh": 1,
	"ln": 1, "log": 1, "log_2": 1, "exp": 1,
	"min": -1, "max": -1, "sum": -1, "sumsq": -1, "srss": -1,
	"average": -1, "mean": -1, "product": -1,
	"mod": 2, "gcd": -1, "lcm": -1,
	"if": 3, "switch": -1, "take": -1,
	"random": 1,
}

// builtinConstants are always-defined value names.
var builtinConstants = map[string]bool{
	"pi": true, "π": true, "e": true,
}

var builtinFunctionPool = func() []string {
	pool := make([]string, 0, len(builtinFunctions))
	for name := range builtinFunctions {
		pool = append(pool, name)
	}
	return pool
}()
