package ir

// conditionalNegation is the fixed, compile-time table of conditional
// opcodes and their negations (spec §4.1). It is built from symmetric
// pairs, so negate(negate(op)) == op holds by construction rather than by
// runtime check.
var conditionalNegation = buildConditionalTable([][2]string{
	{"IFR", "INR"},
	{"IFG", "ING"},
	{"IFE", "INE"},
	{"IFN", "INN"},
	{"LTR", "GETR"},
	{"LTG", "GETG"},
	{"LTE", "GETE"},
	{"LTN", "GETN"},
	{"IFTR", "INTR"},
	{"IFTG", "INTG"},
	{"IFTE", "INTE"},
	{"IFTN", "INTN"},
	{"LTTR", "GETTR"},
	{"LTTG", "GETTG"},
	{"LTTE", "GETTE"},
	{"LTTN", "GETTN"},
})

func buildConditionalTable(pairs [][2]string) map[string]string {
	m := make(map[string]string, len(pairs)*2)
	for _, p := range pairs {
		m[p[0]] = p[1]
		m[p[1]] = p[0]
	}
	return m
}

// IsConditional reports whether op is a recognized conditional opcode.
func IsConditional(op string) bool {
	_, ok := conditionalNegation[op]
	return ok
}

// Negate returns the negation of the conditional opcode op, and true if op
// was a recognized conditional opcode.
func Negate(op string) (string, bool) {
	n, ok := conditionalNegation[op]
	return n, ok
}
