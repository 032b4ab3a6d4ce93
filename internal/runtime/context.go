package runtime

// Organism is the register-file, data-stack, and call-stack boundary
// Handler operates against: one organism, no sharing (spec §5). All
// register reads/writes use the contiguous DR/PR/FPR ID scheme from
// internal/config.
type Organism interface {
	ReadRegister(id int) int32
	WriteRegister(id int, v int32)

	PushFrame(f Frame)
	PopFrame() (Frame, bool)
	CallStackDepth() int

	// PreFetchCoord and PreFetchDirection describe the CALL opcode cell
	// currently being executed: its absolute coordinate and the
	// direction vector the organism was moving in when it fetched it.
	PreFetchCoord() []int32
	PreFetchDirection() []int32

	// Origin is the organism's program-relative addressing origin, used
	// to resolve a CALL's target delta into an absolute coordinate.
	Origin() []int32

	SetIP(coord []int32)
	// SetSkipAutomaticAdvance signals the fetch loop to not advance IP
	// this tick, since CALL/RET already set IP directly (spec §4.10
	// steps 8 and return-step 4).
	SetSkipAutomaticAdvance(skip bool)

	// InstructionFailed records a recoverable, organism-local failure
	// (spec §7's "Runtime, recoverable" error kind) without halting the
	// rest of the VM.
	InstructionFailed(reason string)
}

// ExecutionContext is the collaborator boundary Handler consumes (spec
// §6.8): organism register/stack access, environment coordinate
// arithmetic, and the performance-mode flag.
type ExecutionContext interface {
	Organism() Organism

	// NextInstructionPosition advances coord by one instruction's worth
	// of cells (opcode plus one operand cell per world dimension) along
	// direction (spec §4.10 step 3).
	NextInstructionPosition(coord, direction []int32) []int32

	// TargetCoordinate resolves a CALL's program-relative delta into an
	// absolute coordinate (spec §4.10 step 5).
	TargetCoordinate(origin, delta []int32) []int32

	PerformanceMode() bool
}
