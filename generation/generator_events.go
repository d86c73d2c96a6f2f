package generation

import "github.com/crytic/solgen/events"

// GeneratorEvents defines event emitters for a Generator.
type GeneratorEvents struct {
	// ProgramGenerated emits events when the Generator has built and rendered a program from a structured input.
	ProgramGenerated events.EventEmitter[ProgramGeneratedEvent]

	// ProgramDiscarded emits events when the Generator has discarded a structured input which could not host a
	// valid test.
	ProgramDiscarded events.EventEmitter[ProgramDiscardedEvent]
}

// ProgramGeneratedEvent describes an event where a Generator has produced a program.
type ProgramGeneratedEvent struct {
	// Generator describes the Generator which produced the program.
	Generator *Generator

	// Program describes the generated program.
	Program *GeneratedProgram
}

// ProgramDiscardedEvent describes an event where a Generator has discarded a structured input.
type ProgramDiscardedEvent struct {
	// Generator describes the Generator which discarded the input.
	Generator *Generator

	// Reason describes why the input was discarded.
	Reason string
}
