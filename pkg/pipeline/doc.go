// Package pipeline provides a sequential pipeline of generation steps sharing a keyed state.
//
// Each step resolves an instruction template against the slots written by the previous steps, asks a
// llm.Generator for an answer and writes that answer into exactly one slot. A step may expose tools to the
// generator. When the generator requests tool calls, the step runs all of them, waits for every result and hands
// them back before asking again.
//
// Steps run one after another: step N+1 never starts before step N has written its slot. Slot dependencies are
// checked when a step is added, a step can only read the raw query or slots written by earlier steps. The
// pipeline stops on the first failing step and reports that failure, the state of a failed run is discarded.
//
// Every run gets a fresh State from the factory given to New, so concurrent runs never share slots.
//
// Options implementing model.PipelineOption observe the construction of the pipeline and every run. The measure,
// drawer and logger packages provide such options.
package pipeline
