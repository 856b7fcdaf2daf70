// Package llm defines the contract between pipeline steps and a text-generation capability.
//
// A Generator is driven through an explicit request/response exchange: the step sends an instruction, the
// conversation so far and the tools it is allowed to use. The generator answers with either final text or a list of
// tool calls. The caller runs the requested tools, appends their results to the conversation and asks again until
// final text is produced.
package llm
