// Package engine provides loading, admission, and inference coordination for
// the single model instance this process serves. It is structured into small
// files by concern:
//
//   - engine.go: core Engine type, constructor, simple getters.
//   - config.go: EngineConfig and package defaults; NewWithConfig applies defaults.
//   - prompt.go: the fixed prompt template.
//   - errors.go: error types and helpers (IsTooBusy, IsDependencyUnavailable).
//   - admission.go: bounded FIFO queue and single in-flight generation.
//   - infer.go: inference entry point.
//   - tokenize.go: tokenizer pass-through.
//   - cache.go: TTL response cache.
//   - status.go: Status reporting.
//   - metrics.go: Prometheus collectors.
//
// Build tags and runtimes:
//
//   - In-process llama (standard):
//     Uses the go-llama.cpp adapter. Enabled with `-tags=llama`.
//     File: adapter_llama.go.
//     A no-CGO stub compiles when the tag is not set: adapter_llama_stub.go.
//     The stub refuses inference with a dependency-unavailable error rather
//     than mocking output.
//
// External packages should treat this package as the orchestration layer and
// use public methods only (New/NewWithConfig, Ready, Infer, Tokenize, Status,
// Close). Internal types are subject to change.
package engine
