// Package ports defines the interfaces that connect the storytext
// application layer to infrastructure adapters.
//
// # Port Interfaces
//
//   - [ProcessRunner]: starts one external script and reports a tagged outcome
//   - [TextExtractor]: turns one page and its regions into paragraphs
//   - [OutcomeRecorder]: records how each script invocation ended
//   - [ResultRepository]: persists the output of a spooled job
//   - [DocumentSource]: opens a PDF and reports its page count
//   - [Logger]: structured logging abstraction
//
// The application layer (internal/app) depends only on these interfaces.
// Adapters (internal/adapters) implement them with os/exec, pdfcpu,
// Prometheus and the file system.
package ports
