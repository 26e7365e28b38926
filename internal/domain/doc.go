// Package domain contains the core value objects for storytext.
//
// This package is the innermost layer of the Clean Architecture. It has no
// dependencies on infrastructure concerns (processes, file system, logging)
// and contains only validation rules and pure transformations.
//
// # Value Objects
//
//   - [Region]: a validated rectangle on one PDF page with a global sequence number
//   - [SelectionMap]: regions grouped by page for one extraction request
//   - [Run]: a maximal contiguous same-page slice of the reading order
//   - [Invocation]: everything needed to start one external script process
//   - [Outcome]: the tagged result of one invocation
//   - [Keyword]: one weighted keyword emitted by the tagging script
//
// # Design Principles
//
// Domain values are:
//   - Immutable after construction
//   - Validated at construction time (fail fast)
//   - Testable without processes or external systems
package domain
