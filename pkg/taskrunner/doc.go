// Package taskrunner hosts the shared abstractions for running taskrun task
// chains. It exposes the `Runner` interface plus helpers (`Factory`, `Resolve`)
// so CLI packages can inject a collection once and obtain a runner, while unit
// tests can swap in fakes. This keeps the engine in `internal/executor`
// reusable without wiring duplication.
package taskrunner
