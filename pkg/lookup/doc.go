// Package lookup wraps the external data sources used by the assistants.
//
// Every adapter returns a Result. Transport, parse and not found conditions are reported as a *Failure with a
// message meant to be read by the generator, adapters never return a Go error.
package lookup
