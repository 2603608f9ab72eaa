// Package output renders scan results for the terminal.
//
// Two presenters exist: a line oriented text format and a JSON lines
// format. Both stream one entry per liveness result and finish with one
// summary per scanned network.
package output
