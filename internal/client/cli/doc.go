// Package cli provides the interactive permalink command-line client.
//
// It wires configuration, the local receipt journal, the storage and naming
// clients, and a REPL driving the upload flow. Typical session: connect a
// key file, estimate a batch, upload it, then link the manifest under the
// next free vN subname of an owned .eth name.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
