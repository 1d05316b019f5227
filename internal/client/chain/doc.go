// Package chain provides the wallet and chain collaborators used by the
// upload and naming steps: a read-only Reader, a transaction Signer and the
// Transactor that runs every write as simulate, send, then confirm.
package chain
