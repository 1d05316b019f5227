// Package client opens the local journal database and wires its
// repositories.
package client
