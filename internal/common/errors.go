// Package common defines shared constants and sentinel errors used across
// the permalink client layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Session / precondition errors.
	ErrNoSession    = errors.New("connect a wallet on the selected network first")
	ErrNotUploaded  = errors.New("upload files first before linking a name")
	ErrBusy         = errors.New("another operation is already in progress")
	ErrWrongNetwork = errors.New("wallet is connected to a different network")

	// Batch / manifest errors.
	ErrEmptyBatch       = errors.New("no files selected")
	ErrBatchTooLarge    = errors.New("batch exceeds size limit")
	ErrCountMismatch    = errors.New("file count and content id count must match")
	ErrMissingContentID = errors.New("missing content id")
	ErrInvalidArgument  = errors.New("invalid argument")

	// Naming errors.
	ErrInvalidName       = errors.New("name must be a valid .eth name")
	ErrNoResolver        = errors.New("selected parent name has no resolver configured")
	ErrVersionsExhausted = errors.New("no available vN subdomain labels found in range v1-v100")
	ErrInvalidContentID  = errors.New("invalid content id")

	// Chain errors.
	ErrTxReverted = errors.New("transaction reverted")
)
