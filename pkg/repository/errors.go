// Package repository declares the error contract shared by every
// repository backend. Callers branch on these sentinels with errors.Is
// regardless of which backend served the call.
package repository

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrNotFound is returned when the addressed record does not exist
	ErrNotFound = goerr.New("record not found")

	// ErrAlreadyExists is returned by Create when the key is taken.
	// Existing records are never overwritten by Create.
	ErrAlreadyExists = goerr.New("record already exists")

	// ErrAlreadyConcluded is returned by responder/conclusion mutations
	// against a request that already reached its terminal state.
	ErrAlreadyConcluded = goerr.New("request already concluded")
)
