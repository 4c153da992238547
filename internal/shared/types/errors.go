package types

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidRange    = errors.New("start date must be before end date")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNoRowsSelected  = errors.New("no rows selected for report")
	ErrUnknownService  = errors.New("no categorizer registered for service")
	ErrSchemaMismatch  = errors.New("cost table schemas do not match")
)

// FetchError envolve uma falha de chamada à API de custos. A falha original
// fica acessível via Unwrap; esta camada nunca faz retry.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("cost explorer %s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
