// Package common defines sentinel errors shared by the store and the layers
// above it. Callers should use errors.Is to match these values.
package common

import "errors"

// ErrorNotFound is returned when a lookup or delete by id matches no row.
var ErrorNotFound = errors.New("not found")
