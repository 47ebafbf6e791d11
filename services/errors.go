// Package services holds the certificate workflows shared by the HTTP API
// and background jobs.
package services

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrForbidden       = errors.New("certificate belongs to another user")
	ErrAlreadyVerified = errors.New("certificate is already verified")
)

// FieldErrors maps a form field to its validation message.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+f[k])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}
