// Package namegen produces human-readable identifiers for requests and
// machines, so logs and CLI output stay legible across a fleet.
package namegen

import (
	vendor "github.com/anandvarma/namegen"
)

var gen = vendor.New()

type ID string

// Request returns a new request identifier.
func Request() ID {
	return ID("req-" + gen.Get())
}

// Machine returns a new machine identifier.
func Machine() ID {
	return ID("host-" + gen.Get())
}

func (id ID) String() string {
	return string(id)
}
