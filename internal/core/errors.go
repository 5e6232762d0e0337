package core

import (
	"errors"
	"fmt"
)

// ErrValidation marks errors caused by a request that cannot be served in
// the current state. No state is changed when it is returned.
var ErrValidation = errors.New("validation failed")

// ErrEmptySelection is returned by BuildTable and Workspace.Compare when no
// country is selected.
var ErrEmptySelection = fmt.Errorf("%w: no country selected", ErrValidation)

// ErrUnknownRegion is returned for a region name missing from the directory.
var ErrUnknownRegion = errors.New("unknown region")

// ErrUnknownIndicator is returned for an indicator key missing from the catalog.
var ErrUnknownIndicator = errors.New("unknown indicator")

func wrapRegion(name string) error {
	return fmt.Errorf("%w: %s", ErrUnknownRegion, name)
}
