package fl

import "errors"

var (
	errMissingField = errors.New("missing field")
	errNotInteger   = errors.New("not an integer")
	errOutOfRange   = errors.New("out of range")
	errNoRoundKind  = errors.New("config has neither local_epochs nor val_steps")
)
