package columns

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSchema is matched by every SchemaError.
var ErrSchema = errors.New("required columns missing")

// SchemaError names the required fields that could not be resolved and the
// headers that were observed.
type SchemaError struct {
	Missing  []string
	Observed []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: %s (observed headers: %s)",
		ErrSchema.Error(), strings.Join(e.Missing, ", "), strings.Join(e.Observed, ", "))
}

// Is lets errors.Is(err, ErrSchema) match.
func (e *SchemaError) Is(target error) bool { return target == ErrSchema }
