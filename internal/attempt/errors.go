package attempt

import (
	"errors"
	"fmt"
)

// Error taxonomy of the attempt core. Callers match with errors.Is.
var (
	ErrNotFound      = errors.New("not found")
	ErrPersistence   = errors.New("history persistence failed")
	ErrPrecondition  = errors.New("precondition violated")
	ErrMalformedExam = errors.New("malformed exam record")

	ErrWrongState    = fmt.Errorf("%w: wrong attempt state", ErrPrecondition)
	ErrQuestionIndex = fmt.Errorf("%w: question index out of range", ErrPrecondition)
	ErrInvalidOption = fmt.Errorf("%w: option not offered by question", ErrPrecondition)
)
