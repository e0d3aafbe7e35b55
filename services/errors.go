package services

// ValidationError carries user-facing messages, already in the site language,
// that the server layer maps to a 400.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	out := ""
	for i, m := range e.Messages {
		if i > 0 {
			out += ", "
		}
		out += m
	}
	return out
}

// ErrValidation wraps one or more messages as a *ValidationError.
func ErrValidation(messages ...string) error {
	return &ValidationError{Messages: messages}
}
