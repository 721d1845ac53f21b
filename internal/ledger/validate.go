package ledger

import "fmt"

// ValidationError reports bad input rejected at the service boundary
// before any store write.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// IntegrityError reports an inconsistency between stored entities, such
// as a transfer leg missing its pair. The operation that detected it is
// refused; the dangling side is never silently dropped.
type IntegrityError struct {
	Entity  string
	ID      string
	Message string
}

func (e IntegrityError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Entity, e.ID, e.Message)
}
