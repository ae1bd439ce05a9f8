package sales

import "errors"

var (
	ErrSaleNotFound   = errors.New("sale not found")
	ErrAlreadyPaid    = errors.New("sale is already paid")
	ErrCannotEditPaid = errors.New("paid sales cannot be edited")
	ErrConstraint     = errors.New("constraint violation")
)

// ValidationError rejects a malformed request before any storage access.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid sale request: " + e.Reason
}
