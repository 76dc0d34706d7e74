package errs

import "errors"

// Domain errors. Handlers map these to HTTP status codes; everything else is
// treated as internal.
var (
	ErrWorkOrderNotFound  = errors.New("work order not found")
	ErrMaterialNotFound   = errors.New("material not found")
	ErrSignatureNotFound  = errors.New("signature not found")
	ErrValidation         = errors.New("validation failed")
	ErrAccessDenied       = errors.New("access denied")
	ErrDuplicateSignature = errors.New("signature already recorded")
	ErrNumberGeneration   = errors.New("work order number generation failed")
	ErrConflict           = errors.New("conflict")
)
