package ierr

import (
	"errors"
	"fmt"
)

var (
	ErrValidation     = errors.New("validation failed")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrUpdateFailed   = errors.New("resource update failed")
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource conflict")
	ErrInternalServer = errors.New("internal server error")
	ErrUpstreamStore  = errors.New("data store failure")
	ErrRateLimited    = errors.New("rate limit exceeded")

	// Credential rejections. Each wraps the generic class so the error handler can map the
	// class to a status and the specific kind to a machine code.
	ErrMissingCredential   = fmt.Errorf("%w: no credential provided", ErrUnauthorized)
	ErrMalformedCredential = fmt.Errorf("%w: malformed credential", ErrUnauthorized)
	ErrCredentialNotFound  = fmt.Errorf("%w: invalid credential", ErrUnauthorized)
	ErrCredentialInactive  = fmt.Errorf("%w: credential is inactive", ErrUnauthorized)
	ErrCredentialExpired   = fmt.Errorf("%w: credential has expired", ErrUnauthorized)
	ErrInsufficientScope   = fmt.Errorf("%w: credential does not have required scope", ErrForbidden)

	ErrSlugTaken     = fmt.Errorf("%w: slug already taken", ErrConflict)
	ErrSlugExhausted = fmt.Errorf("%w: unable to generate unique slug", ErrConflict)
)
