package domain

import (
	"errors"
)

var (
	ErrInternal = errors.New("internal error")

	// * Data errors.
	ErrDataNotFound    = errors.New("data not found")
	ErrNoUpdatedData   = errors.New("no data to update")
	ErrConflictingData = errors.New("data conflicts with existing data in unique column")

	// ErrConcurrencyConflict is retryable: the store aborted the unit of work
	// because of a concurrent writer (serialization failure, deadlock, lock timeout).
	ErrConcurrencyConflict = errors.New("concurrent update conflict")

	// * Communication errors.
	ErrBadRequest = errors.New("error parsing request")

	// * Authority errors.
	ErrTokenCreation              = errors.New("error creating token")
	ErrExpiredToken               = errors.New("access token has expired")
	ErrInvalidToken               = errors.New("access token is invalid")
	ErrEmptyAuthorizationHeader   = errors.New("authorization header is not provided")
	ErrInvalidAuthorizationHeader = errors.New("authorization header format is invalid")
	ErrInvalidAuthorizationType   = errors.New("authorization type is not supported")
	ErrUnauthorized               = errors.New("user is unauthorized to access the resource")
	ErrForbidden                  = errors.New("user is forbidden to access the resource")

	// * Payment errors.
	ErrDuplicateOrder     = errors.New("order id already used")
	ErrUntrustedCallback  = errors.New("gateway callback failed verification")
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrInsufficientFunds  = errors.New("balance is not enough")
	ErrUnknownModule      = errors.New("module not found")
	ErrInvalidDestination = errors.New("withdrawal destination is not valid")

	// * Withdrawal workflow errors.
	ErrAlreadyFinalized      = errors.New("withdrawal already finalized")
	ErrInvalidDecision       = errors.New("decision must be APPROVED or REJECTED")
	ErrWithdrawalNotApproved = errors.New("withdrawal is not approved")
	ErrDisbursement          = errors.New("disbursement channel failure")
)
