package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrInvalidAmount indicates a non-numeric, zero or negative money amount.
var ErrInvalidAmount = errors.New("invalid amount")

// ErrInsufficientFunds indicates a withdrawal or payment exceeding the wallet balance.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrWalletNotFound indicates the acting user holds no wallet for the
// required role. Kept separate from ErrNotFound so handlers can report the
// missing wallet rather than the record being acted on.
var ErrWalletNotFound = errors.New("wallet not found")

// ErrInvalidTransition indicates an operation attempted on a payment record
// that is not in the required prior state.
var ErrInvalidTransition = errors.New("invalid payment state transition")

// ErrRemoteFetch indicates the remote applications source could not be read.
var ErrRemoteFetch = errors.New("remote fetch failed")

// ErrTimeout indicates a remote operation exceeded its deadline; state is unchanged.
var ErrTimeout = errors.New("operation timed out")
