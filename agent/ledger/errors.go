package ledger

import "errors"

var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrDateInvalid      = errors.New("invalid date")
	ErrNotAvailable     = errors.New("room not available for requested dates")
	ErrAlreadyCancelled = errors.New("booking already cancelled")
	ErrNotOwner         = errors.New("booking belongs to another guest")
	ErrInvalidStatus    = errors.New("invalid room status")
)
