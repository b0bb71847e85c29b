package game

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidLayout      = errors.New("invalid layout")
	ErrIllegalMove        = errors.New("illegal move")
	ErrMissingKing        = errors.New("missing king")
	ErrExtraKing          = errors.New("more than one king")
	ErrSquareOccupied     = errors.New("square occupied")
	ErrPromotionPending   = errors.New("promotion pending")
	ErrNoPendingPromotion = errors.New("no pending promotion")
	ErrInvalidPromotion   = errors.New("invalid promotion piece")
	ErrGameOver           = errors.New("game over")
)

// LayoutError names the structural rule a layout description broke.
type LayoutError struct {
	Layout string
	Offset int
	Reason string
}

func (e *LayoutError) Error() string {
	return fmt.Sprintf("invalid layout at offset %d: %s", e.Offset, e.Reason)
}

func (e *LayoutError) Unwrap() error { return ErrInvalidLayout }

// MoveError is returned when a move request is rejected.
type MoveError struct {
	From   Square
	To     Square
	Reason string
	Err    error
}

func (e *MoveError) Error() string {
	return fmt.Sprintf("%s%s: %s", e.From, e.To, e.Reason)
}

func (e *MoveError) Unwrap() error { return e.Err }

func illegalMove(req MoveRequest, reason string) error {
	return &MoveError{From: req.From, To: req.To, Reason: reason, Err: ErrIllegalMove}
}
