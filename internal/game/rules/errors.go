package rules

import (
	"errors"
	"fmt"
)

// ErrorKind classifies engine errors.
type ErrorKind uint8

const (
	// IllegalAction is a well-formed action the rules do not allow right now.
	IllegalAction ErrorKind = iota + 1
	// ProtocolViolation is input that does not fit the conversation with the
	// engine: acting without priority, answering the wrong decision.
	ProtocolViolation
	// InvariantViolation means the engine itself reached an inconsistent state.
	InvariantViolation
)

func (k ErrorKind) String() string {
	switch k {
	case IllegalAction:
		return "illegal action"
	case ProtocolViolation:
		return "protocol violation"
	case InvariantViolation:
		return "invariant violation"
	}
	return "unknown"
}

// EngineError is returned for every rejected action. The state passed in is
// left unchanged.
type EngineError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *EngineError) Unwrap() error { return e.Err }

var (
	ErrEmptyStack          = errors.New("stack is empty")
	ErrNoPriority          = errors.New("player does not have priority")
	ErrDecisionPending     = errors.New("a decision is pending")
	ErrNoDecision          = errors.New("no decision is pending")
	ErrDecisionMismatch    = errors.New("decision id does not match")
	ErrWrongPlayer         = errors.New("decision belongs to another player")
	ErrInvalidChoice       = errors.New("invalid choice")
	ErrGameOver            = errors.New("game is over")
	ErrTiming              = errors.New("wrong timing")
	ErrNotInHand           = errors.New("card is not in hand")
	ErrNotAllowed          = errors.New("not allowed")
	ErrCannotPay           = errors.New("cannot pay cost")
	ErrBadTargets          = errors.New("invalid targets")
	ErrNoSuchAbility       = errors.New("no such ability")
	ErrIllegalAttack       = errors.New("illegal attack")
	ErrIllegalBlock        = errors.New("illegal block")
	ErrUnknownCard         = errors.New("unknown card")
	ErrDidNotSettle        = errors.New("state did not settle")
	ErrUnknownAction       = errors.New("unknown action")
	ErrUnknownContinuation = errors.New("unknown continuation")
)

func wrap(kind ErrorKind, op string, sentinel error, format string, args ...any) error {
	if format == "" {
		return &EngineError{Kind: kind, Op: op, Err: sentinel}
	}
	return &EngineError{Kind: kind, Op: op, Err: fmt.Errorf("%w: "+format, append([]any{sentinel}, args...)...)}
}

func illegal(op string, sentinel error, format string, args ...any) error {
	return wrap(IllegalAction, op, sentinel, format, args...)
}

func protocol(op string, sentinel error, format string, args ...any) error {
	return wrap(ProtocolViolation, op, sentinel, format, args...)
}

func invariant(op string, err error) error {
	var ee *EngineError
	if errors.As(err, &ee) {
		return err
	}
	return &EngineError{Kind: InvariantViolation, Op: op, Err: err}
}

func kindOf(err error) ErrorKind {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee.Kind
	}
	return 0
}

// IsIllegalAction reports whether err rejects an action the rules forbid.
func IsIllegalAction(err error) bool { return kindOf(err) == IllegalAction }

// IsProtocolViolation reports whether err rejects out-of-protocol input.
func IsProtocolViolation(err error) bool { return kindOf(err) == ProtocolViolation }

// IsInvariantViolation reports whether err is an internal consistency failure.
func IsInvariantViolation(err error) bool { return kindOf(err) == InvariantViolation }
