package dylib

import (
	"fmt"
	"strings"
)

type (
	// Direction is the order the explicitly loaded libraries are scanned in.
	Direction uint8
	// Precedence decides whether the process scope or the loaded libraries are searched first.
	Precedence uint8
	// SearchOrdering is the lookup policy of a Registry.
	SearchOrdering struct {
		Direction  Direction
		Precedence Precedence
	}
	// OrderFlag is the bit set form of a SearchOrdering.
	OrderFlag uint8
)

const (
	ReverseLoadOrder Direction = iota // most recently loaded first
	LoadOrder                         // first loaded first
)

const (
	// ProcessOnly searches the loaded libraries only while no process scope is registered.
	ProcessOnly Precedence = iota
	// HandlesFirst searches the loaded libraries before the process scope.
	HandlesFirst
	// HandlesLast searches the loaded libraries when the process scope missed.
	HandlesLast
)

const (
	FlagLoadOrder   OrderFlag = 1 << iota // scan in load order
	FlagLoadedFirst                       // libraries before the process scope
	FlagLoadedLast                        // libraries after the process scope
)

// DefaultOrdering searches the process scope first, then the libraries most recent first.
var DefaultOrdering = SearchOrdering{Direction: ReverseLoadOrder, Precedence: HandlesLast}

// Validate rejects unknown directions and precedences.
func (o SearchOrdering) Validate() error {
	if o.Direction > LoadOrder {
		return fmt.Errorf("%w: direction %d", ErrInvalidOrdering, o.Direction)
	}
	if o.Precedence > HandlesLast {
		return fmt.Errorf("%w: precedence %d", ErrInvalidOrdering, o.Precedence)
	}
	return nil
}

// Flags returns the bit set form of o.
func (o SearchOrdering) Flags() (f OrderFlag) {
	if o.Direction == LoadOrder {
		f |= FlagLoadOrder
	}
	switch o.Precedence {
	case HandlesFirst:
		f |= FlagLoadedFirst
	case HandlesLast:
		f |= FlagLoadedLast
	}
	return
}

// OrderingFromFlags converts a bit set, setting both precedence flags is an error.
func OrderingFromFlags(f OrderFlag) (o SearchOrdering, err error) {
	if f&FlagLoadedFirst != 0 && f&FlagLoadedLast != 0 {
		return o, fmt.Errorf("%w: both loaded-first and loaded-last requested", ErrInvalidOrdering)
	}
	if f&^(FlagLoadOrder|FlagLoadedFirst|FlagLoadedLast) != 0 {
		return o, fmt.Errorf("%w: unknown flags %#x", ErrInvalidOrdering, uint8(f))
	}
	if f&FlagLoadOrder != 0 {
		o.Direction = LoadOrder
	}
	switch {
	case f&FlagLoadedFirst != 0:
		o.Precedence = HandlesFirst
	case f&FlagLoadedLast != 0:
		o.Precedence = HandlesLast
	}
	return
}

func (d Direction) String() string {
	switch d {
	case ReverseLoadOrder:
		return "reverse"
	case LoadOrder:
		return "load-order"
	default:
		return fmt.Sprintf("Direction(%d)", d)
	}
}

func (p Precedence) String() string {
	switch p {
	case ProcessOnly:
		return "process-only"
	case HandlesFirst:
		return "handles-first"
	case HandlesLast:
		return "handles-last"
	default:
		return fmt.Sprintf("Precedence(%d)", p)
	}
}

func (o SearchOrdering) String() string {
	return o.Direction.String() + "," + o.Precedence.String()
}

// ParseOrdering reads the comma separated form produced by String.
//
// Omitted parts keep their DefaultOrdering value, so "load-order" alone means load
// order with the libraries searched last.
func ParseOrdering(s string) (o SearchOrdering, err error) {
	o = DefaultOrdering
	var dir, prec bool
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		switch tok {
		case "":
			continue
		case "reverse", "load-order":
			if dir {
				return o, fmt.Errorf("%w: direction given twice in %q", ErrInvalidOrdering, s)
			}
			dir = true
			o.Direction = ReverseLoadOrder
			if tok == "load-order" {
				o.Direction = LoadOrder
			}
		case "process-only", "handles-first", "handles-last":
			if prec {
				return o, fmt.Errorf("%w: precedence given twice in %q", ErrInvalidOrdering, s)
			}
			prec = true
			switch tok {
			case "process-only":
				o.Precedence = ProcessOnly
			case "handles-first":
				o.Precedence = HandlesFirst
			default:
				o.Precedence = HandlesLast
			}
		default:
			return o, fmt.Errorf("%w: unknown token %q", ErrInvalidOrdering, tok)
		}
	}
	return o, nil
}
