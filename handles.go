package dylib

import (
	"slices"

	"go.uber.org/multierr"
)

// handleSet is the ordered collection of opened libraries plus the process scope.
// All methods must be called holding the Registry lock.
type handleSet struct {
	loader  Loader
	handles []Handle // load order
	process Handle   // Invalid while no process scope is registered
}

func (s *handleSet) find(h Handle) int {
	return slices.Index(s.handles, h)
}

func (s *handleSet) contains(h Handle) bool {
	if h == Invalid {
		return false
	}
	return h == s.process || s.find(h) >= 0
}

// add registers h and returns the entry callers should use.
//
// A duplicate is closed when canClose holds, otherwise it stays open and unregistered.
// The process slot is replaced only when canClose holds.
func (s *handleSet) add(h Handle, isProcess, canClose bool) (entry Handle, added bool, err error) {
	if !isProcess {
		if i := s.find(h); i >= 0 {
			if canClose {
				err = s.loader.Close(h)
			}
			return s.handles[i], false, err
		}
		s.handles = append(s.handles, h)
		return h, true, nil
	}
	if s.process == Invalid {
		s.process = h
		return h, true, nil
	}
	if !canClose {
		return s.process, false, nil
	}
	// the old reference is released even when the loader handed back the same value
	err = s.loader.Close(s.process)
	s.process = h
	return h, false, err
}

// libLookup scans the libraries only, never the process scope.
func (s *handleSet) libLookup(name string, dir Direction) Sym {
	if dir == LoadOrder {
		for _, h := range s.handles {
			if p := s.loader.Symbol(h, name); p != 0 {
				return p
			}
		}
		return 0
	}
	for i := len(s.handles) - 1; i >= 0; i-- {
		if p := s.loader.Symbol(s.handles[i], name); p != 0 {
			return p
		}
	}
	return 0
}

func (s *handleSet) lookup(name string, o SearchOrdering) Sym {
	if s.process == Invalid || o.Precedence == HandlesFirst {
		if p := s.libLookup(name, o.Direction); p != 0 {
			return p
		}
	}
	if s.process != Invalid {
		// one query covers the main program and every library with global visibility
		if p := s.loader.Symbol(s.process, name); p != 0 {
			return p
		}
		// libraries opened with local visibility are hidden from the query above
		if o.Precedence == HandlesLast {
			if p := s.libLookup(name, o.Direction); p != 0 {
				return p
			}
		}
	}
	return 0
}

// remove unregisters h without closing it.
func (s *handleSet) remove(h Handle) bool {
	if h == Invalid {
		return false
	}
	if h == s.process {
		s.process = Invalid
		return true
	}
	if i := s.find(h); i >= 0 {
		s.handles = slices.Delete(s.handles, i, i+1)
		return true
	}
	return false
}

func (s *handleSet) snapshot() ([]Handle, Handle) {
	return slices.Clone(s.handles), s.process
}

// drain closes every library, most recent first, then the process scope.
func (s *handleSet) drain() (err error) {
	for i := len(s.handles) - 1; i >= 0; i-- {
		err = multierr.Append(err, s.loader.Close(s.handles[i]))
	}
	s.handles = nil
	if s.process != Invalid {
		err = multierr.Append(err, s.loader.Close(s.process))
		s.process = Invalid
	}
	return
}
