package ast

import "fmt"

// ResolveVirtual returns the most-derived implemented declaration overriding
// c along the linearization of mostDerived. When searchStart is non-nil the
// search begins at searchStart instead of the front of the linearization,
// which is how super lookup skips past the calling contract.
//
// The front-end has already validated that an implementation exists wherever
// this is consulted, so failing to find one is an internal error.
func (c *Callable) ResolveVirtual(mostDerived *Contract, searchStart *Contract) *Callable {
	searching := searchStart == nil
	for _, contract := range mostDerived.Linearized {
		if !searching {
			searching = contract == searchStart
			if !searching {
				continue
			}
		}
		if found := contract.declared(c); found != nil && found.Implemented {
			return found
		}
	}
	panic(fmt.Sprintf("ast: no implementation of %s found in linearization of %s", c, mostDerived.Name))
}

// declared returns the declaration in this contract (not its bases) matching
// c's override slot, or nil.
func (c *Contract) declared(target *Callable) *Callable {
	switch target.Kind {
	case KindConstructor:
		if c.Constructor != nil && c.Constructor.Name == target.Name {
			return c.Constructor
		}
	case KindModifier:
		for _, m := range c.Modifiers {
			if m.Name == target.Name {
				return m
			}
		}
	default:
		for _, f := range c.Functions {
			if f.Name == target.Name && f.Signature == target.Signature {
				return f
			}
		}
	}
	return nil
}
