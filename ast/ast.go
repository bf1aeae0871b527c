// Package ast defines the typed, fully resolved form of a Sable source unit
// as produced by the compiler front-end. The analysis packages in this
// repository consume these values read-only; nothing here is created or
// mutated after the front-end (or the decoder in this package) is done.
package ast

import "fmt"

// NodeID is the stable identity of an AST node within one unit. The
// front-end assigns IDs; they are dense, unique, and never reused, which
// makes them suitable for deterministic ordering of derived data.
type NodeID int64

// Node is implemented by every AST node.
type Node interface {
	ASTID() NodeID
}

// Unit is one fully analyzed source unit.
type Unit struct {
	Contracts []*Contract
}

// Contract is a contract declaration with its precomputed linearization and
// external interface.
type Contract struct {
	ID   NodeID
	Name string

	// Linearized is the C3-style linearization of the contract, most-derived
	// first. Element 0 is always the contract itself.
	Linearized []*Contract

	StateVars      []*StateVariable
	BaseSpecifiers []*BaseSpecifier

	Constructor *Callable
	Functions   []*Callable
	Modifiers   []*Callable
	Fallback    *Callable
	Receive     *Callable

	// InterfaceFunctions lists the externally invocable functions of the
	// contract, sorted by ascending selector.
	InterfaceFunctions []InterfaceFunction
}

func (c *Contract) ASTID() NodeID { return c.ID }

func (c *Contract) String() string { return c.Name }

// SuperContract returns the contract following c in the linearization of
// mostDerived, or nil if c is the last (most-base) contract. It is the
// starting point for super-lookup resolution.
func (c *Contract) SuperContract(mostDerived *Contract) *Contract {
	for i, base := range mostDerived.Linearized {
		if base == c {
			if i+1 < len(mostDerived.Linearized) {
				return mostDerived.Linearized[i+1]
			}
			return nil
		}
	}
	panic(fmt.Sprintf("ast: contract %s not in linearization of %s", c.Name, mostDerived.Name))
}

// InterfaceFunction is one entry of a contract's external interface.
type InterfaceFunction struct {
	// Selector is the 4-byte selector in lowercase hex, e.g. "a9059cbb".
	Selector string
	Decl     *Callable
}

// StateVariable is a contract-level variable declaration. Value is the
// initializer expression, nil when the variable is default-initialized.
type StateVariable struct {
	ID    NodeID
	Name  string
	Value Expr
}

func (v *StateVariable) ASTID() NodeID { return v.ID }

// BaseSpecifier carries the constructor arguments a contract supplies to one
// of its direct bases, e.g. the "(42)" in "contract D is B(42)".
type BaseSpecifier struct {
	ID   NodeID
	Base *Contract
	Args []Expr
}

func (b *BaseSpecifier) ASTID() NodeID { return b.ID }

// CallableKind distinguishes the declaration forms that can appear as call
// targets.
type CallableKind int

const (
	KindFunction CallableKind = iota
	KindModifier
	KindConstructor
	KindFallback
	KindReceive
)

func (k CallableKind) String() string {
	switch k {
	case KindFunction:
		return "function"
	case KindModifier:
		return "modifier"
	case KindConstructor:
		return "constructor"
	case KindFallback:
		return "fallback"
	case KindReceive:
		return "receive"
	default:
		return fmt.Sprintf("CallableKind(%d)", int(k))
	}
}

// Callable is a function, modifier, or constructor declaration. Two
// declarations are the same callable iff they are the same *Callable;
// overloads and overrides are distinct values.
type Callable struct {
	ID   NodeID
	Name string
	Kind CallableKind

	// Signature is the canonical parameter signature, e.g. "(uint256,address)".
	// Name plus Signature identifies an override chain across contracts.
	Signature string

	Contract    *Contract
	Virtual     bool
	Implemented bool

	ModifierInvocations []*ModifierInvocation
	Body                []Stmt
}

func (c *Callable) ASTID() NodeID { return c.ID }

func (c *Callable) String() string {
	if c.Contract == nil {
		return c.Name + c.Signature
	}
	switch c.Kind {
	case KindConstructor, KindFallback, KindReceive:
		return c.Contract.Name + "." + c.Kind.String()
	default:
		return c.Contract.Name + "." + c.Name + c.Signature
	}
}

// ModifierInvocation is the application of a modifier (or a base-constructor
// invocation written in modifier position) on a callable. For a modifier the
// Name identifier carries the referenced declaration; for a base-constructor
// invocation it references no callable and only the arguments matter.
type ModifierInvocation struct {
	ID   NodeID
	Name *Identifier
	Args []Expr
}

func (m *ModifierInvocation) ASTID() NodeID { return m.ID }

// Lookup is the resolution strategy the type checker recorded for a
// reference to a callable.
type Lookup int

const (
	LookupVirtual Lookup = iota
	LookupStatic
	LookupSuper
)

func (l Lookup) String() string {
	switch l {
	case LookupVirtual:
		return "virtual"
	case LookupStatic:
		return "static"
	case LookupSuper:
		return "super"
	default:
		return fmt.Sprintf("Lookup(%d)", int(l))
	}
}

// TypeKind classifies an expression's type as far as call-graph construction
// cares. Anything else is TypeOther.
type TypeKind int

const (
	TypeOther TypeKind = iota
	// TypeInternalFunction is a function value callable by internal jump.
	TypeInternalFunction
	// TypeExternalFunction is a function value called via an external message.
	TypeExternalFunction
	// TypeContract is a value of contract type, including the magic super value.
	TypeContract
	// TypeTypeType is a mention of a type itself, e.g. the C in C.f().
	TypeTypeType
	// TypeModule is an imported module used as a namespace qualifier.
	TypeModule
)

// TypeInfo is the slice of front-end type information attached to
// expressions that the call-graph builder inspects.
type TypeInfo struct {
	Kind TypeKind

	// Bound marks an internal function type attached to a first argument,
	// e.g. x.helper() with "using Lib for T".
	Bound bool

	// Super marks a contract-typed expression that is the super value.
	Super bool

	// Contract is the referenced contract for TypeContract and TypeTypeType,
	// and the instantiated contract for new expressions.
	Contract *Contract

	// HasDeclaration reports whether a function-typed expression has a
	// statically known declaration. Internal function values without one are
	// only reachable through the active dispatch table.
	HasDeclaration bool
}

// Annotation is the resolved information the type checker attached to an
// identifier, member access, call, or new expression.
type Annotation struct {
	// ReferencedDecl is the statically referenced callable, nil when the
	// reference does not name one.
	ReferencedDecl *Callable

	Lookup Lookup

	// CalledDirectly is false when the reference escapes as a value (is
	// stored, passed, compared) rather than being immediately called; such
	// references also enter the active dispatch table.
	CalledDirectly bool

	Type TypeInfo
}
