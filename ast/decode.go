package ast

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// Wire form of a serialized unit. The front-end emits declarations inline and
// references them elsewhere by ID, so decoding is two passes: register every
// declaration, then decode bodies and resolve references.

type unitJSON struct {
	Contracts []*contractJSON `json:"contracts"`
}

type contractJSON struct {
	ID             NodeID          `json:"id"`
	Name           string          `json:"name"`
	Linearized     []NodeID        `json:"linearized"`
	StateVars      []*stateVarJSON `json:"stateVars"`
	BaseSpecifiers []*baseSpecJSON `json:"baseSpecifiers"`
	Constructor    *callableJSON   `json:"constructor"`
	Functions      []*callableJSON `json:"functions"`
	Modifiers      []*callableJSON `json:"modifiers"`
	Fallback       *callableJSON   `json:"fallback"`
	Receive        *callableJSON   `json:"receive"`
	Interface      []ifaceFuncJSON `json:"interface"`
}

type stateVarJSON struct {
	ID    NodeID          `json:"id"`
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value"`
}

type baseSpecJSON struct {
	ID   NodeID            `json:"id"`
	Base NodeID            `json:"base"`
	Args []json.RawMessage `json:"args"`
}

type callableJSON struct {
	ID          NodeID            `json:"id"`
	Name        string            `json:"name"`
	Kind        string            `json:"kind"`
	Signature   string            `json:"signature"`
	Virtual     bool              `json:"virtual"`
	Implemented bool              `json:"implemented"`
	Modifiers   []*modInvJSON     `json:"modifierInvocations"`
	Body        []json.RawMessage `json:"body"`
}

type modInvJSON struct {
	ID   NodeID            `json:"id"`
	Name json.RawMessage   `json:"name"`
	Args []json.RawMessage `json:"args"`
}

type ifaceFuncJSON struct {
	Selector string `json:"selector"`
	Function NodeID `json:"function"`
}

type annotationJSON struct {
	DeclRef        *NodeID       `json:"declRef"`
	Lookup         string        `json:"lookup"`
	CalledDirectly bool          `json:"calledDirectly"`
	Type           *typeInfoJSON `json:"type"`
}

type typeInfoJSON struct {
	Kind           string  `json:"kind"`
	Bound          bool    `json:"bound"`
	Super          bool    `json:"super"`
	Contract       *NodeID `json:"contract"`
	HasDeclaration bool    `json:"hasDeclaration"`
}

// nodeJSON is the shared header of every polymorphic expression or statement
// node; the "node" tag selects the concrete shape.
type nodeJSON struct {
	Node string `json:"node"`
	ID   NodeID `json:"id"`
}

type decoder struct {
	contracts map[NodeID]*Contract
	callables map[NodeID]*Callable
	seen      map[NodeID]bool
}

// DecodeUnit reads one serialized unit. It resolves all by-ID references and
// rejects structurally broken input: unknown or duplicate IDs, and
// linearizations that do not start with the contract itself.
func DecodeUnit(r io.Reader) (*Unit, error) {
	var wire unitJSON
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&wire); err != nil {
		return nil, fmt.Errorf("ast: decode unit: %w", err)
	}

	d := &decoder{
		contracts: make(map[NodeID]*Contract),
		callables: make(map[NodeID]*Callable),
		seen:      make(map[NodeID]bool),
	}

	// Pass 1: register every declaration so references resolve regardless of
	// declaration order.
	unit := &Unit{}
	for _, cj := range wire.Contracts {
		contract, err := d.registerContract(cj)
		if err != nil {
			return nil, err
		}
		unit.Contracts = append(unit.Contracts, contract)
	}

	// Pass 2: resolve references and decode bodies.
	for i, cj := range wire.Contracts {
		if err := d.fillContract(unit.Contracts[i], cj); err != nil {
			return nil, err
		}
	}

	return unit, nil
}

func (d *decoder) claimID(id NodeID, what string) error {
	if d.seen[id] {
		return fmt.Errorf("ast: duplicate node ID %d (%s)", id, what)
	}
	d.seen[id] = true
	return nil
}

func (d *decoder) registerContract(cj *contractJSON) (*Contract, error) {
	if err := d.claimID(cj.ID, "contract "+cj.Name); err != nil {
		return nil, err
	}
	contract := &Contract{ID: cj.ID, Name: cj.Name}
	d.contracts[cj.ID] = contract

	register := func(fj *callableJSON, kind CallableKind) (*Callable, error) {
		if fj == nil {
			return nil, nil
		}
		if err := d.claimID(fj.ID, "callable "+fj.Name); err != nil {
			return nil, err
		}
		wantKind, err := callableKind(fj.Kind)
		if err != nil {
			return nil, err
		}
		if wantKind != kind {
			return nil, fmt.Errorf("ast: callable %d declared as %s in a %s slot", fj.ID, fj.Kind, kind)
		}
		callable := &Callable{
			ID:          fj.ID,
			Name:        fj.Name,
			Kind:        kind,
			Signature:   fj.Signature,
			Contract:    contract,
			Virtual:     fj.Virtual,
			Implemented: fj.Implemented,
		}
		d.callables[fj.ID] = callable
		return callable, nil
	}

	var err error
	if contract.Constructor, err = register(cj.Constructor, KindConstructor); err != nil {
		return nil, err
	}
	for _, fj := range cj.Functions {
		fn, err := register(fj, KindFunction)
		if err != nil {
			return nil, err
		}
		contract.Functions = append(contract.Functions, fn)
	}
	for _, mj := range cj.Modifiers {
		mod, err := register(mj, KindModifier)
		if err != nil {
			return nil, err
		}
		contract.Modifiers = append(contract.Modifiers, mod)
	}
	if contract.Fallback, err = register(cj.Fallback, KindFallback); err != nil {
		return nil, err
	}
	if contract.Receive, err = register(cj.Receive, KindReceive); err != nil {
		return nil, err
	}
	return contract, nil
}

func (d *decoder) fillContract(contract *Contract, cj *contractJSON) error {
	for _, id := range cj.Linearized {
		base, ok := d.contracts[id]
		if !ok {
			return fmt.Errorf("ast: contract %s: unknown contract %d in linearization", contract.Name, id)
		}
		contract.Linearized = append(contract.Linearized, base)
	}
	if len(contract.Linearized) == 0 || contract.Linearized[0] != contract {
		return fmt.Errorf("ast: contract %s: linearization must start with the contract itself", contract.Name)
	}

	for _, vj := range cj.StateVars {
		if err := d.claimID(vj.ID, "state variable "+vj.Name); err != nil {
			return err
		}
		v := &StateVariable{ID: vj.ID, Name: vj.Name}
		if len(vj.Value) > 0 {
			value, err := d.decodeExpr(vj.Value)
			if err != nil {
				return err
			}
			v.Value = value
		}
		contract.StateVars = append(contract.StateVars, v)
	}

	for _, bj := range cj.BaseSpecifiers {
		if err := d.claimID(bj.ID, "base specifier"); err != nil {
			return err
		}
		base, ok := d.contracts[bj.Base]
		if !ok {
			return fmt.Errorf("ast: contract %s: unknown base contract %d", contract.Name, bj.Base)
		}
		spec := &BaseSpecifier{ID: bj.ID, Base: base}
		for _, raw := range bj.Args {
			arg, err := d.decodeExpr(raw)
			if err != nil {
				return err
			}
			spec.Args = append(spec.Args, arg)
		}
		contract.BaseSpecifiers = append(contract.BaseSpecifiers, spec)
	}

	fill := func(fj *callableJSON, callable *Callable) error {
		if fj == nil {
			return nil
		}
		for _, mij := range fj.Modifiers {
			if err := d.claimID(mij.ID, "modifier invocation"); err != nil {
				return err
			}
			name, err := d.decodeExpr(mij.Name)
			if err != nil {
				return err
			}
			ident, ok := name.(*Identifier)
			if !ok {
				return fmt.Errorf("ast: modifier invocation %d: name must be an identifier", mij.ID)
			}
			inv := &ModifierInvocation{ID: mij.ID, Name: ident}
			for _, raw := range mij.Args {
				arg, err := d.decodeExpr(raw)
				if err != nil {
					return err
				}
				inv.Args = append(inv.Args, arg)
			}
			callable.ModifierInvocations = append(callable.ModifierInvocations, inv)
		}
		for _, raw := range fj.Body {
			stmt, err := d.decodeStmt(raw)
			if err != nil {
				return err
			}
			callable.Body = append(callable.Body, stmt)
		}
		return nil
	}

	if err := fill(cj.Constructor, contract.Constructor); err != nil {
		return err
	}
	for i, fj := range cj.Functions {
		if err := fill(fj, contract.Functions[i]); err != nil {
			return err
		}
	}
	for i, mj := range cj.Modifiers {
		if err := fill(mj, contract.Modifiers[i]); err != nil {
			return err
		}
	}
	if err := fill(cj.Fallback, contract.Fallback); err != nil {
		return err
	}
	if err := fill(cj.Receive, contract.Receive); err != nil {
		return err
	}

	for _, ij := range cj.Interface {
		decl, ok := d.callables[ij.Function]
		if !ok {
			return fmt.Errorf("ast: contract %s: unknown callable %d in interface", contract.Name, ij.Function)
		}
		contract.InterfaceFunctions = append(contract.InterfaceFunctions, InterfaceFunction{
			Selector: ij.Selector,
			Decl:     decl,
		})
	}
	sort.Slice(contract.InterfaceFunctions, func(i, j int) bool {
		return contract.InterfaceFunctions[i].Selector < contract.InterfaceFunctions[j].Selector
	})
	return nil
}

func (d *decoder) decodeAnnotation(aj *annotationJSON) (Annotation, error) {
	var annot Annotation
	if aj == nil {
		return annot, nil
	}
	if aj.DeclRef != nil {
		decl, ok := d.callables[*aj.DeclRef]
		if !ok {
			return annot, fmt.Errorf("ast: unknown callable %d in declRef", *aj.DeclRef)
		}
		annot.ReferencedDecl = decl
	}
	switch aj.Lookup {
	case "", "virtual":
		annot.Lookup = LookupVirtual
	case "static":
		annot.Lookup = LookupStatic
	case "super":
		annot.Lookup = LookupSuper
	default:
		return annot, fmt.Errorf("ast: unknown lookup %q", aj.Lookup)
	}
	annot.CalledDirectly = aj.CalledDirectly
	if aj.Type != nil {
		switch aj.Type.Kind {
		case "", "other":
			annot.Type.Kind = TypeOther
		case "internalFunction":
			annot.Type.Kind = TypeInternalFunction
		case "externalFunction":
			annot.Type.Kind = TypeExternalFunction
		case "contract":
			annot.Type.Kind = TypeContract
		case "type":
			annot.Type.Kind = TypeTypeType
		case "module":
			annot.Type.Kind = TypeModule
		default:
			return annot, fmt.Errorf("ast: unknown type kind %q", aj.Type.Kind)
		}
		annot.Type.Bound = aj.Type.Bound
		annot.Type.Super = aj.Type.Super
		annot.Type.HasDeclaration = aj.Type.HasDeclaration
		if aj.Type.Contract != nil {
			contract, ok := d.contracts[*aj.Type.Contract]
			if !ok {
				return annot, fmt.Errorf("ast: unknown contract %d in type info", *aj.Type.Contract)
			}
			annot.Type.Contract = contract
		}
	}
	return annot, nil
}

func (d *decoder) decodeExprs(raws []json.RawMessage) ([]Expr, error) {
	var out []Expr
	for _, raw := range raws {
		if len(raw) == 0 || string(raw) == "null" {
			out = append(out, nil)
			continue
		}
		e, err := d.decodeExpr(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (d *decoder) decodeExpr(raw json.RawMessage) (Expr, error) {
	var head nodeJSON
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("ast: decode expression: %w", err)
	}
	if err := d.claimID(head.ID, head.Node); err != nil {
		return nil, err
	}

	switch head.Node {
	case "identifier":
		var w struct {
			nodeJSON
			Name  string          `json:"name"`
			Annot *annotationJSON `json:"annotation"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		annot, err := d.decodeAnnotation(w.Annot)
		if err != nil {
			return nil, err
		}
		return &Identifier{ID: head.ID, Name: w.Name, Annot: annot}, nil

	case "memberAccess":
		var w struct {
			nodeJSON
			Expr   json.RawMessage `json:"expr"`
			Member string          `json:"member"`
			Annot  *annotationJSON `json:"annotation"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		inner, err := d.decodeExpr(w.Expr)
		if err != nil {
			return nil, err
		}
		annot, err := d.decodeAnnotation(w.Annot)
		if err != nil {
			return nil, err
		}
		return &MemberAccess{ID: head.ID, Expr: inner, Member: w.Member, Annot: annot}, nil

	case "call":
		var w struct {
			nodeJSON
			Func  json.RawMessage   `json:"func"`
			Args  []json.RawMessage `json:"args"`
			Annot *annotationJSON   `json:"annotation"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		fn, err := d.decodeExpr(w.Func)
		if err != nil {
			return nil, err
		}
		args, err := d.decodeExprs(w.Args)
		if err != nil {
			return nil, err
		}
		annot, err := d.decodeAnnotation(w.Annot)
		if err != nil {
			return nil, err
		}
		return &FunctionCall{ID: head.ID, Func: fn, Args: args, Annot: annot}, nil

	case "new":
		var w struct {
			nodeJSON
			TypeName string          `json:"typeName"`
			Annot    *annotationJSON `json:"annotation"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		annot, err := d.decodeAnnotation(w.Annot)
		if err != nil {
			return nil, err
		}
		return &NewExpr{ID: head.ID, TypeName: w.TypeName, Annot: annot}, nil

	case "binary":
		var w struct {
			nodeJSON
			X json.RawMessage `json:"x"`
			Y json.RawMessage `json:"y"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		x, err := d.decodeExpr(w.X)
		if err != nil {
			return nil, err
		}
		y, err := d.decodeExpr(w.Y)
		if err != nil {
			return nil, err
		}
		return &BinaryExpr{ID: head.ID, X: x, Y: y}, nil

	case "unary":
		var w struct {
			nodeJSON
			X json.RawMessage `json:"x"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		x, err := d.decodeExpr(w.X)
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{ID: head.ID, X: x}, nil

	case "index":
		var w struct {
			nodeJSON
			X     json.RawMessage `json:"x"`
			Index json.RawMessage `json:"index"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		x, err := d.decodeExpr(w.X)
		if err != nil {
			return nil, err
		}
		idx, err := d.decodeExpr(w.Index)
		if err != nil {
			return nil, err
		}
		return &IndexExpr{ID: head.ID, X: x, Index: idx}, nil

	case "tuple":
		var w struct {
			nodeJSON
			Elems []json.RawMessage `json:"elems"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		elems, err := d.decodeExprs(w.Elems)
		if err != nil {
			return nil, err
		}
		return &TupleExpr{ID: head.ID, Elems: elems}, nil

	case "literal":
		var w struct {
			nodeJSON
			Value string `json:"value"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return &Literal{ID: head.ID, Value: w.Value}, nil

	default:
		return nil, fmt.Errorf("ast: unknown expression node %q (id %d)", head.Node, head.ID)
	}
}

func (d *decoder) decodeStmt(raw json.RawMessage) (Stmt, error) {
	var head nodeJSON
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("ast: decode statement: %w", err)
	}
	if err := d.claimID(head.ID, head.Node); err != nil {
		return nil, err
	}

	optExpr := func(raw json.RawMessage) (Expr, error) {
		if len(raw) == 0 || string(raw) == "null" {
			return nil, nil
		}
		return d.decodeExpr(raw)
	}
	optStmt := func(raw json.RawMessage) (Stmt, error) {
		if len(raw) == 0 || string(raw) == "null" {
			return nil, nil
		}
		return d.decodeStmt(raw)
	}

	switch head.Node {
	case "exprStmt":
		var w struct {
			nodeJSON
			X json.RawMessage `json:"x"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		x, err := d.decodeExpr(w.X)
		if err != nil {
			return nil, err
		}
		return &ExprStmt{ID: head.ID, X: x}, nil

	case "block":
		var w struct {
			nodeJSON
			Stmts []json.RawMessage `json:"stmts"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		block := &Block{ID: head.ID}
		for _, sr := range w.Stmts {
			s, err := d.decodeStmt(sr)
			if err != nil {
				return nil, err
			}
			block.Stmts = append(block.Stmts, s)
		}
		return block, nil

	case "if":
		var w struct {
			nodeJSON
			Cond json.RawMessage `json:"cond"`
			Then json.RawMessage `json:"then"`
			Else json.RawMessage `json:"else"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		cond, err := d.decodeExpr(w.Cond)
		if err != nil {
			return nil, err
		}
		then, err := d.decodeStmt(w.Then)
		if err != nil {
			return nil, err
		}
		els, err := optStmt(w.Else)
		if err != nil {
			return nil, err
		}
		return &If{ID: head.ID, Cond: cond, Then: then, Else: els}, nil

	case "while":
		var w struct {
			nodeJSON
			Cond json.RawMessage `json:"cond"`
			Body json.RawMessage `json:"body"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		cond, err := d.decodeExpr(w.Cond)
		if err != nil {
			return nil, err
		}
		body, err := d.decodeStmt(w.Body)
		if err != nil {
			return nil, err
		}
		return &While{ID: head.ID, Cond: cond, Body: body}, nil

	case "for":
		var w struct {
			nodeJSON
			Init json.RawMessage `json:"init"`
			Cond json.RawMessage `json:"cond"`
			Post json.RawMessage `json:"post"`
			Body json.RawMessage `json:"body"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		init, err := optStmt(w.Init)
		if err != nil {
			return nil, err
		}
		cond, err := optExpr(w.Cond)
		if err != nil {
			return nil, err
		}
		post, err := optStmt(w.Post)
		if err != nil {
			return nil, err
		}
		body, err := d.decodeStmt(w.Body)
		if err != nil {
			return nil, err
		}
		return &For{ID: head.ID, Init: init, Cond: cond, Post: post, Body: body}, nil

	case "return":
		var w struct {
			nodeJSON
			Results []json.RawMessage `json:"results"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		s := &Return{ID: head.ID}
		for _, rr := range w.Results {
			e, err := d.decodeExpr(rr)
			if err != nil {
				return nil, err
			}
			s.Results = append(s.Results, e)
		}
		return s, nil

	case "varDecl":
		var w struct {
			nodeJSON
			Names []string        `json:"names"`
			Value json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		value, err := optExpr(w.Value)
		if err != nil {
			return nil, err
		}
		return &VarDeclStmt{ID: head.ID, Names: w.Names, Value: value}, nil

	case "emit":
		var w struct {
			nodeJSON
			Call json.RawMessage `json:"call"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		e, err := d.decodeExpr(w.Call)
		if err != nil {
			return nil, err
		}
		call, ok := e.(*FunctionCall)
		if !ok {
			return nil, fmt.Errorf("ast: emit %d: payload must be a call", head.ID)
		}
		return &Emit{ID: head.ID, Call: call}, nil

	default:
		return nil, fmt.Errorf("ast: unknown statement node %q (id %d)", head.Node, head.ID)
	}
}

func callableKind(s string) (CallableKind, error) {
	switch s {
	case "function":
		return KindFunction, nil
	case "modifier":
		return KindModifier, nil
	case "constructor":
		return KindConstructor, nil
	case "fallback":
		return KindFallback, nil
	case "receive":
		return KindReceive, nil
	default:
		return 0, fmt.Errorf("ast: unknown callable kind %q", s)
	}
}
