package compiler

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/patchgrid/internal/node"
	"github.com/specialistvlad/patchgrid/internal/patch"
)

// bindingState marks alias resolution progress.
type bindingState uint8

const (
	unresolved bindingState = iota
	resolving
	resolved
)

// binding is one `name = expr` statement. Exactly one of node (>= 0),
// isLiteral, isStore, or alias describes its value.
type binding struct {
	name string
	stmt int
	site hcl.Range

	node      int
	literal   float64
	isLiteral bool
	store     int
	isStore   bool
	alias     *patch.Ident

	state bindingState
	value node.Input
}

func (c *compiler) bind(b *binding) {
	c.bindings = append(c.bindings, b)
	c.byName[b.name] = append(c.byName[b.name], b)
}

// lookup finds the binding an identifier in statement stmt refers to: the
// latest assignment in an earlier statement, otherwise the first one at or
// after stmt.
func (c *compiler) lookup(name string, stmt int) (*binding, bool) {
	candidates := c.byName[name]
	var found *binding
	for _, b := range candidates {
		if b.stmt < stmt {
			found = b
		}
	}
	if found != nil {
		return found, true
	}
	for _, b := range candidates {
		if b.stmt >= stmt {
			return b, true
		}
	}
	return nil, false
}

func (c *compiler) resolveName(ident *patch.Ident, stmt int) (node.Input, error) {
	b, ok := c.lookup(ident.Name, stmt)
	if !ok {
		return node.Input{}, &Error{
			Err:     ErrUnknownReference,
			Name:    ident.Name,
			Subject: ident.SrcRange,
			Detail:  fmt.Sprintf("%q is never assigned in this patch", ident.Name),
		}
	}
	return c.resolveBinding(b)
}

// resolveBinding follows alias chains down to a node reference or literal.
func (c *compiler) resolveBinding(b *binding) (node.Input, error) {
	switch b.state {
	case resolved:
		return b.value, nil
	case resolving:
		return node.Input{}, &Error{
			Err:     ErrCycleDetected,
			Name:    b.name,
			Subject: b.site,
			Detail:  fmt.Sprintf("%q is defined in terms of itself", b.name),
		}
	}

	b.state = resolving
	switch {
	case b.node >= 0:
		b.value = node.Ref(b.node)
	case b.isLiteral:
		b.value = node.Literal(b.literal)
	case b.isStore:
		b.value = node.StoreRead(b.store)
	default:
		in, err := c.resolveName(b.alias, b.stmt)
		if err != nil {
			return node.Input{}, err
		}
		b.value = in
	}
	b.state = resolved
	return b.value, nil
}
