package compiler

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/patchgrid/internal/ctxlog"
	"github.com/specialistvlad/patchgrid/internal/dag"
	"github.com/specialistvlad/patchgrid/internal/graph"
	"github.com/specialistvlad/patchgrid/internal/node"
	"github.com/specialistvlad/patchgrid/internal/patch"
)

// storeFunc is the call that declares a store. It is not a node kind: a
// store holds one value across ticks and is read by naming it.
const storeFunc = "Store"

// Options controls compilation.
type Options struct {
	// SampleRate in Hz; must be positive and finite.
	SampleRate float64
	// LFOShape names the waveform for every LFO node; see node.ShapeNames.
	// Empty selects node.DefaultShape.
	LFOShape string
}

// compiler holds the state of a single Compile call.
type compiler struct {
	filename string
	shape    node.Waveform

	nodes []node.Node
	sites []hcl.Range

	bindings []*binding
	byName   map[string][]*binding
	pending  []pendingRef
	outputs  []int

	stores  []*binding
	writers []int
}

// pendingRef is an identifier argument waiting for pass two. owner is -1 for
// a bare identifier statement, which only has to resolve.
type pendingRef struct {
	owner int
	arg   int
	ident *patch.Ident
	stmt  int
}

// Compile builds a Graph from prog. The returned error is an *Error unless
// the options themselves are invalid.
func Compile(ctx context.Context, prog *patch.Program, opts Options) (*graph.Graph, error) {
	logger := ctxlog.FromContext(ctx).With("patch", prog.Filename)
	logger.Debug("Compile: Starting graph compilation.", "statements", len(prog.Statements))

	if opts.SampleRate <= 0 || math.IsNaN(opts.SampleRate) || math.IsInf(opts.SampleRate, 0) {
		return nil, &Error{Err: ErrInvalidSampleRate, Detail: fmt.Sprintf("sample rate must be a positive number, got %g", opts.SampleRate)}
	}
	shape, err := node.LookupShape(opts.LFOShape)
	if err != nil {
		return nil, err
	}

	c := &compiler{
		filename: prog.Filename,
		shape:    shape,
		byName:   make(map[string][]*binding),
	}

	// First pass: nodes and bindings.
	for i, stmt := range prog.Statements {
		if err := c.statement(i, stmt); err != nil {
			return nil, err
		}
	}
	logger.Debug("Compile: Node creation complete.", "node_count", len(c.nodes), "bindings", len(c.bindings))

	// Second pass: resolve identifier arguments.
	if err := c.resolveReferences(); err != nil {
		return nil, err
	}
	logger.Debug("Compile: Reference resolution complete.", "references", len(c.pending))

	if err := c.checkWriters(); err != nil {
		return nil, err
	}
	if err := c.checkMapRanges(); err != nil {
		return nil, err
	}

	deps, err := c.dependencyGraph()
	if err != nil {
		return nil, err
	}
	if err := deps.DetectCycles(); err != nil {
		return nil, c.cycleError(err)
	}
	logger.Debug("Compile: Cycle detection passed.")

	output, err := c.output()
	if err != nil {
		return nil, err
	}

	// Writers are roots too: their store feeds the next tick even when
	// Output does not read it in this one.
	plan, err := deps.TopoOrder(append([]int{output}, c.writers...)...)
	if err != nil {
		return nil, c.cycleError(err)
	}

	g, err := graph.New(c.nodes, plan, output, opts.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("internal error assembling graph: %w", err)
	}
	logger.Debug("Compile: Graph compilation successful.",
		"node_count", g.Len(),
		"planned", len(g.Plan),
		"stores", len(g.Stores),
		"excluded", len(g.Excluded()),
	)
	return g, nil
}

func (c *compiler) statement(i int, stmt *patch.Statement) error {
	switch v := stmt.Value.(type) {
	case *patch.Call:
		if v.Name == storeFunc {
			return c.declareStore(i, stmt, v)
		}
		idx, err := c.call(v, i, stmt.Target)
		if err != nil {
			return err
		}
		if stmt.IsAssignment() {
			c.bind(&binding{name: stmt.Target, stmt: i, node: idx, site: stmt.TargetRange})
		}
	case *patch.Number:
		if stmt.IsAssignment() {
			c.bind(&binding{name: stmt.Target, stmt: i, node: -1, literal: v.Value, isLiteral: true, site: stmt.TargetRange})
		}
	case *patch.Ident:
		if stmt.IsAssignment() {
			c.bind(&binding{name: stmt.Target, stmt: i, node: -1, alias: v, site: stmt.TargetRange})
		} else {
			c.pending = append(c.pending, pendingRef{owner: -1, ident: v, stmt: i})
		}
	default:
		return fmt.Errorf("internal error: unexpected expression %T", v)
	}
	return nil
}

// declareStore binds `name = Store()` to a fresh store id.
func (c *compiler) declareStore(i int, stmt *patch.Statement, call *patch.Call) error {
	if !stmt.IsAssignment() {
		return misplacedStore(call)
	}
	if len(call.Args) != 0 {
		return &Error{
			Err:     ErrArityMismatch,
			Name:    call.Name,
			Subject: call.SrcRange,
			Detail:  fmt.Sprintf("%s takes 0 argument(s), got %d", storeFunc, len(call.Args)),
		}
	}
	b := &binding{name: stmt.Target, stmt: i, node: -1, store: len(c.stores), isStore: true, site: stmt.TargetRange}
	c.stores = append(c.stores, b)
	c.bind(b)
	return nil
}

func misplacedStore(call *patch.Call) error {
	return &Error{
		Err:     ErrInvalidStore,
		Name:    call.Name,
		Subject: call.SrcRange,
		Detail:  storeFunc + "() must be assigned directly to a name",
	}
}

// call appends a node for the call and, recursively, for its nested calls.
func (c *compiler) call(call *patch.Call, stmt int, name string) (int, error) {
	if call.Name == storeFunc {
		return 0, misplacedStore(call)
	}
	kind, ok := node.LookupKind(call.Name)
	if !ok {
		return 0, &Error{
			Err:     ErrUnknownFunction,
			Name:    call.Name,
			Subject: call.NameRange,
			Detail:  "expected one of " + strings.Join(append(node.Names(), storeFunc), ", "),
		}
	}
	if len(call.Args) != kind.Arity() {
		return 0, &Error{
			Err:     ErrArityMismatch,
			Name:    call.Name,
			Subject: call.SrcRange,
			Detail:  fmt.Sprintf("%s takes %d argument(s), got %d", kind, kind.Arity(), len(call.Args)),
		}
	}

	label := name
	if label == "" {
		label = fmt.Sprintf("%s@%d:%d", kind, call.SrcRange.Start.Line, call.SrcRange.Start.Column)
	}
	idx := len(c.nodes)
	n := node.New(kind, label)
	if kind == node.KindLFO {
		n.Shape = c.shape
	}
	c.nodes = append(c.nodes, n)
	c.sites = append(c.sites, call.SrcRange)
	switch kind {
	case node.KindOutput:
		c.outputs = append(c.outputs, idx)
	case node.KindWriter:
		c.writers = append(c.writers, idx)
	}

	for arg, expr := range call.Args {
		switch v := expr.(type) {
		case *patch.Number:
			c.nodes[idx].Inputs[arg] = node.Literal(v.Value)
		case *patch.Ident:
			c.pending = append(c.pending, pendingRef{owner: idx, arg: arg, ident: v, stmt: stmt})
		case *patch.Call:
			child, err := c.call(v, stmt, "")
			if err != nil {
				return 0, err
			}
			c.nodes[idx].Inputs[arg] = node.Ref(child)
		default:
			return 0, fmt.Errorf("internal error: unexpected argument %T", v)
		}
	}
	return idx, nil
}

func (c *compiler) resolveReferences() error {
	for _, ref := range c.pending {
		in, err := c.resolveName(ref.ident, ref.stmt)
		if err != nil {
			return err
		}
		if ref.owner >= 0 {
			c.nodes[ref.owner].Inputs[ref.arg] = in
		}
	}
	return nil
}

// checkWriters requires every Writer to name a store as its first argument
// and allows at most one Writer per store.
func (c *compiler) checkWriters() error {
	written := make(map[int]int, len(c.writers))
	for _, idx := range c.writers {
		n := &c.nodes[idx]
		target := n.Inputs[0]
		if !target.IsStore {
			return &Error{
				Err:     ErrInvalidStore,
				Name:    n.Label,
				Subject: c.sites[idx],
				Detail:  "the first argument of Writer must name a " + storeFunc + "()",
			}
		}
		if prev, ok := written[target.Store]; ok {
			return &Error{
				Err:     ErrInvalidStore,
				Name:    c.stores[target.Store].name,
				Subject: c.sites[idx],
				Detail:  fmt.Sprintf("the store is already written on line %d", c.sites[prev].Start.Line),
			}
		}
		written[target.Store] = idx
	}
	return nil
}

// checkMapRanges rejects Map calls whose input bounds are equal constants.
func (c *compiler) checkMapRanges() error {
	for i := range c.nodes {
		n := &c.nodes[i]
		if n.Kind != node.KindMap {
			continue
		}
		lo, hi := n.Inputs[1], n.Inputs[2]
		if lo.IsConst() && hi.IsConst() && lo.Value == hi.Value {
			return &Error{
				Err:     ErrDegenerateRange,
				Name:    n.Label,
				Subject: c.sites[i],
				Detail:  fmt.Sprintf("input bounds are both %g, so the scale factor is undefined", lo.Value),
			}
		}
	}
	return nil
}

func (c *compiler) dependencyGraph() (*dag.Graph, error) {
	deps := dag.New(len(c.nodes))
	for i := range c.nodes {
		for _, in := range c.nodes[i].Args() {
			if !in.IsRef {
				continue
			}
			if err := deps.AddEdge(i, in.Node); err != nil {
				return nil, fmt.Errorf("internal error linking node %d: %w", i, err)
			}
		}
	}
	return deps, nil
}

func (c *compiler) cycleError(err error) error {
	var cycle *dag.CycleError
	if !errors.As(err, &cycle) {
		return err
	}
	labels := make([]string, len(cycle.Path))
	for i, idx := range cycle.Path {
		labels[i] = c.nodes[idx].Label
	}
	first := cycle.Path[0]
	return &Error{
		Err:     ErrCycleDetected,
		Name:    c.nodes[first].Label,
		Subject: c.sites[first],
		Detail:  strings.Join(labels, " -> "),
	}
}

func (c *compiler) output() (int, error) {
	switch len(c.outputs) {
	case 0:
		return 0, &Error{
			Err:     ErrMissingOutput,
			Subject: hcl.Range{Filename: c.filename, Start: hcl.InitialPos, End: hcl.InitialPos},
			Detail:  "the patch must call Output(...) exactly once",
		}
	case 1:
		return c.outputs[0], nil
	default:
		first := c.sites[c.outputs[0]]
		return 0, &Error{
			Err:     ErrMultipleOutputs,
			Name:    node.KindOutput.String(),
			Subject: c.sites[c.outputs[1]],
			Detail:  fmt.Sprintf("Output is already called on line %d", first.Start.Line),
		}
	}
}
