package dataset

import (
	"fmt"
	"iter"
	"log/slog"

	"github.com/arloliu/tally/errs"
	"github.com/arloliu/tally/format"
	"github.com/arloliu/tally/internal/options"
)

// Group is an ordered, named collection of datasets taken over identical
// key lists and one shared outcome schema, the usual shape for repeated
// runs of the same experiment set.
//
// Members are admitted by reference and must already be frozen; the group
// never mutates them. The first admitted member establishes the shared key
// list every later member must match exactly, order included.
//
// Example:
//
//	group, err := dataset.NewGroup([]string{"plus", "minus"})
//	err = group.Admit("DS0", ds0)
//	err = group.Admit("DS1", ds1)
//	total, err := group.Sum()
type Group struct {
	outcomes *OutcomeIndex
	members  map[string]*DataSet
	names    []string
	keys     []Key
	logger   *slog.Logger
}

// NewGroup creates an empty group over the given outcome schema.
func NewGroup(outcomes []string, opts ...GroupOption) (*Group, error) {
	outcomeIdx, err := NewOutcomeIndex(outcomes)
	if err != nil {
		return nil, err
	}

	g := &Group{
		outcomes: outcomeIdx,
		members:  make(map[string]*DataSet),
		logger:   discardLogger,
	}
	if err := options.Apply(g, opts...); err != nil {
		return nil, err
	}

	return g, nil
}

// Admit adds a dataset to the group under the given name. The dataset must
// be frozen, carry the group's outcome schema, and hold exactly the
// group's key list in the same order; the first admitted member fixes that
// list. A failed admission leaves the group unchanged.
//
// Returns:
//   - error: errs.ErrMemberExists, errs.ErrMemberNotFrozen,
//     errs.ErrSchemaMismatch, or errs.ErrMisaligned
func (g *Group) Admit(name string, ds *DataSet) error {
	if _, exists := g.members[name]; exists {
		return fmt.Errorf("%w: %q", errs.ErrMemberExists, name)
	}
	if !ds.IsFrozen() {
		return fmt.Errorf("%w: %q", errs.ErrMemberNotFrozen, name)
	}
	if !ds.outcomes.Equal(g.outcomes) {
		return fmt.Errorf("%w: %q", errs.ErrSchemaMismatch, name)
	}

	if len(g.names) == 0 {
		g.keys = ds.KeyList(false)
	} else if err := g.checkAlignment(name, ds); err != nil {
		return err
	}

	g.members[name] = ds
	g.names = append(g.names, name)
	g.logger.Debug("member admitted", "name", name, "rows", ds.Len(), "members", len(g.names))

	return nil
}

// checkAlignment verifies the candidate holds exactly the group key list.
func (g *Group) checkAlignment(name string, ds *DataSet) error {
	if ds.Len() != len(g.keys) {
		return fmt.Errorf("%w: %q has %d keys, group has %d", errs.ErrMisaligned, name, ds.Len(), len(g.keys))
	}
	for pos, key := range g.keys {
		memberKey, _ := ds.keys.KeyAt(pos)
		if !memberKey.Equal(key) {
			return fmt.Errorf("%w: %q key %d is %s, group has %s", errs.ErrMisaligned, name, pos, memberKey, key)
		}
	}

	return nil
}

// Member returns the dataset admitted under name.
// An unknown name is errs.ErrMemberNotFound.
func (g *Group) Member(name string) (*DataSet, error) {
	ds, ok := g.members[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errs.ErrMemberNotFound, name)
	}

	return ds, nil
}

// Contains reports whether a member was admitted under name.
func (g *Group) Contains(name string) bool {
	_, ok := g.members[name]
	return ok
}

// Len returns the number of members.
func (g *Group) Len() int {
	return len(g.names)
}

// Names returns a copy of the member names in admission order.
func (g *Group) Names() []string {
	names := make([]string, len(g.names))
	copy(names, g.names)

	return names
}

// Keys returns a copy of the shared key list, or nil before the first
// member is admitted.
func (g *Group) Keys() []Key {
	if len(g.keys) == 0 {
		return nil
	}

	keys := make([]Key, len(g.keys))
	copy(keys, g.keys)

	return keys
}

// Outcomes returns a copy of the shared outcome labels.
func (g *Group) Outcomes() []string {
	return g.outcomes.Labels()
}

// Members iterates member datasets in admission order.
func (g *Group) Members() iter.Seq[*DataSet] {
	return func(yield func(*DataSet) bool) {
		for _, name := range g.names {
			if !yield(g.members[name]) {
				return
			}
		}
	}
}

// All iterates (name, member) pairs in admission order.
func (g *Group) All() iter.Seq2[string, *DataSet] {
	return func(yield func(string, *DataSet) bool) {
		for _, name := range g.names {
			if !yield(name, g.members[name]) {
				return
			}
		}
	}
}

// Sum returns a new static frozen dataset whose counts are the elementwise
// sum of the named members over the shared key and outcome space. With no
// names, every member participates. An unknown name is
// errs.ErrMemberNotFound.
func (g *Group) Sum(names ...string) (*DataSet, error) {
	if len(names) == 0 {
		names = g.names
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: group has no members to sum", errs.ErrMemberNotFound)
	}

	width := g.outcomes.Len()
	flat := make([]float64, len(g.keys)*width)
	for _, name := range names {
		member, err := g.Member(name)
		if err != nil {
			return nil, err
		}
		for pos := range g.keys {
			for i, v := range member.store.row(pos) {
				flat[pos*width+i] += v
			}
		}
	}

	keyIdx := newKeyIndexSized(len(g.keys))
	for _, key := range g.keys {
		keyIdx.Intern(key)
	}

	return &DataSet{
		keys:     keyIdx,
		outcomes: g.outcomes,
		store:    newStaticStore(flat, width),
		logger:   g.logger,
		policy:   format.CollisionOverwrite,
		frozen:   true,
	}, nil
}

// AddCounts constructs a static member from a raw flat count array over the
// group's shared key list and admits it under name. The group must already
// hold at least one member, since the key list comes from it.
func (g *Group) AddCounts(name string, flat []float64) error {
	if len(g.names) == 0 {
		return fmt.Errorf("%w: group has no key list to shape counts against", errs.ErrCountShape)
	}

	ds, err := NewStatic(g.outcomes.Labels(), g.keys, flat, WithLogger(g.logger))
	if err != nil {
		return err
	}

	return g.Admit(name, ds)
}

// Copy returns a deep copy: the members are copied too, so mutating a copy
// of a member never reaches the original group.
func (g *Group) Copy() *Group {
	clone := &Group{
		outcomes: g.outcomes,
		members:  make(map[string]*DataSet, len(g.members)),
		names:    make([]string, len(g.names)),
		keys:     make([]Key, len(g.keys)),
		logger:   g.logger,
	}
	copy(clone.names, g.names)
	copy(clone.keys, g.keys)
	for name, ds := range g.members {
		clone.members[name] = ds.Copy()
	}

	return clone
}
