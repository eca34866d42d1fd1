package planner

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-docsync/blocks"
)

var (
	ErrCeilingTooSmall = errors.New("planner: ceiling must be at least 1")
	ErrOrphanedBlock   = errors.New("planner: descendant has no parent inside its unit")
)

// Unit is one plannable creation request: an anchor to attach under, the
// ordered direct children, and the full transitive descendant set that must
// travel in the same request. Descendants are kept in depth-first order; the
// split pass depends on that property to assign blocks to the right sub-unit.
type Unit struct {
	Anchor      string
	Children    []string
	Descendants []string
}

// Size is the node count the remote API bills this unit at.
func (u Unit) Size() int {
	return len(u.Children) + len(u.Descendants)
}

// Plan partitions the forest into upload units anchored at anchorID such that
// every unit stays strictly below ceiling and concatenating the units
// reproduces the forest exactly once.
//
// Three passes: unitize one unit per structural root, split units that meet
// or exceed the ceiling, then merge adjacent undersized units that share an
// anchor.
func Plan(forest *blocks.Forest, anchorID string, ceiling int) ([]Unit, error) {
	if ceiling < 1 {
		return nil, ErrCeilingTooSmall
	}
	if forest == nil || forest.Len() == 0 {
		return nil, nil
	}

	units := unitize(forest, anchorID)

	var split []Unit
	for _, unit := range units {
		parts, err := splitOversized(forest, unit, ceiling)
		if err != nil {
			return nil, err
		}
		split = append(split, parts...)
	}

	return mergeUndersized(split, ceiling), nil
}

// unitize walks blocks in walker order. A block nobody references as a child
// starts a new unit anchored at the document root; every referenced block
// rides along as a descendant of the most recently started unit.
func unitize(forest *blocks.Forest, anchorID string) []Unit {
	referenced := map[string]struct{}{}
	for _, block := range forest.Blocks() {
		for _, childID := range block.Children {
			referenced[childID] = struct{}{}
		}
	}

	var units []Unit
	for _, id := range forest.IDs() {
		if _, ok := referenced[id]; !ok {
			units = append(units, Unit{Anchor: anchorID, Children: []string{id}})
			continue
		}
		if len(units) == 0 {
			// A referenced block always follows its parent in walker order,
			// so a unit exists by the time we reach it.
			continue
		}
		last := &units[len(units)-1]
		last.Descendants = append(last.Descendants, id)
	}
	return units
}

// splitOversized recursively breaks a unit whose size meets or exceeds the
// ceiling. The unit's single top-level block becomes a singleton unit at the
// original anchor; each of its direct children anchors a sub-unit that
// absorbs only its own subtree, identified by parent membership rather than
// position.
func splitOversized(forest *blocks.Forest, unit Unit, ceiling int) ([]Unit, error) {
	if unit.Size() < ceiling {
		return []Unit{unit}, nil
	}
	if len(unit.Children) != 1 {
		return nil, fmt.Errorf("planner: split requires a single top-level block, got %d", len(unit.Children))
	}

	rootID := unit.Children[0]
	root, ok := forest.Get(rootID)
	if !ok {
		return nil, fmt.Errorf("planner: unknown block %s", rootID)
	}
	if len(root.Children) == 0 {
		// Nothing left to peel off; a lone block is as small as units get.
		return []Unit{unit}, nil
	}

	parentOf := map[string]string{}
	for _, id := range append([]string{rootID}, unit.Descendants...) {
		block, ok := forest.Get(id)
		if !ok {
			continue
		}
		for _, childID := range block.Children {
			parentOf[childID] = id
		}
	}

	subs := make([]Unit, 0, len(root.Children))
	subIndex := map[string]int{}
	for i, childID := range root.Children {
		subs = append(subs, Unit{Anchor: rootID, Children: []string{childID}})
		subIndex[childID] = i
	}

	for _, id := range unit.Descendants {
		if _, isDirect := subIndex[id]; isDirect {
			continue
		}
		parent, ok := parentOf[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrOrphanedBlock, id)
		}
		idx, ok := subIndex[parent]
		if !ok {
			return nil, fmt.Errorf("%w: %s (parent %s unassigned)", ErrOrphanedBlock, id, parent)
		}
		subs[idx].Descendants = append(subs[idx].Descendants, id)
		subIndex[id] = idx
	}

	out := []Unit{{Anchor: unit.Anchor, Children: []string{rootID}}}
	for _, sub := range subs {
		parts, err := splitOversized(forest, sub, ceiling)
		if err != nil {
			return nil, err
		}
		out = append(out, parts...)
	}
	return out, nil
}

// mergeUndersized folds consecutive units into a running batch while the
// combined size stays strictly under the ceiling and the anchors match.
func mergeUndersized(units []Unit, ceiling int) []Unit {
	if len(units) == 0 {
		return nil
	}

	out := make([]Unit, 0, len(units))
	current := units[0]
	for _, next := range units[1:] {
		if next.Anchor == current.Anchor && current.Size()+next.Size() < ceiling {
			current.Children = append(current.Children, next.Children...)
			current.Descendants = append(current.Descendants, next.Descendants...)
			continue
		}
		out = append(out, current)
		current = next
	}
	return append(out, current)
}
