package blocks

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateBlockID = errors.New("blocks: duplicate block id")
	ErrUnknownBlockID   = errors.New("blocks: unknown block id")
)

// Forest is the arena holding every block produced from one document, in the
// depth-first order the walker emitted them. Parent/child relationships live
// on each block's Children id list; the arena itself never nests.
type Forest struct {
	order []string
	index map[string]*ContentBlock
}

// NewForest returns an empty forest.
func NewForest() *Forest {
	return &Forest{index: map[string]*ContentBlock{}}
}

// Add appends a block to the arena. Ids must be unique within a forest.
func (f *Forest) Add(block *ContentBlock) error {
	if block == nil || block.ID == "" {
		return fmt.Errorf("blocks: block requires an id")
	}
	if _, exists := f.index[block.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateBlockID, block.ID)
	}
	f.index[block.ID] = block
	f.order = append(f.order, block.ID)
	return nil
}

// Get looks up a block by id.
func (f *Forest) Get(id string) (*ContentBlock, bool) {
	block, ok := f.index[id]
	return block, ok
}

// Len returns the number of blocks in the forest.
func (f *Forest) Len() int {
	return len(f.order)
}

// IDs returns block ids in insertion (depth-first document) order.
func (f *Forest) IDs() []string {
	return append([]string(nil), f.order...)
}

// Blocks returns blocks in insertion order.
func (f *Forest) Blocks() []*ContentBlock {
	out := make([]*ContentBlock, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.index[id])
	}
	return out
}

// RootIDs returns, in document order, the ids of blocks that no other block
// references as a child.
func (f *Forest) RootIDs() []string {
	referenced := f.referencedSet()
	roots := make([]string, 0, len(f.order))
	for _, id := range f.order {
		if _, ok := referenced[id]; !ok {
			roots = append(roots, id)
		}
	}
	return roots
}

// Descendants returns the transitive children of the given block in
// depth-first order, excluding the block itself.
func (f *Forest) Descendants(id string) []string {
	block, ok := f.index[id]
	if !ok {
		return nil
	}
	var out []string
	for _, childID := range block.Children {
		if _, ok := f.index[childID]; !ok {
			continue
		}
		out = append(out, childID)
		out = append(out, f.Descendants(childID)...)
	}
	return out
}

// Validate checks the structural invariants the planner relies on: every
// child id resolves, and every block is reachable exactly once from some
// root.
func (f *Forest) Validate() error {
	seen := map[string]int{}
	for _, id := range f.order {
		block := f.index[id]
		for _, childID := range block.Children {
			if _, ok := f.index[childID]; !ok {
				return fmt.Errorf("%w: %s referenced by %s", ErrUnknownBlockID, childID, id)
			}
			seen[childID]++
		}
	}
	for id, count := range seen {
		if count > 1 {
			return fmt.Errorf("blocks: block %s has %d parents", id, count)
		}
	}
	return nil
}

func (f *Forest) referencedSet() map[string]struct{} {
	referenced := map[string]struct{}{}
	for _, id := range f.order {
		for _, childID := range f.index[id].Children {
			referenced[childID] = struct{}{}
		}
	}
	return referenced
}
