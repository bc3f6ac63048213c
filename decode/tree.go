package decode

import "sort"

// node is one node of a built decoder tree: either a leaf holding an
// ordered list of candidates to try in turn, or an internal node that
// indexes its children by word&mask.
type node struct {
	mask     uint32
	children map[uint32]*node
	leaf     []*Registration
}

func hammingWeight(v uint32) int {
	n := 0
	for v != 0 {
		n++
		v &= v - 1
	}
	return n
}

// buildTree builds a decode tree for one is_32bit partition: sort by
// descending mask popcount, then recursively split on
// the bits every remaining candidate's mask shares in common.
func buildTree(regs []*Registration) *node {
	sorted := make([]*Registration, len(regs))
	copy(sorted, regs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return hammingWeight(sorted[i].mask) > hammingWeight(sorted[j].mask)
	})
	return buildNode(sorted)
}

func buildNode(regs []*Registration) *node {
	if len(regs) <= 1 {
		return &node{leaf: regs}
	}

	commonMask := ^uint32(0)
	for _, r := range regs {
		commonMask &= r.mask
	}
	if commonMask == 0 {
		return &node{leaf: regs}
	}

	var order []uint32
	groups := make(map[uint32][]*Registration)
	for _, r := range regs {
		key := r.match & commonMask
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], r)
	}
	if len(groups) == 1 {
		return &node{leaf: regs}
	}

	children := make(map[uint32]*node, len(groups))
	for _, key := range order {
		children[key] = buildNode(groups[key])
	}
	return &node{mask: commonMask, children: children}
}

// decode traverses the tree against word, building the winning candidate's
// Instruction. width and the "32-bit" framing are only used to shape the
// UndefinedInstruction error.
func (n *node) decode(word, address uint32, width uint) (*Instruction, error) {
	if n.leaf != nil {
		for _, r := range n.leaf {
			if word&r.mask != r.match {
				continue
			}
			instr, err := r.build(word, address)
			if err == nil {
				return instr, nil
			}
			if isDecodeError(err) {
				continue
			}
			return nil, err
		}
		return nil, &UndefinedInstruction{Word: word, Width: width, Cause: "leaf exhausted"}
	}

	child, ok := n.children[word&n.mask]
	if !ok {
		return nil, &UndefinedInstruction{Word: word, Width: width, Cause: "no child for discriminant"}
	}
	return child.decode(word, address, width)
}

func isDecodeError(err error) bool {
	_, ok := err.(*DecodeError)
	return ok
}
