package mapping

import "strings"

// segmentNode is one path segment of a registered prefix. pattern is set
// when a "/*" pattern ends at this node.
type segmentNode struct {
	children map[string]*segmentNode
	pattern  *Pattern
}

// prefixTree indexes path patterns by the segments of their prefix. The
// root node stands for the empty prefix, registered by "/*".
type prefixTree struct {
	root *segmentNode
}

func newPrefixTree() *prefixTree {
	return &prefixTree{root: &segmentNode{}}
}

// findOrCreateChild finds or creates the child node for a segment.
func (n *segmentNode) findOrCreateChild(segment string) *segmentNode {
	if n.children == nil {
		n.children = make(map[string]*segmentNode)
	}
	if child, ok := n.children[segment]; ok {
		return child
	}
	child := &segmentNode{}
	n.children[segment] = child
	return child
}

func (t *prefixTree) insert(p *Pattern) {
	node := t.root
	if p.key != "" {
		for _, seg := range strings.Split(p.key[1:], "/") {
			node = node.findOrCreateChild(seg)
		}
	}
	node.pattern = p
}

// longest returns the pattern with the longest prefix of p that ends at a
// segment boundary, together with the length of that prefix.
func (t *prefixTree) longest(p string) (*Pattern, int) {
	node := t.root
	best, bestLen := node.pattern, 0

	if p == "" {
		return best, 0
	}
	if p[0] != '/' {
		return nil, 0
	}

	for i := 1; ; {
		end := len(p)
		if j := strings.IndexByte(p[i:], '/'); j >= 0 {
			end = i + j
		}

		child, ok := node.children[p[i:end]]
		if !ok {
			break
		}
		node = child
		if node.pattern != nil {
			best, bestLen = node.pattern, end
		}

		if end == len(p) {
			break
		}
		i = end + 1
	}

	return best, bestLen
}
