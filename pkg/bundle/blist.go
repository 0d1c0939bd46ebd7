package bundle

import (
	"github.com/loomui/loom/pkg/target"
	"github.com/loomui/loom/pkg/vtree"
)

// listEntry pairs a realized child with the key it was matched under.
type listEntry struct {
	key  string
	node bnode
}

// bList realizes an ordered run of sibling slots. When every incoming
// child carries a key the diff matches by key and applies a minimal
// move set; otherwise children reconcile positionally.
type bList struct {
	entries []*listEntry
}

func newBList() *bList {
	return &bList{}
}

// reconcile diffs the incoming children against the realized entries.
// Children are processed back to front so each child anchors on the
// already-settled reference of its following sibling; the return value
// is the anchor for whatever precedes the list.
func (l *bList) reconcile(root *Root, sc *Scope, parent target.Element, next NodeRef, children []*vtree.Node) NodeRef {
	if allKeyed(children) && len(children) > 0 {
		return l.reconcileKeyed(root, sc, parent, next, children)
	}
	return l.reconcilePositional(root, sc, parent, next, children)
}

func allKeyed(children []*vtree.Node) bool {
	for _, ch := range children {
		if ch == nil || ch.Key == "" {
			return false
		}
	}
	return len(children) > 0
}

func (l *bList) reconcilePositional(root *Root, sc *Scope, parent target.Element, next NodeRef, children []*vtree.Node) NodeRef {
	for j := len(children); j < len(l.entries); j++ {
		l.entries[j].node.detach(parent, false)
	}
	entries := make([]*listEntry, len(children))
	for i := len(children) - 1; i >= 0; i-- {
		var slot bnode
		if i < len(l.entries) {
			slot = l.entries[i].node
		}
		ref := reconcileNode(root, sc, parent, next, children[i], &slot)
		key := ""
		if children[i] != nil {
			key = children[i].Key
		}
		entries[i] = &listEntry{key: key, node: slot}
		next = ref
	}
	l.entries = entries
	return next
}

// reconcileKeyed matches entries by key, detaches unmatched ones, and
// moves only the matched entries that fall outside a longest increasing
// subsequence of the old positions. Entries inside the subsequence keep
// their relative order and never move.
func (l *bList) reconcileKeyed(root *Root, sc *Scope, parent target.Element, next NodeRef, children []*vtree.Node) NodeRef {
	oldIndex := make(map[string]int, len(l.entries))
	for j, e := range l.entries {
		if _, dup := oldIndex[e.key]; !dup {
			oldIndex[e.key] = j
		}
	}

	used := make([]bool, len(l.entries))
	source := make([]int, len(children))
	for i, ch := range children {
		source[i] = -1
		if j, ok := oldIndex[ch.Key]; ok && !used[j] {
			source[i] = j
			used[j] = true
		}
	}

	for j, e := range l.entries {
		if !used[j] {
			e.node.detach(parent, false)
		}
	}

	keep := lisKeep(source)

	entries := make([]*listEntry, len(children))
	for i := len(children) - 1; i >= 0; i-- {
		ch := children[i]
		if j := source[i]; j >= 0 {
			e := l.entries[j]
			prev := e.node
			ref := reconcileNode(root, sc, parent, next, ch, &e.node)
			if !keep[i] && e.node == prev {
				// Reconciled in place but out of order; move before the
				// settled following sibling. A replaced slot already
				// attached at the right spot.
				ref = e.node.shift(parent, next)
			}
			e.key = ch.Key
			entries[i] = e
			next = ref
		} else {
			ref, b := attachNode(root, sc, parent, next, ch)
			entries[i] = &listEntry{key: ch.Key, node: b}
			next = ref
		}
	}
	l.entries = entries
	return next
}

// lisKeep marks, per new index, whether the matched old position sits
// on a longest strictly increasing subsequence of source. Unmatched
// positions are never marked. Ties resolve toward the leftmost chain,
// keeping earlier entries stationary.
func lisKeep(source []int) []bool {
	keep := make([]bool, len(source))
	var tails []int // indices into source; source[tails[k]] is smallest tail of length k+1
	prev := make([]int, len(source))
	for i := range prev {
		prev[i] = -1
	}
	for i, v := range source {
		if v < 0 {
			continue
		}
		lo, hi := 0, len(tails)
		for lo < hi {
			mid := (lo + hi) / 2
			if source[tails[mid]] < v {
				lo = mid + 1
			} else {
				hi = mid
			}
		}
		if lo > 0 {
			prev[i] = tails[lo-1]
		}
		if lo == len(tails) {
			tails = append(tails, i)
		} else {
			tails[lo] = i
		}
	}
	if len(tails) == 0 {
		return keep
	}
	for i := tails[len(tails)-1]; i >= 0; i = prev[i] {
		keep[i] = true
	}
	return keep
}

func (l *bList) detach(parent target.Element, parentToDetach bool) {
	for _, e := range l.entries {
		e.node.detach(parent, parentToDetach)
	}
	l.entries = nil
}

func (l *bList) shift(parent target.Element, next NodeRef) NodeRef {
	for i := len(l.entries) - 1; i >= 0; i-- {
		next = l.entries[i].node.shift(parent, next)
	}
	return next
}
