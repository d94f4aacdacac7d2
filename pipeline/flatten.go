package pipeline

import "context"

// Node is an element of a nested stream: either a leaf value or a branch
// holding another stream of nodes. Branches nest to any depth.
type Node[T any] struct {
	value    T
	children *Pipeline[Node[T]]
}

// Leaf wraps a plain value.
func Leaf[T any](v T) Node[T] {
	return Node[T]{value: v}
}

// Branch wraps a nested stream. A nil pipeline is treated as empty.
func Branch[T any](children *Pipeline[Node[T]]) Node[T] {
	if children == nil {
		children = Of[Node[T]]()
	}
	return Node[T]{children: children}
}

// BranchOf wraps the given nodes as a nested stream.
func BranchOf[T any](nodes ...Node[T]) Node[T] {
	return Branch(FromSlice(nodes))
}

// BranchIter wraps an existing iterator as a nested stream. Like From, the
// iterator can only be traversed once.
func BranchIter[T any](it Iterator[Node[T]]) Node[T] {
	return Branch(From(it))
}

// IsLeaf reports whether n holds a plain value.
func (n Node[T]) IsLeaf() bool { return n.children == nil }

// Value returns the leaf value and true, or the zero value and false for a branch.
func (n Node[T]) Value() (T, bool) {
	if n.children != nil {
		var zero T
		return zero, false
	}
	return n.value, true
}

// Children returns the nested stream of a branch, or nil for a leaf.
func (n Node[T]) Children() *Pipeline[Node[T]] { return n.children }

// FlattenDeep yields every leaf in depth-first, left-to-right order.
// Nested streams are opened only when traversal reaches them.
func FlattenDeep[T any](p *Pipeline[Node[T]]) *Pipeline[T] {
	return derive(p, func(root Iterator[Node[T]]) Iterator[T] {
		return &flattenIter[T]{root: root, stack: []Iterator[Node[T]]{root}}
	})
}

// Flatten yields the leaves of a stream of plain-value streams, one level deep.
func Flatten[T any](p *Pipeline[*Pipeline[T]]) *Pipeline[T] {
	return FlatMap(p, func(ctx context.Context, inner *Pipeline[T]) (Iterator[T], error) {
		return inner.create(ctx), nil
	})
}

type flattenIter[T any] struct {
	root Iterator[Node[T]]
	// stack[0] is the root; the last entry is the innermost open branch.
	stack []Iterator[Node[T]]
	done  bool
}

func (it *flattenIter[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	if it.done {
		return zero, false, nil
	}
	for len(it.stack) > 0 {
		top := it.stack[len(it.stack)-1]
		n, ok, err := top.Next(ctx)
		if err != nil {
			return zero, false, err
		}
		if !ok {
			if len(it.stack) > 1 {
				_ = top.Close()
			}
			it.stack = it.stack[:len(it.stack)-1]
			continue
		}
		if n.IsLeaf() {
			return n.value, true, nil
		}
		it.stack = append(it.stack, n.children.create(ctx))
	}
	it.done = true
	return zero, false, nil
}

func (it *flattenIter[T]) Close() error {
	for i := len(it.stack) - 1; i >= 1; i-- {
		_ = it.stack[i].Close()
	}
	it.stack = nil
	return it.root.Close()
}
