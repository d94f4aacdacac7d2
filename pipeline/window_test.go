package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"testing"
	"time"

	iterkiterrors "github.com/kbukum/iterkit/errors"
)

func TestPairwise(t *testing.T) {
	tests := []struct {
		name string
		in   []int
		want []Pair[int]
	}{
		{"empty", nil, nil},
		{"single", []int{1}, nil},
		{"two", []int{1, 2}, []Pair[int]{{1, 2}}},
		{"several", []int{1, 2, 3, 4}, []Pair[int]{{1, 2}, {2, 3}, {3, 4}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Collect(context.Background(), Pairwise(FromSlice(tc.in)))
			if err != nil {
				t.Fatal(err)
			}
			if !slices.Equal(got, tc.want) {
				t.Errorf("got %v, want %v", got, tc.want)
			}
			if want := max(0, len(tc.in)-1); len(got) != want {
				t.Errorf("len = %d, want %d", len(got), want)
			}
		})
	}
}

func TestChunk(t *testing.T) {
	for n := 0; n <= 7; n++ {
		for size := 1; size <= 4; size++ {
			t.Run(fmt.Sprintf("n=%d/size=%d", n, size), func(t *testing.T) {
				in := make([]int, n)
				for i := range in {
					in[i] = i
				}
				p, err := Chunk(FromSlice(in), size)
				if err != nil {
					t.Fatal(err)
				}
				chunks, err := Collect(context.Background(), p)
				if err != nil {
					t.Fatal(err)
				}
				if n == 0 && len(chunks) != 0 {
					t.Fatalf("expected no chunks, got %v", chunks)
				}
				var flat []int
				for i, c := range chunks {
					last := i == len(chunks)-1
					if !last && len(c) != size {
						t.Errorf("chunk %d has %d elements, want %d", i, len(c), size)
					}
					if last && (len(c) < 1 || len(c) > size) {
						t.Errorf("last chunk has %d elements", len(c))
					}
					flat = append(flat, c...)
				}
				if !intSliceEqual(flat, in) {
					t.Errorf("flattened %v, want %v", flat, in)
				}
			})
		}
	}
}

func TestChunk_InvalidSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		src := &countingIter[int]{items: []int{1, 2, 3}}
		p, err := Chunk(From[int](src), size)
		if err == nil {
			t.Fatalf("size %d: expected error", size)
		}
		if p != nil {
			t.Errorf("size %d: expected nil pipeline", size)
		}
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("size %d: expected INVALID_INPUT, got %v", size, err)
		}
		if iterkiterrors.CodeOf(err) != iterkiterrors.ErrCodeInvalidInput {
			t.Errorf("size %d: code = %q", size, iterkiterrors.CodeOf(err))
		}
		if src.pulls != 0 {
			t.Errorf("size %d: source pulled %d times", size, src.pulls)
		}
	}
}

func TestChunk_HugeSize(t *testing.T) {
	p, err := Chunk(Of(1, 2, 3), math.MaxInt)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Collect(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || !intSliceEqual(got[0], []int{1, 2, 3}) {
		t.Errorf("got %v, want [[1 2 3]]", got)
	}
}

func TestMustChunk_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	MustChunk(Of(1), 0)
}

func TestChunk_EmitsWhenFull(t *testing.T) {
	// An unbounded source still produces chunks.
	got, err := Collect(context.Background(), Take(MustChunk(RangeFrom(0, 1), 2), 2))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || !intSliceEqual(got[0], []int{0, 1}) || !intSliceEqual(got[1], []int{2, 3}) {
		t.Errorf("got %v", got)
	}
}

func TestChunk_UpstreamErrorKeepsBuffer(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	src := Map(Of(1, 2, 3), func(_ context.Context, n int) (int, error) {
		calls++
		if calls == 2 {
			return 0, boom
		}
		return n, nil
	})
	ctx := context.Background()
	it := MustChunk(src, 2).Iter(ctx)
	defer it.Close()

	if _, _, err := it.Next(ctx); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	c, ok, err := it.Next(ctx)
	if err != nil || !ok || !intSliceEqual(c, []int{1, 3}) {
		t.Fatalf("got %v %v %v, want [1 3]", c, ok, err)
	}
	assertExhausted(t, ctx, it)
}

type event struct {
	id int
	at time.Duration
}

func TestSlidingWindow(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	at := func(e event) time.Time { return base.Add(e.at) }
	ev := func(secs ...int) []event {
		out := make([]event, len(secs))
		for i, s := range secs {
			out[i] = event{id: s, at: time.Duration(s) * time.Second}
		}
		return out
	}
	tests := []struct {
		name        string
		in          []event
		size, slide time.Duration
		want        [][]int
	}{
		{"empty", nil, 10 * time.Second, 5 * time.Second, nil},
		{"overlapping", ev(0, 3, 7, 12, 20), 10 * time.Second, 5 * time.Second,
			[][]int{{0, 3, 7}, {7, 12}, {12}, {20}, {20}}},
		{"tumbling skips gaps", ev(0, 3, 12, 35), 10 * time.Second, 10 * time.Second,
			[][]int{{0, 3}, {12}, {35}}},
		{"hopping drops between windows", ev(0, 3, 7, 12, 16), 5 * time.Second, 10 * time.Second,
			[][]int{{0, 3}, {12}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := SlidingWindow(FromSlice(tc.in), at, tc.size, tc.slide)
			if err != nil {
				t.Fatal(err)
			}
			windows, err := Collect(context.Background(), p)
			if err != nil {
				t.Fatal(err)
			}
			var got [][]int
			for _, w := range windows {
				ids := make([]int, len(w))
				for i, e := range w {
					ids[i] = e.id
				}
				got = append(got, ids)
			}
			if !slices.EqualFunc(got, tc.want, intSliceEqual) {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSlidingWindow_InvalidDurations(t *testing.T) {
	at := func(e event) time.Time { return time.Time{}.Add(e.at) }
	tests := []struct {
		name        string
		size, slide time.Duration
	}{
		{"zero size", 0, time.Second},
		{"negative slide", time.Second, -time.Second},
		{"zero slide", time.Second, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := SlidingWindow(Of[event](), at, tc.size, tc.slide)
			if !errors.Is(err, iterkiterrors.ErrInvalidInput) {
				t.Errorf("expected INVALID_INPUT, got %v", err)
			}
		})
	}
}

func TestSlidingWindow_UpstreamError(t *testing.T) {
	boom := errors.New("boom")
	at := func(e event) time.Time { return time.Time{}.Add(e.at) }
	p, err := SlidingWindow(Concat(Of(event{id: 1}), Fail[event](boom)), at, time.Second, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Collect(context.Background(), p); !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
}

func TestFlattenDeep(t *testing.T) {
	// [[2,3],2,[["a",1]]]
	tree := Of(
		BranchOf(Leaf[any](2), Leaf[any](3)),
		Leaf[any](2),
		BranchOf(BranchOf(Leaf[any]("a"), Leaf[any](1))),
	)
	got, err := Collect(context.Background(), FlattenDeep(tree))
	if err != nil {
		t.Fatal(err)
	}
	want := []any{2, 3, 2, "a", 1}
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestFlattenDeep_Empty(t *testing.T) {
	got, err := Collect(context.Background(), FlattenDeep(Of[Node[int]]()))
	if err != nil || len(got) != 0 {
		t.Errorf("got %v, %v", got, err)
	}
	got, err = Collect(context.Background(), FlattenDeep(Of(BranchOf[int](), Branch[int](nil), BranchOf(BranchOf[int]()))))
	if err != nil || len(got) != 0 {
		t.Errorf("empty branches: got %v, %v", got, err)
	}
}

func TestFlattenDeep_Reconsumable(t *testing.T) {
	p := FlattenDeep(Of(Leaf(1), BranchOf(Leaf(2), BranchOf(Leaf(3)))))
	ctx := context.Background()
	first, _ := Collect(ctx, p)
	second, _ := Collect(ctx, p)
	if !intSliceEqual(first, []int{1, 2, 3}) || !intSliceEqual(second, first) {
		t.Errorf("first=%v second=%v", first, second)
	}
}

func TestFlattenDeep_LazyBranches(t *testing.T) {
	opened := 0
	lazy := Branch(FromFunc(func(context.Context) Iterator[Node[int]] {
		opened++
		return &sliceIter[Node[int]]{items: []Node[int]{Leaf(9)}}
	}))
	ctx := context.Background()
	it := FlattenDeep(Of(Leaf(1), lazy)).Iter(ctx)
	defer it.Close()

	if v, _, _ := it.Next(ctx); v != 1 {
		t.Fatalf("got %d, want 1", v)
	}
	if opened != 0 {
		t.Fatal("branch opened before traversal reached it")
	}
	if v, _, _ := it.Next(ctx); v != 9 {
		t.Fatalf("got %d, want 9", v)
	}
	if opened != 1 {
		t.Errorf("opened = %d, want 1", opened)
	}
}

func TestFlattenDeep_ClosesBranches(t *testing.T) {
	inner := &countingIter[Node[int]]{items: []Node[int]{Leaf(1)}}
	root := &countingIter[Node[int]]{items: []Node[int]{BranchIter[int](inner)}}
	got, err := Collect(context.Background(), FlattenDeep(From[Node[int]](root)))
	if err != nil {
		t.Fatal(err)
	}
	if !intSliceEqual(got, []int{1}) {
		t.Errorf("got %v", got)
	}
	if !inner.closed || !root.closed {
		t.Errorf("inner closed=%v root closed=%v", inner.closed, root.closed)
	}
}

func TestFlatten(t *testing.T) {
	p := Flatten(Of(Of(1, 2), Of[int](), Of(3)))
	got, err := Collect(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	if !intSliceEqual(got, []int{1, 2, 3}) {
		t.Errorf("got %v", got)
	}
}

func TestNode(t *testing.T) {
	l := Leaf("x")
	if !l.IsLeaf() || l.Children() != nil {
		t.Error("leaf reported as branch")
	}
	if v, ok := l.Value(); !ok || v != "x" {
		t.Errorf("Value() = %q, %v", v, ok)
	}
	b := BranchOf(l)
	if b.IsLeaf() || b.Children() == nil {
		t.Error("branch reported as leaf")
	}
	if _, ok := b.Value(); ok {
		t.Error("branch has a value")
	}
}
