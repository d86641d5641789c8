package traverse

import (
	"errors"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMapPassesIndexAndSequence(t *testing.T) {
	t.Parallel()
	in := []int{10, 20, 30}
	got := Map(in, func(v, i int, s []int) string {
		return strconv.Itoa(v) + "@" + strconv.Itoa(i) + "/" + strconv.Itoa(len(s))
	})
	want := []string{"10@0/3", "20@1/3", "30@2/3"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Map mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{10, 20, 30}, in); diff != "" {
		t.Fatalf("input mutated (-want +got):\n%s", diff)
	}
}

func TestMapEmpty(t *testing.T) {
	t.Parallel()
	got := Map([]int(nil), func(v, _ int, _ []int) int { return v })
	if got == nil || len(got) != 0 {
		t.Fatalf("Map(nil) = %#v, want empty non-nil slice", got)
	}
}

func TestFilterKeepsOrder(t *testing.T) {
	t.Parallel()
	in := []int{5, 1, 8, 3, 9, 2}
	got := Filter(in, func(v, _ int, _ []int) bool { return v > 2 })
	if diff := cmp.Diff([]int{5, 8, 3, 9}, got); diff != "" {
		t.Fatalf("Filter mismatch (-want +got):\n%s", diff)
	}

	none := Filter(in, func(int, int, []int) bool { return false })
	if len(none) != 0 {
		t.Fatalf("Filter(false) len = %d, want 0", len(none))
	}

	// The result must not alias the input.
	all := Filter(in, func(int, int, []int) bool { return true })
	all[0] = -1
	if in[0] != 5 {
		t.Fatal("Filter result aliases the input")
	}
}

func TestFindShortCircuits(t *testing.T) {
	t.Parallel()
	calls := 0
	got, ok := Find([]string{"a", "bb", "cc", "ddd"}, func(v string, _ int, _ []string) bool {
		calls++
		return len(v) == 2
	})
	if !ok || got != "bb" {
		t.Fatalf("Find = (%q, %v), want (\"bb\", true)", got, ok)
	}
	if calls != 2 {
		t.Fatalf("predicate called %d times, want 2", calls)
	}

	if _, ok := Find([]string{}, func(string, int, []string) bool { return true }); ok {
		t.Fatal("Find on empty input reported a match")
	}
	if v, ok := Find([]int{1, 3}, func(v, _ int, _ []int) bool { return v%2 == 0 }); ok || v != 0 {
		t.Fatalf("Find miss = (%d, %v), want (0, false)", v, ok)
	}
	if idx := FindIndex([]int{1, 3}, func(v, _ int, _ []int) bool { return v == 3 }); idx != 1 {
		t.Fatalf("FindIndex = %d, want 1", idx)
	}
}

func TestReduceEmptyWithoutInitial(t *testing.T) {
	t.Parallel()
	_, err := Reduce([]int{}, func(acc, v, _ int, _ []int) int { return acc + v })
	if !errors.Is(err, ErrEmptyReduce) {
		t.Fatalf("Reduce([]) err = %v, want ErrEmptyReduce", err)
	}
	_, err = ReduceRight([]int(nil), func(acc, v, _ int, _ []int) int { return acc + v })
	if !errors.Is(err, ErrEmptyReduce) {
		t.Fatalf("ReduceRight(nil) err = %v, want ErrEmptyReduce", err)
	}
}

func TestFoldEmptyReturnsInit(t *testing.T) {
	t.Parallel()
	got := Fold([]int{}, func(acc string, _ int, _ int, _ []int) string { return acc + "x" }, "init")
	if got != "init" {
		t.Fatalf("Fold([]) = %q, want %q", got, "init")
	}
}

type step struct {
	Acc string
	V   string
	I   int
	N   int
}

func TestReduceStepOrder(t *testing.T) {
	t.Parallel()
	var steps []step
	in := []string{"a", "b", "c"}
	got, err := Reduce(in, func(acc, v string, i int, s []string) string {
		steps = append(steps, step{Acc: acc, V: v, I: i, N: len(s)})
		return "f(" + acc + "," + v + ")"
	})
	if err != nil {
		t.Fatalf("Reduce error: %v", err)
	}
	if got != "f(f(a,b),c)" {
		t.Fatalf("Reduce = %q", got)
	}
	want := []step{{"a", "b", 1, 3}, {"f(a,b)", "c", 2, 3}}
	if diff := cmp.Diff(want, steps); diff != "" {
		t.Fatalf("steps mismatch (-want +got):\n%s", diff)
	}

	right, err := ReduceRight(in, func(acc, v string, _ int, _ []string) string { return acc + v })
	if err != nil || right != "cba" {
		t.Fatalf("ReduceRight = (%q, %v), want (\"cba\", nil)", right, err)
	}
}

func TestFoldSingleElement(t *testing.T) {
	t.Parallel()
	var gotI int
	got := Fold([]int{7}, func(acc, v, i int, _ []int) int {
		gotI = i
		return acc*10 + v
	}, 4)
	if got != 47 || gotI != 0 {
		t.Fatalf("Fold([7], 4) = %d at index %d, want 47 at 0", got, gotI)
	}
}

func TestSomeEvery(t *testing.T) {
	t.Parallel()
	even := func(v, _ int, _ []int) bool { return v%2 == 0 }
	if Some([]int{}, even) {
		t.Fatal("Some on empty should be false")
	}
	if !Every([]int{}, even) {
		t.Fatal("Every on empty should be true")
	}
	if !Some([]int{1, 2}, even) || Every([]int{1, 2}, even) {
		t.Fatal("Some/Every wrong on mixed input")
	}

	var seen []int
	ForEach([]int{3, 4}, func(v, i int, _ []int) { seen = append(seen, v*10+i) })
	if diff := cmp.Diff([]int{30, 41}, seen); diff != "" {
		t.Fatalf("ForEach mismatch (-want +got):\n%s", diff)
	}
}

func TestErrVariantsPropagate(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	in := []int{1, 2, 3, 4}

	calls := 0
	m, err := MapErr(in, func(v, _ int, _ []int) (int, error) {
		calls++
		if v == 2 {
			return 0, boom
		}
		return v, nil
	})
	if err != boom || m != nil {
		t.Fatalf("MapErr = (%v, %v), want (nil, boom)", m, err)
	}
	if calls != 2 {
		t.Fatalf("MapErr kept iterating: %d calls", calls)
	}

	if f, err := FilterErr(in, func(v, _ int, _ []int) (bool, error) {
		if v == 3 {
			return false, boom
		}
		return true, nil
	}); err != boom || f != nil {
		t.Fatalf("FilterErr = (%v, %v), want (nil, boom)", f, err)
	}

	if _, ok, err := FindErr(in, func(v, _ int, _ []int) (bool, error) { return false, boom }); err != boom || ok {
		t.Fatalf("FindErr = (%v, %v), want (false, boom)", ok, err)
	}

	if _, err := ReduceErr(in, func(acc, v, _ int, _ []int) (int, error) { return 0, boom }); err != boom {
		t.Fatalf("ReduceErr err = %v, want boom", err)
	}
	if _, err := ReduceErr([]int{}, func(acc, v, _ int, _ []int) (int, error) { return 0, nil }); !errors.Is(err, ErrEmptyReduce) {
		t.Fatalf("ReduceErr([]) err = %v, want ErrEmptyReduce", err)
	}
	if _, err := FoldErr(in, func(acc, v, _ int, _ []int) (int, error) { return 0, boom }, 0); err != boom {
		t.Fatalf("FoldErr err = %v, want boom", err)
	}

	sum, err := FoldErr(in, func(acc, v, _ int, _ []int) (int, error) { return acc + v, nil }, 0)
	if err != nil || sum != 10 {
		t.Fatalf("FoldErr sum = (%d, %v), want (10, nil)", sum, err)
	}
}

func TestCallbackPanicPropagates(t *testing.T) {
	t.Parallel()
	defer func() {
		if r := recover(); r != "bad" {
			t.Fatalf("recovered %v, want \"bad\"", r)
		}
	}()
	Map([]int{1}, func(int, int, []int) int { panic("bad") })
	t.Fatal("Map swallowed a panic")
}
