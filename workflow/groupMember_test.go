package workflow

import "testing"

func TestWeeksOwedBefore_MidCycleJoin(t *testing.T) {
	weeks := weeksOwedBefore(5, 4)

	want := []int{1, 2, 3}
	if len(weeks) != len(want) {
		t.Fatalf("got %v, want %v", weeks, want)
	}
	for i := range want {
		if weeks[i] != want[i] {
			t.Errorf("index %d: got %d, want %d", i, weeks[i], want[i])
		}
	}
}

func TestWeeksOwedBefore_FirstWeekJoinOwesNothing(t *testing.T) {
	if weeks := weeksOwedBefore(5, 1); len(weeks) != 0 {
		t.Errorf("joining week 1 owes %v, want none", weeks)
	}
}

func TestWeeksOwedBefore_NoActiveCycleOwesNothing(t *testing.T) {
	// A late joiner without an active cycle must not generate payment rows:
	// they would reference a cycle that does not exist and leak into the
	// whole-membership savings weights.
	if weeks := weeksOwedBefore(0, 3); len(weeks) != 0 {
		t.Errorf("no active cycle owes %v, want none", weeks)
	}
}
