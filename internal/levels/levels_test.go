package levels

import (
	"errors"
	"testing"
)

func TestValidate(t *testing.T) {
	for _, n := range []int{-1, 0, 6, 100} {
		if err := Validate(n); !errors.Is(err, ErrInvalidLevel) {
			t.Errorf("Validate(%d) = %v, want ErrInvalidLevel", n, err)
		}
	}
	for n := Min; n <= Max; n++ {
		if err := Validate(n); err != nil {
			t.Errorf("Validate(%d) = %v, want nil", n, err)
		}
	}
}

func TestCatalog(t *testing.T) {
	all := All()
	if len(all) != 5 {
		t.Fatalf("got %d levels, want 5", len(all))
	}
	if all[0].Format != "flashcard" || all[4].Format != "sandbox" {
		t.Errorf("unexpected formats: %q, %q", all[0].Format, all[4].Format)
	}
	if got := Label(3); got != "Architect (Where & Why, Trade-offs)" {
		t.Errorf("Label(3) = %q", got)
	}
	if got := Label(9); got != "" {
		t.Errorf("Label(9) = %q, want empty", got)
	}

	all[0].Name = "mutated"
	if l, _ := Get(1); l.Name != "Novice" {
		t.Error("All must return a copy")
	}
}

func TestBelowAbove(t *testing.T) {
	tests := []struct{ n, below, above int }{
		{1, 1, 2},
		{2, 1, 3},
		{3, 2, 4},
		{5, 4, 5},
	}
	for _, tt := range tests {
		if got := Below(tt.n); got != tt.below {
			t.Errorf("Below(%d) = %d, want %d", tt.n, got, tt.below)
		}
		if got := Above(tt.n); got != tt.above {
			t.Errorf("Above(%d) = %d, want %d", tt.n, got, tt.above)
		}
	}
}
