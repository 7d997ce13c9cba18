package services

import (
	"testing"
	"time"
)

func TestNextStreakFirstSolve(t *testing.T) {
	streak, longest := NextStreak(0, 0, nil, time.Now())
	if streak != 1 || longest != 1 {
		t.Fatalf("first solve = (%d, %d), want (1, 1)", streak, longest)
	}
}

func TestNextStreakSameDayContinues(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	last := now.Add(-2 * time.Hour)

	streak, longest := NextStreak(3, 5, &last, now)
	if streak != 4 {
		t.Errorf("streak = %d, want 4", streak)
	}
	if longest != 5 {
		t.Errorf("longest = %d, want 5", longest)
	}
}

func TestNextStreakNextDayContinues(t *testing.T) {
	now := time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)
	last := time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC)

	streak, longest := NextStreak(5, 5, &last, now)
	if streak != 6 {
		t.Errorf("streak = %d, want 6", streak)
	}
	if longest != 6 {
		t.Errorf("longest = %d, want 6 after new record", longest)
	}
}

func TestNextStreakGapResets(t *testing.T) {
	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	last := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	streak, longest := NextStreak(7, 7, &last, now)
	if streak != 1 {
		t.Errorf("streak = %d, want 1 after gap", streak)
	}
	if longest != 7 {
		t.Errorf("longest = %d, want 7 preserved", longest)
	}
}
