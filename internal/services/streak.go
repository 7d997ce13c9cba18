package services

import "time"

// NextStreak computes the streak counters after a first-time solve at now,
// based on the last solve before this one. Two solves on the same calendar
// day both extend the streak: daysDiff of 0 or 1 continues, anything larger
// resets to 1. The longest-streak counter never decreases.
func NextStreak(currentStreak, streakDays int, lastSolvedAt *time.Time, now time.Time) (int, int) {
	if lastSolvedAt == nil {
		if streakDays < 1 {
			streakDays = 1
		}
		return 1, streakDays
	}

	daysDiff := int(now.Sub(*lastSolvedAt).Hours() / 24)
	if daysDiff <= 1 {
		currentStreak++
		if currentStreak > streakDays {
			streakDays = currentStreak
		}
		return currentStreak, streakDays
	}

	return 1, streakDays
}
