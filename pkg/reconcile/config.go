// Package reconcile implements partner identity reconciliation: it
// matches free-text brand names from a reference source against the
// partner registry and synchronizes the resulting identifier mappings.
package reconcile

// Thresholds contains the tuning constants for the fuzzy matcher
// tiers. The containment and edit-distance values are business tuning
// carried over from the original reference-sheet tooling; change them
// only with a back-to-back comparison run.
type Thresholds struct {
	ContainmentMinLength int     // Shortest canonical form eligible for containment (default: 5)
	ContainmentFloor     float64 // Minimum containment score to keep a candidate (default: 0.45)
	DistinctnessGap      float64 // Lead the top candidate needs over the runner-up (default: 0.18)
	MinWinningScore      float64 // Minimum score for a contested containment win (default: 0.55)
	EditDistanceClose    int     // Max edit distance for short canonical forms (default: 1)
	EditDistanceFar      int     // Max edit distance once EditDistanceLongAt is reached (default: 2)
	EditDistanceLongAt   int     // Length at which the far threshold applies (default: 10)
	EditDistanceMinLen   int     // Shortest combined length eligible for the typo tier (default: 5)
}

// DefaultThresholds returns the production tuning
func DefaultThresholds() Thresholds {
	return Thresholds{
		ContainmentMinLength: 5,
		ContainmentFloor:     0.45,
		DistinctnessGap:      0.18,
		MinWinningScore:      0.55,
		EditDistanceClose:    1,
		EditDistanceFar:      2,
		EditDistanceLongAt:   10,
		EditDistanceMinLen:   5,
	}
}
