package boxes

import (
	"fmt"
	"math"
)

// XPCalc computes the experience still needed to reach a target level.
//
// The result is NaN unless the target level is an integer between 1 and
// MaxLevel. A current XP above the target yields a negative amount.
var XPCalc = &Def{
	ID:        "xp-calc",
	Title:     "XP Calculator",
	LeftName:  "current Xp",
	RightName: "target level",
	MidWord:   "to",
	Calculate: func(currentXP, targetLevel float64) float64 {
		if math.IsNaN(currentXP) || targetLevel != math.Trunc(targetLevel) ||
			targetLevel < 1 || targetLevel > MaxLevel {
			return math.NaN()
		}
		xp, ok := XPForLevel(int(targetLevel))
		if !ok {
			return math.NaN()
		}
		return float64(xp) - currentXP
	},
	Format: func(v float64) string { return "XP Needed: " + FormatGrouped(v) },
	Target: &Ref{"reps", Left},
	// Decrementing the XP still needed means gaining XP.
	Mod: func(pushed, _ float64) float64 { return -pushed },
}

// Reps computes how many repetitions of a fixed gain reach a target value.
// Dividing by a zero gain gives +Inf.
var Reps = &Def{
	ID:        "reps",
	Title:     "Repetitions",
	LeftName:  "target value",
	RightName: "per",
	MidWord:   "to",
	Calculate: func(target, per float64) float64 { return math.Ceil(target / per) },
	Format:    func(v float64) string { return "Times: " + FormatGrouped(v) },
	Target:    &Ref{"time-calc", Left},
	// One repetition is worth "per" units of the target.
	Mod: func(pushed, per float64) float64 { return per * pushed },
}

// TimeCalc multiplies a number of repetitions by the duration of each, in
// seconds. It is the only box that can be played.
var TimeCalc = &Def{
	ID:        "time-calc",
	Title:     "Time Calculator",
	LeftName:  "times",
	RightName: "duration",
	MidWord:   "*",
	Calculate: func(times, duration float64) float64 { return times * duration },
	Format:    formatSeconds,
	CanPlay:   true,
}

// Preservation computes the expected return of a stock of items when each use
// has a given percent chance of being preserved.
//
// Percentages outside [0, 100] and NaN inputs give NaN; exactly 100 percent
// gives +Inf.
var Preservation = &Def{
	ID:        "preservation",
	Title:     "Resource preservation",
	LeftName:  "items",
	RightName: "percentToPreserve",
	MidWord:   "to",
	Calculate: func(items, percent float64) float64 {
		if math.IsNaN(items) || math.IsNaN(percent) || percent < 0 || percent > 100 {
			return math.NaN()
		}
		if percent == 100 {
			return math.Inf(1)
		}
		return 100 * items / (100 - percent)
	},
	Format: func(v float64) string { return "Expected return: " + FormatGrouped(v) },
	Mod:    func(pushed, _ float64) float64 { return -pushed },
}

func formatSeconds(v float64) string {
	n := FormatNumber
	switch {
	case v < 60:
		return n(v) + " seconds"
	case v < 3600:
		return fmt.Sprintf("%s minutes %s seconds",
			n(math.Floor(v/60)), n(math.Floor(math.Mod(v, 60))))
	case v < 86400:
		return fmt.Sprintf("%s hours %s minutes %s seconds",
			n(math.Floor(v/3600)), n(math.Floor(math.Mod(v, 3600)/60)),
			n(math.Floor(math.Mod(v, 60))))
	default:
		// Also reached by NaN and +Inf, since they compare false above.
		return fmt.Sprintf("%sd %sh %sm %ss",
			n(math.Floor(v/86400)), n(math.Floor(math.Mod(v, 86400)/3600)),
			n(math.Floor(math.Mod(v, 3600)/60)), n(math.Floor(math.Mod(v, 60))))
	}
}
