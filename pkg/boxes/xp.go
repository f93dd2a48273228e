package boxes

import "math"

// MaxLevel is the highest level in the experience table.
const MaxLevel = 99

// xpTable[l] is the total experience needed to reach level l.
var xpTable [MaxLevel + 1]int

func init() {
	points := 0
	for l := 1; l < MaxLevel; l++ {
		points += int(math.Floor(float64(l) + 300*math.Pow(2, float64(l)/7)))
		xpTable[l+1] = points / 4
	}
}

// XPForLevel returns the total experience needed to reach a level. The second
// return value is false if the level is outside 1 to MaxLevel.
func XPForLevel(level int) (int, bool) {
	if level < 1 || level > MaxLevel {
		return 0, false
	}
	return xpTable[level], true
}
