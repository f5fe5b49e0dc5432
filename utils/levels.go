package utils

import "math"

// LevelForXP returns the level reached at xp: floor(sqrt(xp/50)) + 1
func LevelForXP(xp int64) int {
	if xp <= 0 {
		return 1
	}
	level := int(math.Floor(math.Sqrt(float64(xp)/XPPerLevelFactor))) + 1
	// float rounding can land one off near perfect squares
	for level > 1 && GetXPForLevel(level) > xp {
		level--
	}
	for GetXPForLevel(level+1) <= xp {
		level++
	}
	return level
}

// GetXPForLevel returns the XP at which level starts: (level-1)^2 * 50
func GetXPForLevel(level int) int64 {
	if level <= 1 {
		return 0
	}
	n := int64(level - 1)
	return n * n * XPPerLevelFactor
}

// LevelProgress is the XP earned inside the current level
type LevelProgress struct {
	Level   int
	Current int64
	Needed  int64
	Percent float64
}

// GetLevelProgress returns how far xp is into its level
func GetLevelProgress(xp int64) LevelProgress {
	if xp < 0 {
		xp = 0
	}
	level := LevelForXP(xp)
	start := GetXPForLevel(level)
	next := GetXPForLevel(level + 1)

	p := LevelProgress{
		Level:   level,
		Current: xp - start,
		Needed:  next - start,
	}
	if p.Needed > 0 {
		p.Percent = float64(p.Current) / float64(p.Needed) * 100
	}
	return p
}
