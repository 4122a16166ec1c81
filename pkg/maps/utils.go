package maps

import "strconv"

// TerritoryIDToString converts a generated territory index to its ID.
func TerritoryIDToString(n int) string {
	return "t" + strconv.Itoa(n)
}

// StringToTerritoryID converts a generated territory ID back to its index.
func StringToTerritoryID(s string) int {
	if len(s) > 1 && s[0] == 't' {
		n, _ := strconv.Atoi(s[1:])
		return n
	}
	return 0
}

// clamp restricts a value to a range
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
