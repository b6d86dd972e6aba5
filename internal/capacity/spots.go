package capacity

// AssignSpots picks n spot numbers from [1, poolSize] avoiding the
// occupied set. It prefers a consecutive run so a group parks
// together, falls back to the first n individually free spots, and
// returns nil only when fewer than n spots are free at all. This is a
// best-effort heuristic, not a hard capacity constraint.
func AssignSpots(occupied map[int]bool, poolSize, n int) []int {
	if n < 1 || poolSize < 1 {
		return nil
	}

	// Consecutive run first.
	run := 0
	for spot := 1; spot <= poolSize; spot++ {
		if occupied[spot] {
			run = 0
			continue
		}
		run++
		if run == n {
			out := make([]int, 0, n)
			for s := spot - n + 1; s <= spot; s++ {
				out = append(out, s)
			}
			return out
		}
	}

	// First n free spots, wherever they are.
	out := make([]int, 0, n)
	for spot := 1; spot <= poolSize && len(out) < n; spot++ {
		if !occupied[spot] {
			out = append(out, spot)
		}
	}
	if len(out) < n {
		return nil
	}
	return out
}
