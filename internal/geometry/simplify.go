package geometry

// Simplify applies recursive Ramer-Douglas-Peucker simplification to line,
// dropping points whose perpendicular deviation from the chord between the
// two surrounding kept points is below epsilon meters. The first and last
// points are always kept. epsilon == 0 is idempotent: nothing is removed.
func Simplify(line []Coordinate, epsilon float64) []Coordinate {
	if len(line) < 3 {
		out := make([]Coordinate, len(line))
		copy(out, line)
		return out
	}
	keep := make([]bool, len(line))
	keep[0] = true
	keep[len(line)-1] = true
	simplifySection(line, 0, len(line)-1, epsilon, keep)

	out := make([]Coordinate, 0, len(line))
	for i, k := range keep {
		if k {
			out = append(out, line[i])
		}
	}
	return out
}

func simplifySection(line []Coordinate, start, end int, epsilon float64, keep []bool) {
	if end <= start+1 {
		return
	}
	maxDist := -1.0
	maxIndex := -1
	for i := start + 1; i < end; i++ {
		d, _ := SegmentDistance(line[i], line[start], line[end], false)
		if d > maxDist {
			maxDist = d
			maxIndex = i
		}
	}
	if maxDist > epsilon {
		keep[maxIndex] = true
		simplifySection(line, start, maxIndex, epsilon, keep)
		simplifySection(line, maxIndex, end, epsilon, keep)
	}
}
