package editor

// wrapCells splits a run of cells into lines of at most width cells,
// breaking after whitespace when possible. Cells wider than width get a
// line of their own. width <= 0 disables wrapping.
func wrapCells(cells []cell, width int) [][]cell {
	if len(cells) == 0 {
		return [][]cell{nil}
	}
	if width <= 0 {
		return [][]cell{cells}
	}
	var lines [][]cell
	for start := 0; start < len(cells); {
		used := 0
		overflow := start
		for overflow < len(cells) {
			w := max(cells[overflow].width, 1)
			if used > 0 && used+w > width {
				break
			}
			used += w
			overflow++
		}
		end := overflow
		if overflow < len(cells) {
			if br, ok := findWordWrapBreak(cells, start, overflow); ok {
				end = br
			}
		}
		if end <= start {
			end = start + 1
		}
		lines = append(lines, cells[start:end])
		start = end
	}
	return lines
}

func findWordWrapBreak(cells []cell, start, overflow int) (int, bool) {
	if start < 0 {
		start = 0
	}
	if overflow > len(cells) {
		overflow = len(cells)
	}
	if start >= overflow {
		return 0, false
	}

	lastBreak := -1
	i := start
	for i < overflow {
		if !cells[i].space {
			i++
			continue
		}
		j := i + 1
		for j < overflow && cells[j].space {
			j++
		}
		lastBreak = j
		i = j
	}

	if lastBreak <= start {
		return 0, false
	}
	return lastBreak, true
}
