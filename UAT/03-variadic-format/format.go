// Package format renders score lines.
package format

//go:generate shimgen fmt.Sprintf --name sprintf

// Score renders one player's score line.
func Score(player string, points int) string {
	return sprintf("%s scored %d", player, points)
}

// Table renders one line per player, in the order given.
func Table(players []string, points map[string]int) []string {
	lines := make([]string, 0, len(players))
	for _, player := range players {
		lines = append(lines, Score(player, points[player]))
	}

	return lines
}

// Header renders a title with no arguments to format.
func Header(title string) string {
	return sprintf(title)
}
