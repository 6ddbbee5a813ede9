package grammar

import (
	"sort"
	"strings"

	"github.com/dekarrin/rosed"
)

// DescribeSets renders the prediction sets of the analysis as a bordered
// table, one row per rule, with columns for nullability, FIRST, and FOLLOW.
// Handy output for debugging a grammar whose alternatives keep colliding.
func (an Analysis) DescribeSets() string {
	data := [][]string{
		{"RULE", "NULLABLE", "FIRST", "FOLLOW"},
	}

	for _, name := range an.g.NonTerminals() {
		nullable := "no"
		if an.nullable[name] {
			nullable = "yes"
		}

		row := []string{
			name,
			nullable,
			setString(an.first[name]),
			setString(an.follow[name]),
		}
		data = append(data, row)
	}

	return rosed.Edit("").
		InsertTableOpts(0, data, 80, rosed.Options{
			TableBorders: true,
		}).
		String()
}

func setString(s map[string]bool) string {
	items := make([]string, 0, len(s))
	for k := range s {
		items = append(items, k)
	}
	sort.Strings(items)
	return strings.Join(items, " ")
}
