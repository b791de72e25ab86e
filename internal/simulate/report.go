package simulate

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/backmarker/backmarker/internal/domain/types"
)

// renderReport prints the simulated leaderboard and the season stat
// rankings as console tables.
func renderReport(entries []types.LeaderboardEntry, seasonStats types.SeasonStats, topN int) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("Simulated leaderboard")
	t.AppendHeader(table.Row{"Rank", "Username", "Points", "Autopicks"})
	for i, entry := range entries {
		if i >= topN {
			break
		}
		points := "null"
		if entry.Points != nil {
			points = fmt.Sprintf("%d", *entry.Points)
		}
		t.AppendRow(table.Row{entry.Rank, entry.Username, points, entry.Autopicks})
	}
	t.Render()

	t = table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("Top single-race scores")
	t.AppendHeader(table.Row{"Username", "Race", "Points"})
	for _, score := range seasonStats.TopSingleRaceScores {
		t.AppendRow(table.Row{score.Username, score.RaceName, score.Points})
	}
	t.Render()

	t = table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("Most picked drivers")
	t.AppendHeader(table.Row{"Driver", "Picks", "Share", "Points", "Best gain"})
	for _, d := range seasonStats.MostPickedDrivers {
		t.AppendRow(table.Row{
			d.DriverName,
			d.PickCount,
			fmt.Sprintf("%.1f%%", d.SelectionPercent),
			d.TotalPoints,
			d.BiggestGain,
		})
	}
	t.Render()
}
