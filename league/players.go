package league

import (
	"sort"
	"strings"
)

// Players joins every element with its team and position. minMinutes > 0
// drops players below that many minutes; a non-empty position keeps only
// that position, compared case-insensitively against its short name.
func Players(data *Bootstrap, minMinutes int, position string) []Player {
	teams := make(map[int]Team, len(data.Teams))
	for _, t := range data.Teams {
		teams[t.ID] = t
	}
	positions := make(map[int]string, len(data.ElementTypes))
	for _, et := range data.ElementTypes {
		positions[et.ID] = et.SingularNameShort
	}
	position = strings.ToUpper(position)

	players := []Player{}
	for _, e := range data.Elements {
		team, ok := teams[e.Team]
		if !ok {
			continue
		}
		pos, ok := positions[e.ElementType]
		if !ok {
			continue
		}
		if minMinutes > 0 && e.Minutes < minMinutes {
			continue
		}
		if position != "" && pos != position {
			continue
		}
		players = append(players, Player{
			ID:            e.ID,
			WebName:       e.WebName,
			Team:          e.Team,
			TeamName:      team.Name,
			TeamShortName: team.ShortName,
			ElementType:   e.ElementType,
			Position:      pos,
			NowCost:       e.NowCost,
			TotalPoints:   e.TotalPoints,
			Minutes:       e.Minutes,
			GoalsScored:   e.GoalsScored,
			Assists:       e.Assists,
			CleanSheets:   e.CleanSheets,
			Form:          e.Form,
		})
	}
	return players
}

// TopPerformers returns up to limit players by total points, highest first
func TopPerformers(data *Bootstrap, position string, limit int) []Player {
	players := Players(data, 0, position)
	sort.SliceStable(players, func(i, j int) bool {
		return players[i].TotalPoints > players[j].TotalPoints
	})
	return head(players, limit)
}

// ValuePicks returns up to limit players by points per unit of cost.
// Players without a price are skipped.
func ValuePicks(data *Bootstrap, minMinutes, limit int) []Player {
	all := Players(data, minMinutes, "")
	picks := make([]Player, 0, len(all))
	for _, p := range all {
		if p.NowCost <= 0 {
			continue
		}
		score := float64(p.TotalPoints) / float64(p.NowCost)
		p.ValueScore = &score
		picks = append(picks, p)
	}
	sort.SliceStable(picks, func(i, j int) bool {
		return *picks[i].ValueScore > *picks[j].ValueScore
	})
	return head(picks, limit)
}

func head(players []Player, limit int) []Player {
	if limit < 0 {
		limit = 0
	}
	if len(players) > limit {
		return players[:limit]
	}
	return players
}
