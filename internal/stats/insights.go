package stats

import (
	"fmt"
	"sort"
	"strconv"

	"league-dashboard/internal/ddragon"
	"league-dashboard/internal/riot"
)

type ChampionStat struct {
	ChampionName  string  `json:"championName"`
	ChampionImage string  `json:"championImage,omitempty"`
	Games         int     `json:"games"`
	Wins          int     `json:"wins"`
	Winrate       float64 `json:"winrate"`
}

type TeammateStat struct {
	Name  string `json:"name"`
	Games int    `json:"games"`
}

type Insights struct {
	Summary struct {
		Games   int     `json:"games"`
		Wins    int     `json:"wins"`
		Winrate float64 `json:"winrate"`
	} `json:"summary"`
	ChampionStats          []ChampionStat `json:"championStats"`
	MostPlayedChampion     *ChampionStat  `json:"mostPlayedChampion"`
	HighestWinrateChampion *ChampionStat  `json:"highestWinrateChampion"`
	LowestWinrateChampion  *ChampionStat  `json:"lowestWinrateChampion"`
	MostPlayedWith         []TeammateStat `json:"mostPlayedWith"`
}

// BuildInsights produces a per-champion win-rate breakdown and teammate
// frequencies for puuid over matches. catalog may be nil; champion images are
// then omitted.
func BuildInsights(matches []*riot.Match, puuid string, catalog *ddragon.Catalog) Insights {
	championStats := make(map[string]*ChampionStat)
	var championOrder []string
	teammateCounts := make(map[string]int)
	totalGames, totalWins := 0, 0

	for _, match := range matches {
		participant := findParticipant(match, puuid)
		if participant == nil {
			continue
		}

		totalGames++
		if participant.Win {
			totalWins++
		}

		championName := participant.ChampionName
		if championName == "" {
			championName = "Unknown"
		}
		entry, ok := championStats[championName]
		if !ok {
			entry = &ChampionStat{ChampionName: championName}
			if catalog != nil {
				if meta, ok := catalog.ChampionsByName[participant.ChampionName]; ok {
					entry.ChampionImage = meta.Image
				}
			}
			championStats[championName] = entry
			championOrder = append(championOrder, championName)
		}
		entry.Games++
		if participant.Win {
			entry.Wins++
		}

		for _, teammate := range match.Info.Participants {
			if teammate.TeamID != participant.TeamID || teammate.Puuid == puuid {
				continue
			}
			teammateCounts[teammateName(teammate)]++
		}
	}

	out := Insights{}
	out.Summary.Games = totalGames
	out.Summary.Wins = totalWins
	if totalGames > 0 {
		out.Summary.Winrate = float64(totalWins) / float64(totalGames)
	}

	for _, name := range championOrder {
		entry := championStats[name]
		if entry.Games > 0 {
			entry.Winrate = float64(entry.Wins) / float64(entry.Games)
		}
		out.ChampionStats = append(out.ChampionStats, *entry)

		if out.MostPlayedChampion == nil || entry.Games > out.MostPlayedChampion.Games {
			out.MostPlayedChampion = entry
		}
		if out.HighestWinrateChampion == nil || entry.Winrate > out.HighestWinrateChampion.Winrate {
			out.HighestWinrateChampion = entry
		}
		if out.LowestWinrateChampion == nil || entry.Winrate < out.LowestWinrateChampion.Winrate {
			out.LowestWinrateChampion = entry
		}
	}

	for name, games := range teammateCounts {
		out.MostPlayedWith = append(out.MostPlayedWith, TeammateStat{Name: name, Games: games})
	}
	sort.Slice(out.MostPlayedWith, func(i, j int) bool {
		if out.MostPlayedWith[i].Games != out.MostPlayedWith[j].Games {
			return out.MostPlayedWith[i].Games > out.MostPlayedWith[j].Games
		}
		return out.MostPlayedWith[i].Name < out.MostPlayedWith[j].Name
	})
	if len(out.MostPlayedWith) > 3 {
		out.MostPlayedWith = out.MostPlayedWith[:3]
	}

	return out
}

func teammateName(p riot.Participant) string {
	if p.RiotIDGameName != "" && p.RiotIDTagline != "" {
		return fmt.Sprintf("%s#%s", p.RiotIDGameName, p.RiotIDTagline)
	}
	if p.SummonerName != "" {
		return p.SummonerName
	}
	return "Unknown"
}

type ItemSummary struct {
	ID        int      `json:"id"`
	Name      string   `json:"name"`
	Image     string   `json:"image,omitempty"`
	BuildFrom []string `json:"buildFrom"`
}

type MatchSummary struct {
	MatchID       string        `json:"matchId"`
	GameMode      string        `json:"gameMode"`
	GameType      string        `json:"gameType"`
	QueueID       int           `json:"queueId"`
	QueueName     string        `json:"queueName,omitempty"`
	GameCreation  int64         `json:"gameCreation"`
	GameDuration  int64         `json:"gameDuration"`
	Win           bool          `json:"win"`
	ChampionName  string        `json:"championName"`
	ChampionImage string        `json:"championImage,omitempty"`
	Kills         int           `json:"kills"`
	Deaths        int           `json:"deaths"`
	Assists       int           `json:"assists"`
	CS            int           `json:"cs"`
	Items         []ItemSummary `json:"items"`
}

// BuildMatchSummaries flattens raw matches into per-match rows for puuid.
// Matches without the player are dropped.
func BuildMatchSummaries(matches []*riot.Match, puuid string, catalog *ddragon.Catalog) []MatchSummary {
	summaries := make([]MatchSummary, 0, len(matches))
	for _, match := range matches {
		participant := findParticipant(match, puuid)
		if participant == nil {
			continue
		}

		summary := MatchSummary{
			MatchID:      match.Metadata.MatchID,
			GameMode:     match.Info.GameMode,
			GameType:     match.Info.GameType,
			QueueID:      match.Info.QueueID,
			QueueName:    riot.QueueName(match.Info.QueueID),
			GameCreation: match.Info.GameCreation,
			GameDuration: match.Info.GameDuration,
			Win:          participant.Win,
			ChampionName: participant.ChampionName,
			Kills:        participant.Kills,
			Deaths:       participant.Deaths,
			Assists:      participant.Assists,
			CS:           participant.TotalMinionsKilled + participant.NeutralMinionsKilled,
		}
		if catalog != nil {
			if meta, ok := catalog.ChampionsByID[participant.ChampionID]; ok {
				summary.ChampionImage = meta.Image
			}
		}

		for _, itemID := range participant.Items() {
			if itemID == 0 {
				continue
			}
			item := ItemSummary{ID: itemID, Name: fmt.Sprintf("Item %d", itemID)}
			if catalog != nil {
				if meta, ok := catalog.ItemsByID[itemID]; ok {
					item.Name = meta.Name
					item.Image = meta.Image
					for _, fromID := range meta.From {
						id, err := strconv.Atoi(fromID)
						if err != nil {
							continue
						}
						if component, ok := catalog.ItemsByID[id]; ok && component.Name != "" {
							item.BuildFrom = append(item.BuildFrom, component.Name)
						}
					}
				}
			}
			summary.Items = append(summary.Items, item)
		}

		summaries = append(summaries, summary)
	}
	return summaries
}
