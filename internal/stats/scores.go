package stats

import (
	"math"

	"league-dashboard/internal/riot"
)

// Weights for the five per-minute metrics that make up a match score.
const (
	weightKDA  = 0.30
	weightDPM  = 0.20
	weightGPM  = 0.20
	weightCSPM = 0.15
	weightVPM  = 0.15
)

type metricRow struct {
	puuid string
	kda   float64
	dpm   float64
	gpm   float64
	vpm   float64
	cspm  float64
}

// MatchScores ranks every participant of one match on KDA, damage, gold,
// vision and creep score per minute, combines the percentile ranks with fixed
// weights and scales the result to an integer in [1,100].
func MatchScores(match *riot.Match) map[string]int {
	scores := make(map[string]int)
	if match == nil || len(match.Info.Participants) == 0 {
		return scores
	}

	minutes := math.Max(1, float64(match.Info.GameDuration)/60)
	rows := make([]metricRow, 0, len(match.Info.Participants))
	for _, p := range match.Info.Participants {
		rows = append(rows, metricRow{
			puuid: p.Puuid,
			kda:   float64(p.Kills+p.Assists) / math.Max(1, float64(p.Deaths)),
			dpm:   float64(p.TotalDamageDealtToChampions) / minutes,
			gpm:   float64(p.GoldEarned) / minutes,
			vpm:   float64(p.VisionScore) / minutes,
			cspm:  float64(p.TotalMinionsKilled+p.NeutralMinionsKilled) / minutes,
		})
	}

	kdaValues := collect(rows, func(r metricRow) float64 { return r.kda })
	dpmValues := collect(rows, func(r metricRow) float64 { return r.dpm })
	gpmValues := collect(rows, func(r metricRow) float64 { return r.gpm })
	vpmValues := collect(rows, func(r metricRow) float64 { return r.vpm })
	cspmValues := collect(rows, func(r metricRow) float64 { return r.cspm })

	for _, row := range rows {
		score := weightKDA*percentile(row.kda, kdaValues) +
			weightDPM*percentile(row.dpm, dpmValues) +
			weightGPM*percentile(row.gpm, gpmValues) +
			weightCSPM*percentile(row.cspm, cspmValues) +
			weightVPM*percentile(row.vpm, vpmValues)
		scores[row.puuid] = clampScore(int(math.Round(1 + 99*score)))
	}
	return scores
}

// percentile ranks value within values with ties sharing the midpoint:
// (countBelow + countEqual*0.5) / n.
func percentile(value float64, values []float64) float64 {
	if len(values) == 0 {
		return 0.5
	}
	below, equal := 0, 0
	for _, v := range values {
		if v < value {
			below++
		} else if v == value {
			equal++
		}
	}
	return (float64(below) + float64(equal)*0.5) / float64(len(values))
}

func collect(rows []metricRow, pick func(metricRow) float64) []float64 {
	out := make([]float64, len(rows))
	for i, row := range rows {
		out[i] = pick(row)
	}
	return out
}

func clampScore(score int) int {
	if score < 1 {
		return 1
	}
	if score > 100 {
		return 100
	}
	return score
}
