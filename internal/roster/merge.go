package roster

// Merge combines a cached snapshot with a freshly fetched one. The contract
// is "never regress to older match data": when the incoming fetch reports an
// older last-played timestamp than the cache (the upstream API is eventually
// consistent), the cached status and match fields win. The active game is
// kept only when the incoming status explicitly reports in-game; otherwise it
// is cleared so a finished game never lingers.
func Merge(cached, incoming Snapshot) Snapshot {
	cachedLast := cached.LastPlayed()
	incomingLast := incoming.LastPlayed()
	keepCached := incomingLast == 0 || (cachedLast != 0 && incomingLast < cachedLast)

	merged := incoming

	if len(incoming.Ranked) == 0 && len(cached.Ranked) > 0 {
		merged.Ranked = cached.Ranked
	}
	if len(incoming.MatchSummaries) == 0 && len(cached.MatchSummaries) > 0 {
		merged.MatchSummaries = cached.MatchSummaries
	}
	if keepCached {
		merged.Status = cached.Status
		merged.MatchSummaries = cached.MatchSummaries
		if len(cached.Ranked) > 0 {
			merged.Ranked = cached.Ranked
		}
	}

	if incoming.inGame() {
		merged.ActiveGame = incoming.ActiveGame
	} else {
		merged.ActiveGame = nil
	}

	merged.Stale = false
	return merged
}
