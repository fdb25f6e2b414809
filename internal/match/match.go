package match

// Match is a single result as extracted from the results page.
// Team1 and Team2 correspond positionally to Team1Score and Team2Score.
type Match struct {
	Team1      string `json:"team1"`
	Team2      string `json:"team2"`
	Team1Score string `json:"team1Score"`
	Team2Score string `json:"team2Score"`
	Result     string `json:"result"`
}

// Team is one side of the tournament with every fixture it played.
type Team struct {
	Name    string      `json:"name"`
	Matches []TeamMatch `json:"matches"`
}

// TeamMatch is a Match seen from one team's side.
// Result is carried through verbatim and is not re-expressed for the team.
type TeamMatch struct {
	Opponent      string `json:"opponent"`
	SelfScore     string `json:"selfScore"`
	OpponentScore string `json:"opponentScore"`
	Result        string `json:"result"`
}

// ForTeam1 returns the match as seen by Team1.
func (m Match) ForTeam1() TeamMatch {
	return TeamMatch{
		Opponent:      m.Team2,
		SelfScore:     m.Team1Score,
		OpponentScore: m.Team2Score,
		Result:        m.Result,
	}
}

// ForTeam2 returns the match as seen by Team2.
func (m Match) ForTeam2() TeamMatch {
	return TeamMatch{
		Opponent:      m.Team1,
		SelfScore:     m.Team2Score,
		OpponentScore: m.Team1Score,
		Result:        m.Result,
	}
}

// FixtureCount returns the total number of team fixtures across teams.
// Every Match contributes two.
func FixtureCount(teams []Team) int {
	n := 0
	for _, t := range teams {
		n += len(t.Matches)
	}
	return n
}
