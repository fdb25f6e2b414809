package match

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// LookupError reports a team name that the linking pass could not find among
// the teams registered by the discovery pass. It indicates a defect in
// Aggregate rather than bad input.
type LookupError struct {
	Team string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("team %q was not registered during discovery", e.Team)
}

// Aggregate pivots matches into teams.
//
// Teams are ordered by first appearance (Team1 before Team2 within a Match)
// and each team's fixtures keep the order of matches. Every Match yields two
// mirrored TeamMatch entries, one per side. The input is not modified.
func Aggregate(matches []Match) ([]Team, error) {
	teams := make([]Team, 0)
	index := make(map[string]int)

	register := func(name string) {
		if _, ok := index[name]; ok {
			return
		}
		index[name] = len(teams)
		teams = append(teams, Team{Name: name, Matches: make([]TeamMatch, 0)})
	}

	for _, m := range matches {
		register(m.Team1)
		register(m.Team2)
	}

	link := func(name string, tm TeamMatch) error {
		i, ok := index[name]
		if !ok {
			return errors.WithAssertionFailure(&LookupError{Team: name})
		}
		teams[i].Matches = append(teams[i].Matches, tm)
		return nil
	}

	for _, m := range matches {
		if err := link(m.Team1, m.ForTeam1()); err != nil {
			return nil, err
		}
		if err := link(m.Team2, m.ForTeam2()); err != nil {
			return nil, err
		}
	}

	return teams, nil
}
