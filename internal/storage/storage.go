package storage

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/pfrederiksen/cricket-results/internal/match"
)

const (
	MatchesFile = "matches.json"
	TeamsFile   = "teams.json"
)

// Store handles persistence of match and team snapshots
type Store struct {
	dataDir string
}

// New creates a new Store rooted at dataDir, creating it if needed.
// A leading "~/" is expanded to the home directory.
func New(dataDir string) (*Store, error) {
	dataDir, err := expandHome(dataDir)
	if err != nil {
		return nil, err
	}
	if dataDir == "" {
		dataDir = "."
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, errors.Wrapf(err, "creating snapshot directory %s", dataDir)
	}

	return &Store{
		dataDir: dataDir,
	}, nil
}

func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "getting home directory")
	}
	return filepath.Join(home, path[2:]), nil
}

// Path returns the location of a snapshot file inside the store.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dataDir, name)
}

// SaveMatches writes the raw match list to matches.json.
func (s *Store) SaveMatches(matches []match.Match) error {
	if matches == nil {
		matches = []match.Match{}
	}
	return s.save(MatchesFile, matches)
}

// SaveTeams writes the aggregated teams to teams.json.
func (s *Store) SaveTeams(teams []match.Team) error {
	if teams == nil {
		teams = []match.Team{}
	}
	return s.save(TeamsFile, teams)
}

// LoadMatches reads matches.json.
func (s *Store) LoadMatches() ([]match.Match, error) {
	var matches []match.Match
	if err := s.load(MatchesFile, &matches); err != nil {
		return nil, err
	}
	return matches, nil
}

// PreviousMatches returns the matches saved by the last run, or nil when no
// snapshot exists yet.
func (s *Store) PreviousMatches() ([]match.Match, error) {
	if _, err := os.Stat(s.Path(MatchesFile)); os.IsNotExist(err) {
		return nil, nil
	}
	return s.LoadMatches()
}

// LoadTeams reads teams.json.
func (s *Store) LoadTeams() ([]match.Team, error) {
	var teams []match.Team
	if err := s.load(TeamsFile, &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

func (s *Store) save(name string, v any) error {
	data, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "encoding snapshot %s", name)
	}

	path := s.Path(name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "writing snapshot %s", path)
	}
	return nil
}

func (s *Store) load(name string, v any) error {
	path := s.Path(name)

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading snapshot %s", path)
	}

	if err := sonic.Unmarshal(data, v); err != nil {
		return errors.Wrapf(err, "parsing snapshot %s", path)
	}
	return nil
}
