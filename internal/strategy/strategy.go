package strategy

import (
	"github.com/rotisserie/eris"

	"github.com/derekprior/fieldplan/internal/config"
)

// Game represents a single pairing between two teams of a group.
type Game struct {
	Home string
	Away string
	Leg  int // 1, or 2 for the return match of a double round-robin
}

// Strategy generates the pairings played inside one group.
type Strategy interface {
	GenerateMatchups(teams []string) []Game
}

// Get returns a Strategy by name.
func Get(name string) (Strategy, error) {
	switch name {
	case "single_round_robin":
		return &SingleRoundRobin{}, nil
	case "double_round_robin":
		return &DoubleRoundRobin{}, nil
	default:
		return nil, eris.Errorf("unknown strategy: %q", name)
	}
}

// ForFormat returns the strategy a competition format calls for.
func ForFormat(f config.Format) Strategy {
	name := "single_round_robin"
	if f.DoubleRoundRobin {
		name = "double_round_robin"
	}
	s, _ := Get(name)
	return s
}

// PairingCount is the number of unique unordered pairings among n teams.
func PairingCount(n int) int {
	if n < 2 {
		return 0
	}
	return n * (n - 1) / 2
}

// SingleRoundRobin plays every pair of teams once, in registration order.
type SingleRoundRobin struct{}

func (s *SingleRoundRobin) GenerateMatchups(teams []string) []Game {
	var games []Game
	for i := 0; i < len(teams); i++ {
		for j := i + 1; j < len(teams); j++ {
			games = append(games, Game{Home: teams[i], Away: teams[j], Leg: 1})
		}
	}
	return games
}

// DoubleRoundRobin plays every pair twice. All first legs come before the
// return legs, which swap home and away.
type DoubleRoundRobin struct{}

func (s *DoubleRoundRobin) GenerateMatchups(teams []string) []Game {
	first := (&SingleRoundRobin{}).GenerateMatchups(teams)
	games := make([]Game, 0, 2*len(first))
	games = append(games, first...)
	for _, g := range first {
		games = append(games, Game{Home: g.Away, Away: g.Home, Leg: 2})
	}
	return games
}
