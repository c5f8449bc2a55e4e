package server

import (
	"github.com/preston-bernstein/kickbase-collector/internal/config"
	"github.com/preston-bernstein/kickbase-collector/internal/providers"
	"github.com/preston-bernstein/kickbase-collector/internal/providers/fixture"
	"github.com/preston-bernstein/kickbase-collector/internal/providers/kickbase"
)

// NewKickbaseClient builds the API client from config. An empty token yields
// a client that can only log in.
func NewKickbaseClient(cfg config.Config, token string) *kickbase.Client {
	return kickbase.NewClient(kickbase.Config{
		BaseURL:       cfg.Kickbase.BaseURL,
		Token:         token,
		LeagueID:      cfg.Kickbase.LeagueID,
		CompetitionID: cfg.Kickbase.CompetitionID,
		Timeout:       cfg.Kickbase.HTTPTimeout,
	})
}

func selectSource(cfg config.Config, token string) providers.Source {
	switch cfg.Provider {
	case config.ProviderFixture:
		return fixture.New(cfg.FixturePath, cfg.Events.DataDir)
	default:
		return NewKickbaseClient(cfg, token)
	}
}
