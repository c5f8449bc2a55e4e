package fixture

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/preston-bernstein/kickbase-collector/internal/providers"
	"github.com/preston-bernstein/kickbase-collector/internal/snapshots"
)

var errUnknownPlayer = errors.New("not present in fixture")

var _ providers.Source = (*Provider)(nil)

// Provider serves previously collected documents from disk, useful for dry
// runs and for exercising the pipeline without network access.
type Provider struct {
	results *snapshots.Store
	days    *snapshots.DayStore

	once    sync.Once
	players snapshots.ResultSet
	loadErr error
}

// New creates a fixture provider reading player documents from resultPath and
// day documents from dataDir.
func New(resultPath, dataDir string) *Provider {
	return &Provider{
		results: snapshots.NewStore(resultPath, nil),
		days:    snapshots.NewDayStore(dataDir),
	}
}

// FetchPlayer returns the stored document for playerID.
func (p *Provider) FetchPlayer(ctx context.Context, playerID string) (json.RawMessage, error) {
	target := "player " + playerID
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.once.Do(func() {
		p.players, p.loadErr = p.results.Load()
	})
	if p.loadErr != nil {
		return nil, &providers.TransientError{Target: target, Err: p.loadErr}
	}
	doc, ok := p.players.Get(playerID)
	if !ok {
		return nil, &providers.TransientError{Target: target, Err: errUnknownPlayer}
	}
	return doc, nil
}

// FetchPlayerDay returns the stored day document, falling back to the summary file.
func (p *Provider) FetchPlayerDay(ctx context.Context, playerID string, day int) (json.RawMessage, error) {
	target := fmt.Sprintf("player %s day %d", playerID, day)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := p.days.LoadDay(playerID, day)
	if err == nil {
		return doc, nil
	}
	if summary, sumErr := p.days.LoadSummary(playerID); sumErr == nil {
		if doc, ok := summary[day]; ok {
			return doc, nil
		}
	}
	if errors.Is(err, snapshots.ErrNotFound) {
		err = errUnknownPlayer
	}
	return nil, &providers.TransientError{Target: target, Err: err}
}
