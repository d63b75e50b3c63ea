package snapshot

import (
	"context"
	"time"

	"parkwise/internal/shared/config"
	"parkwise/internal/shared/constants"
	"parkwise/internal/spots"
	"parkwise/pkg/cache"
	"parkwise/pkg/logger"
)

// SpotView is one spot in the published lot state. Field names are the
// contract consumed by the dashboard and the floor displays.
type SpotView struct {
	SpotID string `json:"spot_id"`
	Status string `json:"status"`
	Floor  int    `json:"floor"`
	Row    int    `json:"row"`
	Col    int    `json:"col"`
}

// LotState is the full lot snapshot keyed by publication time.
type LotState struct {
	LastUpdated int64      `json:"last_updated"`
	Spots       []SpotView `json:"spots"`
}

// Publisher pushes the current lot state into Redis after every committed
// transition so read traffic never touches the registry.
type Publisher struct {
	registry *spots.Registry
	cache    cache.Service
	ttl      time.Duration
	log      *logger.Logger
}

func NewPublisher(registry *spots.Registry, cacheService cache.Service, cfg *config.Config, log *logger.Logger) *Publisher {
	return &Publisher{
		registry: registry,
		cache:    cacheService,
		ttl:      cfg.Redis.SnapshotTTL,
		log:      log,
	}
}

// Publish captures the registry and writes the snapshot. Spots whose physical
// location was never reported are left out of the view.
func (p *Publisher) Publish(ctx context.Context) error {
	state := p.Build()
	if err := p.cache.Set(ctx, constants.CacheKeyLotSnapshot, state, p.ttl); err != nil {
		return err
	}
	p.log.Debug("lot snapshot published", "spots", len(state.Spots))
	return nil
}

// Build renders the registry into the snapshot shape without publishing.
func (p *Publisher) Build() LotState {
	all := p.registry.Snapshot()
	views := make([]SpotView, 0, len(all))
	for _, spot := range all {
		if !spot.LocationKnown {
			continue
		}
		views = append(views, SpotView{
			SpotID: spot.ID,
			Status: string(spot.Status),
			Floor:  spot.Location.Floor,
			Row:    spot.Location.Row,
			Col:    spot.Location.Col,
		})
	}
	return LotState{
		LastUpdated: time.Now().Unix(),
		Spots:       views,
	}
}

// Get returns the last published snapshot, falling back to a fresh build when
// the cache entry expired or Redis is unavailable.
func (p *Publisher) Get(ctx context.Context) (LotState, error) {
	var state LotState
	err := p.cache.Get(ctx, constants.CacheKeyLotSnapshot, &state)
	if err == nil {
		return state, nil
	}
	return p.Build(), nil
}
