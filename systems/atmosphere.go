package systems

import (
	"time"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/supermatter/components"
	"github.com/pthm-cable/supermatter/config"
	"github.com/pthm-cable/supermatter/gas"
)

// AtmosphereSystem runs the coolant loop of every reactor tile. Each tick
// it exchanges part of the tile with the feed mix, scrubbing waste gas and
// pulling the temperature toward the feed temperature. Exposed tiles are
// vented to vacuum.
type AtmosphereSystem struct {
	filter ecs.Filter1[components.Atmosphere]

	enabled     bool
	rate        float64 // Fraction exchanged per second
	feed        gas.Storage
	temperature float64
}

// NewAtmosphereSystem creates an atmosphere system from cfg.
func NewAtmosphereSystem(w *ecs.World, cfg *config.Config) *AtmosphereSystem {
	return &AtmosphereSystem{
		filter:      *ecs.NewFilter1[components.Atmosphere](w),
		enabled:     cfg.Atmosphere.Feed.Enabled,
		rate:        cfg.Atmosphere.Feed.ExchangeRate,
		feed:        cfg.Derived.FeedMix,
		temperature: cfg.Atmosphere.Feed.Temperature,
	}
}

// Update advances every tile by dt.
func (s *AtmosphereSystem) Update(dt time.Duration) {
	frac := clamp(s.rate*dt.Seconds(), 0, 1)

	query := s.filter.Query()
	for query.Next() {
		atmos := query.Get()
		if atmos.Exposed {
			atmos.Mix = gas.Mixture{Temperature: gas.TCMB}
			continue
		}
		if s.enabled {
			Exchange(&atmos.Mix, s.feed, s.temperature, frac)
		}
	}
}

// Exchange moves mix a fraction frac of the way toward the feed.
func Exchange(mix *gas.Mixture, feed gas.Storage, feedTemperature, frac float64) {
	var diff gas.Storage
	floats.SubTo(diff[:], feed[:], mix.Moles[:])
	floats.AddScaled(mix.Moles[:], frac, diff[:])
	for i, v := range mix.Moles {
		if v < 0 {
			mix.Moles[i] = 0
		}
	}
	mix.Temperature += (feedTemperature - mix.Temperature) * frac
}
