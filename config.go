package voiper

import (
	"fmt"
	"reflect"

	"github.com/GoCodeAlone/voiper/feeders"
)

// Feeder populates a configuration value from a source. Every feeder in the feeders package
// satisfies it.
type Feeder = feeders.Feeder

// FeedConfiguration applies feeders to target in order; later feeders override earlier ones.
func FeedConfiguration(target any, sources ...Feeder) error {
	rv := reflect.ValueOf(target)
	if !rv.IsValid() || rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("%w: %T", ErrConfigTargetNil, target)
	}
	for i, feeder := range sources {
		if err := feeder.Feed(target); err != nil {
			return fmt.Errorf("%w: feeder #%d (%T): %w", ErrConfigFeederFailed, i, feeder, err)
		}
	}
	return nil
}

// LoadConfiguration builds a role configuration of type C from feeders, starting from defaults.
// It is the usual way to produce the configuration passed to a module factory:
//
//	cfg, err := voiper.LoadConfiguration(LoginConfig{Retries: 1},
//		feeders.NewYamlFeeder("login.yaml"),
//		feeders.NewAffixedEnvFeeder("LOGIN", ""))
func LoadConfiguration[C any](defaults C, sources ...Feeder) (C, error) {
	cfg := defaults
	if err := FeedConfiguration(&cfg, sources...); err != nil {
		return defaults, err
	}
	return cfg, nil
}
