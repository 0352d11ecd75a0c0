package config

import (
	"os"
	"strconv"
	"strings"
	"sync"
)

// Feature represents a toggleable capability of the bot.
type Feature string

const (
	// FeatureAIChat enables the Gemini conversation delegate. When off
	// the bot still handles commands but answers chat with an apology.
	FeatureAIChat Feature = "ai_chat"

	// FeatureVideoFetch enables the /getvideo extractor.
	FeatureVideoFetch Feature = "video_fetch"

	// FeatureDailyTribute enables the scheduled morning announcement.
	FeatureDailyTribute Feature = "daily_tribute"

	// FeatureDailyInterest enables overnight interest accrual on
	// outstanding penalties.
	FeatureDailyInterest Feature = "daily_interest"

	// FeatureMarketPrices enables /price lookups.
	FeatureMarketPrices Feature = "market_prices"

	// FeaturePenaltySystem enables the accountability commands.
	FeaturePenaltySystem Feature = "penalty_system"
)

// FeatureFlags manages runtime feature toggles. Defaults are code
// level; FEATURE_<NAME>=true/false in the environment overrides them.
type FeatureFlags struct {
	mu    sync.RWMutex
	flags map[Feature]bool
}

// LoadFeatureFlags builds the flag set from defaults plus environment
// overrides.
func LoadFeatureFlags() *FeatureFlags {
	ff := &FeatureFlags{
		flags: map[Feature]bool{
			FeatureAIChat:        true,
			FeatureVideoFetch:    true,
			FeatureDailyTribute:  true,
			FeatureDailyInterest: true,
			FeatureMarketPrices:  true,
			FeaturePenaltySystem: true,
		},
	}
	ff.loadFromEnvironment()
	return ff
}

func (ff *FeatureFlags) loadFromEnvironment() {
	for feature := range ff.flags {
		key := "FEATURE_" + strings.ToUpper(string(feature))
		val := os.Getenv(key)
		if val == "" {
			continue
		}
		enabled, err := strconv.ParseBool(val)
		if err != nil {
			continue
		}
		ff.flags[feature] = enabled
	}
}

// IsEnabled reports whether a feature is on. Unknown features are off.
func (ff *FeatureFlags) IsEnabled(feature Feature) bool {
	ff.mu.RLock()
	defer ff.mu.RUnlock()
	return ff.flags[feature]
}

// Set overrides a flag at runtime.
func (ff *FeatureFlags) Set(feature Feature, enabled bool) {
	ff.mu.Lock()
	defer ff.mu.Unlock()
	ff.flags[feature] = enabled
}

// Enabled returns the names of all enabled features, for startup logs.
func (ff *FeatureFlags) Enabled() []string {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	names := make([]string, 0, len(ff.flags))
	for feature, on := range ff.flags {
		if on {
			names = append(names, string(feature))
		}
	}
	return names
}
