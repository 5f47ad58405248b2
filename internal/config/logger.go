package config

import "go.uber.org/zap"

// NewLogger builds a zap logger whose verbosity follows the bag's ENV
// key: "production" gets the JSON production config, anything else
// (including unset) gets the human-readable development config.
func (b *Bag) NewLogger() (*zap.Logger, error) {
	if env, _ := b.Get("ENV"); env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
