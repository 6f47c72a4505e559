package ports

import "go.trai.ch/planar/internal/core/domain"

// ConfigLoader defines the interface for loading the pipeline configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load discovers the configuration file starting at cwd and returns the
	// effective configuration. Missing files yield the defaults.
	Load(cwd string) (*domain.Config, error)
	// LoadFile reads the configuration from an explicit path.
	LoadFile(path string) (*domain.Config, error)
}
