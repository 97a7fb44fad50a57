package ports

import "go.trai.ch/respawn/internal/core/domain"

// ConfigLoader defines the interface for loading project configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the project file located directly in dir.
	// It returns domain.ErrConfigNotFound when dir holds no project file.
	Load(dir string) (*domain.Project, error)

	// Discover walks up from cwd and loads the nearest project file.
	// When none exists it returns the default project rooted at cwd.
	Discover(cwd string) (*domain.Project, error)
}
