//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"

	"github.com/uniedit/apiclient/internal/shared/config"
)

// InitializeApp builds the application from configuration.
func InitializeApp(cfg *config.Config) (*App, func(), error) {
	wire.Build(
		InfraSet,
		APISet,
		UserSet,
		AuthSet,
		newApp,
	)
	return nil, nil, nil
}
