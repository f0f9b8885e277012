//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package main

import (
	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"

	"github.com/Rehan-Abrar/Cine-Note/internal/biz"
	"github.com/Rehan-Abrar/Cine-Note/internal/conf"
	"github.com/Rehan-Abrar/Cine-Note/internal/data"
	"github.com/Rehan-Abrar/Cine-Note/internal/server"
	"github.com/Rehan-Abrar/Cine-Note/internal/service"
)

// wireApp init kratos application.
func wireApp(*conf.Server, *conf.Data, *conf.Metadata, *conf.Auth, *conf.Tracker, log.Logger) (*kratos.App, func(), error) {
	panic(wire.Build(server.ProviderSet, data.ProviderSet, biz.ProviderSet, service.ProviderSet, newApp))
}
