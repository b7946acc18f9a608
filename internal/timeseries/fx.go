package timeseries

import (
	"github.com/smallbiznis/sitebill/internal/timeseries/repository"
	"github.com/smallbiznis/sitebill/internal/timeseries/service"
	"go.uber.org/fx"
)

var Module = fx.Module("timeseries.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
