package contract

import (
	"github.com/smallbiznis/sitebill/internal/contract/repository"
	"github.com/smallbiznis/sitebill/internal/contract/service"
	"go.uber.org/fx"
)

var Module = fx.Module("contract.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
