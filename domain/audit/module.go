package audit

import (
	"go.uber.org/fx"
)

var Module = fx.Module("audit",
	fx.Provide(
		NewRepository,
		NewService,
		NewHandler,
		func(s *Service) Sink { return s },
	),
	fx.Invoke(RegisterRoutes),
)
