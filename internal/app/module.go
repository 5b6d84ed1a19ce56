package app

import "github.com/Beebbbyy/order-metrics-api/internal/orderitem"

func (a *App) initModules() {
	if a.config.GetBool("modules.orderitem.enabled") {
		dep := orderitem.Dependency{
			Config: a.config,
			Router: a.router,
			ID:     a.fileID,
		}
		if a.config.GetBool("metrics.enabled") {
			dep.Registry = a.registry
		}

		closer, err := orderitem.New(dep)
		if err != nil {
			fatal("failed to init module orderitem", err)
		}
		if closer != nil {
			a.addCloser("OrderItem", closer)
		}
	}
}
