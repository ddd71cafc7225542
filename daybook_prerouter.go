package daybook

import (
	"net/http"

	"github.com/caasmo/daybook/cache/ristretto"
	"github.com/caasmo/daybook/core"
	"github.com/caasmo/daybook/core/prerouter"
	"github.com/caasmo/daybook/router"
)

// preRouterChain wraps the router in the middlewares that run on every
// request, before routing. The Recorder must run first, RequestLog and
// Metrics read the status it records.
func preRouterChain(app *core.App) http.Handler {
	blocks, err := ristretto.New[bool]()
	if err != nil {
		panic(err)
	}

	return router.NewChain(app.Router()).WithMiddleware(
		prerouter.NewRecorder().Execute,
		prerouter.NewRequestID().Execute,
		prerouter.NewBlockIp(app, blocks).Execute,
		prerouter.NewMetrics(app, prerouter.MetricsOpts{}).Execute,
		prerouter.NewRequestLog(app).Execute,
	).Handler()
}
