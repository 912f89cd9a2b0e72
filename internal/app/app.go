package app

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/shandysiswandi/goflightmesh/internal/pkg/pkgconfig"
	"github.com/shandysiswandi/goflightmesh/internal/pkg/pkglog"
	"github.com/shandysiswandi/goflightmesh/internal/pkg/pkgrouter"
	"github.com/shandysiswandi/goflightmesh/internal/pkg/pkguid"
)

type App struct {
	config     pkgconfig.Config
	uuid       pkguid.StringID
	router     *pkgrouter.Router
	registry   *prometheus.Registry
	httpServer *http.Server
	pingers    map[string]func(context.Context) error
	closerFn   map[string]func(context.Context) error
}

func New() *App {
	app := &App{}
	pkglog.InitLogging()
	app.initConfig()
	app.initHTTPServer()
	app.initModules()
	app.initObservability()
	app.initClosers()
	return app
}
