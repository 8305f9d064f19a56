// Package server exposes the research agent over HTTP: run submission,
// live progress streams, and report downloads.
package server

import (
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/scourbot/scour/config"
	"github.com/scourbot/scour/internal/agent"
	"github.com/scourbot/scour/internal/artifact"
	"github.com/scourbot/scour/internal/artifact/registry"
	"github.com/scourbot/scour/internal/report"
	"github.com/scourbot/scour/internal/report/markdown"
	"github.com/scourbot/scour/internal/session"
	"github.com/scourbot/scour/provider"
	"github.com/scourbot/scour/tools/web_fetch"
	"github.com/scourbot/scour/tools/web_search"
)

func Run(cfg *config.Config, addr string) error {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	// Unified HTTP error handler with structured JSON and logging
	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type"},
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(200, "ok") })
	if cfg.Telemetry.Enabled {
		e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	}

	// Top-level DI: one pipeline instance shared by HTTP and scheduler.
	manager, reg, err := BuildManager(cfg)
	if err != nil {
		return err
	}

	rh := &ResearchHandler{Manager: manager, Registry: reg}
	rh.Register(e.Group("/api"))

	sched := &Scheduler{Manager: manager, Schedules: cfg.Schedules, Stop: make(chan struct{})}
	sched.Start()

	if addr == "" {
		addr = cfg.Server.Address
		if addr == "" {
			addr = ":10010"
		}
	}
	log.Printf("listening on %s", addr)
	return e.Start(addr)
}

// BuildManager wires the full research pipeline from configuration:
// oracle, searcher, fetcher, assembler, registry, session manager.
func BuildManager(cfg *config.Config) (*session.Manager, registry.Registry, error) {
	oracle, err := provider.NewProvider(cfg.LLM)
	if err != nil {
		return nil, nil, err
	}
	searcher, err := web_search.NewWebSearcher(web_search.DuckProvider, cfg.Search.Endpoint, cfg.Search.Timeout)
	if err != nil {
		return nil, nil, err
	}
	fetcher, err := web_fetch.NewWebFetcher(web_fetch.FetcherType(cfg.Fetch.Type), web_fetch.Options{
		Attempts:        cfg.Fetch.Attempts,
		Timeout:         cfg.Fetch.Timeout,
		Backoff:         cfg.Fetch.Backoff,
		MinArticleChars: cfg.Fetch.MinArticleChars,
		MaxChars:        cfg.Fetch.MaxChars,
	})
	if err != nil {
		return nil, nil, err
	}
	reg, err := artifact.NewRegistry(artifact.StoreType(cfg.Registry.Type), cfg.Registry.Redis)
	if err != nil {
		return nil, nil, err
	}
	assembler := report.NewAssembler(markdown.Sink{}, cfg.Reports.Dir)
	ag := agent.New(cfg.Agent, oracle, searcher, fetcher, assembler)
	return session.NewManager(ag, reg, cfg.Search.MaxResults), reg, nil
}
