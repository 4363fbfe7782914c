package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/wilhg/actionskills/internal/config"
	"github.com/wilhg/actionskills/internal/httpapi"
	"github.com/wilhg/actionskills/internal/logging"
	"github.com/wilhg/actionskills/pkg/actiongroup"
	"github.com/wilhg/actionskills/pkg/agent"
	"github.com/wilhg/actionskills/pkg/agent/tools"
	"github.com/wilhg/actionskills/pkg/amadeus"
	"github.com/wilhg/actionskills/pkg/metrics"
	skillotel "github.com/wilhg/actionskills/pkg/otel"
	"github.com/wilhg/actionskills/pkg/store/sqlstore"
)

// app holds the process-wide collaborators every command shares.
type app struct {
	cfg        config.Config
	log        *logrus.Logger
	journal    *sqlstore.Store
	dispatcher *actiongroup.Dispatcher
	shutdown   func(context.Context) error
}

// newApp wires config -> logger -> tracing -> upstream clients -> registry -> dispatcher.
// The journal is opened only when a database URL is configured.
func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	a := &app{cfg: cfg, log: logging.New(cfg.Log.Level, cfg.Log.Format)}

	shutdown, err := skillotel.Init(ctx, skillotel.Config{ServiceName: "actionskills", ServiceVersion: version, UseStdout: cfg.OTel.Stdout})
	if err != nil {
		return nil, fmt.Errorf("otel: %w", err)
	}
	a.shutdown = shutdown

	httpClient := skillotel.HTTPClient(cfg.Upstream.Timeout)
	reg := agent.NewRegistry()
	err = tools.RegisterAll(reg, tools.Deps{
		HTTP:         httpClient,
		ViaCEPURL:    cfg.ViaCEP.BaseURL,
		GeocodingURL: cfg.OpenMeteo.GeocodingURL,
		ForecastURL:  cfg.OpenMeteo.ForecastURL,
		Amadeus:      amadeus.New(cfg.Amadeus.BaseURL, httpClient),
		Logger:       a.log,
	})
	if err != nil {
		_ = a.close(ctx)
		return nil, fmt.Errorf("register skills: %w", err)
	}

	opts := []actiongroup.Option{
		actiongroup.WithLogger(a.log),
		actiongroup.WithMetrics(metrics.New()),
		actiongroup.WithAllowedPermissions(cfg.Skills.AllowedPermissions),
		actiongroup.WithDefaultCredentials(map[string]string{
			tools.CredClientID:     cfg.Amadeus.ClientID,
			tools.CredClientSecret: cfg.Amadeus.ClientSecret,
		}),
	}
	if cfg.Database.URL != "" {
		st, err := sqlstore.Open(ctx, cfg.Database.URL)
		if err != nil {
			_ = a.close(ctx)
			return nil, fmt.Errorf("journal: %w", err)
		}
		a.journal = st
		if err := st.Migrate(ctx); err != nil {
			_ = a.close(ctx)
			return nil, fmt.Errorf("journal: %w", err)
		}
		opts = append(opts, actiongroup.WithJournal(st))
	}
	a.dispatcher = actiongroup.New(reg, opts...)
	return a, nil
}

func (a *app) close(ctx context.Context) error {
	var err error
	if a.journal != nil {
		err = a.journal.Close()
	}
	if a.shutdown != nil {
		if serr := a.shutdown(ctx); serr != nil && err == nil {
			err = serr
		}
	}
	return err
}

// buildMux returns the traced HTTP surface.
func buildMux(a *app) http.Handler {
	return skillotel.Handler(httpapi.NewHandler(a.dispatcher), "skills")
}
