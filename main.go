package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	faqx "github.com/vinayakrana/Hotel-Chat-BE/agent/faq"
	identityx "github.com/vinayakrana/Hotel-Chat-BE/agent/identity"
	ledgerx "github.com/vinayakrana/Hotel-Chat-BE/agent/ledger"
	orchestratorx "github.com/vinayakrana/Hotel-Chat-BE/agent/orchestrator"
	toolx "github.com/vinayakrana/Hotel-Chat-BE/agent/tool"
	configx "github.com/vinayakrana/Hotel-Chat-BE/pkg/config"
	_ "github.com/vinayakrana/Hotel-Chat-BE/pkg/logger/autoload"
	openrouterx "github.com/vinayakrana/Hotel-Chat-BE/pkg/openrouter"
	serverx "github.com/vinayakrana/Hotel-Chat-BE/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbCfg := configx.MustNew[ledgerx.DBConfig]("DB")
	db, err := ledgerx.OpenDB(*dbCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer db.Close()

	if err := ledgerx.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("migrate ledger tables")
	}
	if err := ledgerx.SeedRooms(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("seed rooms")
	}
	if err := identityx.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("migrate identities")
	}

	ledger := ledgerx.New(db)
	identities := identityx.NewResolver(db)

	faqCfg := configx.MustNew[faqx.Config]("FAQ")
	faqIndex, err := faqx.NewIndex(*faqCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("load faq index")
	}

	modelCfg := configx.MustNew[openrouterx.Config]("OPENROUTER")
	model, err := openrouterx.NewModel(*modelCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize model client")
	}

	catalog := toolx.New(ledger, faqIndex, nil)

	orchCfg := configx.MustNew[orchestratorx.Config]("ORCHESTRATOR")
	orch, err := orchestratorx.New(model, catalog, *orchCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize orchestrator")
	}

	srvCfg := configx.MustNew[serverx.Config]("SERVER")
	srv, err := serverx.New(*srvCfg, identities, orch, ledger, catalog, modelCfg.Configured())
	if err != nil {
		log.Fatal().Err(err).Msg("initialize http server")
	}

	if err := srv.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("shutdown complete")
}
