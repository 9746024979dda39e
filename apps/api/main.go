package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/convenientedu/portal/apps/api/echo"
	"github.com/convenientedu/portal/core"
	"github.com/convenientedu/portal/core/credit"
	"github.com/convenientedu/portal/core/schedule"
	"github.com/convenientedu/portal/core/session"
	"github.com/convenientedu/portal/core/user"
	emailsvc "github.com/convenientedu/portal/services/email"
	logsvc "github.com/convenientedu/portal/services/logger"
	"github.com/convenientedu/portal/storage/database"
	sqlxrepos "github.com/convenientedu/portal/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			logger.Error(fmt.Sprintf("closing database: %v", err), err)
		}
	}()
	sdb := sqlx.NewDb(db, conf.Database.Engine)

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	usrSvc := user.NewService(sqlxrepos.NewUserRepository(sdb))
	schedSvc := schedule.NewService(sqlxrepos.NewScheduleRepository(sdb), logger)
	sessionSvc := session.NewService(
		sqlxrepos.NewSessionRepository(sdb),
		session.NewTokenService(conf.SecretKey, conf.AppName),
		usrSvc, mailSvc, logger, conf,
	)
	creditSvc := credit.NewService(sqlxrepos.NewCreditRepository(sdb))
	scopes := user.NewResolver(sqlxrepos.NewScopeRepository(sdb))

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:        conf,
		Logger:      logger,
		UserSvc:     usrSvc,
		ScheduleSvc: schedSvc,
		SessionSvc:  sessionSvc,
		CreditSvc:   creditSvc,
		Scopes:      scopes,
	})

	// materialize today's sessions at start and on every tick
	materializerCtx, stopMaterializer := context.WithCancel(context.Background())
	defer stopMaterializer()
	go schedSvc.RunMaterializer(materializerCtx, conf.MaterializeInterval)

	go server.Start()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))
		stopMaterializer()

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sql.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
