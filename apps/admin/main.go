package main

import (
	"log"
	"os"

	"github.com/jmoiron/sqlx"

	"github.com/convenientedu/portal/core"
	"github.com/convenientedu/portal/core/credit"
	"github.com/convenientedu/portal/core/user"
	"github.com/convenientedu/portal/storage/database"
	sqlxrepos "github.com/convenientedu/portal/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	// set up DB
	errAndDie(database.CreateIfNotExist(conf))
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()
	errAndDie(db.Ping())
	errAndDie(database.InitGoose())

	sdb := sqlx.NewDb(db, conf.Database.Engine)

	// start CLI
	cli := commandLine{
		db:        db,
		usrSvc:    user.NewService(sqlxrepos.NewUserRepository(sdb)),
		creditSvc: credit.NewService(sqlxrepos.NewCreditRepository(sdb)),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
