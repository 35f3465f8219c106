package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/mentormatch/mentormatch/core"
	"github.com/mentormatch/mentormatch/core/mentor"
	"github.com/mentormatch/mentormatch/core/review"
	"github.com/mentormatch/mentormatch/core/session"
	"github.com/mentormatch/mentormatch/core/user"
	emailsvc "github.com/mentormatch/mentormatch/services/email"
	"github.com/mentormatch/mentormatch/services/events"
	logsvc "github.com/mentormatch/mentormatch/services/logger"
	"github.com/mentormatch/mentormatch/storage/cache"
	"github.com/mentormatch/mentormatch/storage/database"
	sqlxrepos "github.com/mentormatch/mentormatch/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)
	logger.Enable(!(conf.Debug || conf.TestMode))

	if conf.Database.Engine == database.EngineInMem {
		logger.Fatal(fmt.Sprintf("admin: the %q engine is not persistent, use %q or %q", conf.Database.Engine, database.EnginePostgres, database.EngineSQLite))
	}

	// set up DB
	errAndDie(logger, database.CreateIfNotExist(conf))
	db, err := database.Open(conf)
	errAndDie(logger, err)
	defer func() { _ = db.Close() }()
	errAndDie(logger, db.Ping())

	c, closeCache, err := cache.New(context.Background(), conf)
	errAndDie(logger, err)
	defer func() { _ = closeCache() }()

	pub, closeEvents := events.New(conf, logger)
	defer func() { _ = closeEvents() }()

	mentorRepo := sqlxrepos.NewMentorRepository(db)

	// start CLI
	cli := commandLine{
		db:         db,
		engine:     conf.Database.Engine,
		usrSvc:     user.NewService(sqlxrepos.NewUserRepository(db), emailsvc.NewConsoleService(conf), pub, conf),
		mentorSvc:  mentor.NewService(mentorRepo),
		sessionSvc: session.NewService(sqlxrepos.NewSessionRepository(db), mentorRepo, pub, c, logger),
		reviewSvc:  review.NewService(sqlxrepos.NewReviewRepository(db), pub, logger),
	}
	if err = cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("error: %s", err), err)
		}
		os.Exit(1)
	}
}

func errAndDie(logger core.Logger, err error) {
	if err != nil {
		logger.Fatal(err.Error(), err)
	}
}
