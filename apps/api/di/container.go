// Package di builds the API dependency graph with dig.
package di

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/mentormatch/mentormatch/apps/api/echo"
	"github.com/mentormatch/mentormatch/core"
	"github.com/mentormatch/mentormatch/core/mentor"
	"github.com/mentormatch/mentormatch/core/review"
	"github.com/mentormatch/mentormatch/core/session"
	"github.com/mentormatch/mentormatch/core/user"
	"github.com/mentormatch/mentormatch/dashboard"
	"github.com/mentormatch/mentormatch/dashboard/notify"
	emailsvc "github.com/mentormatch/mentormatch/services/email"
	"github.com/mentormatch/mentormatch/services/events"
	logsvc "github.com/mentormatch/mentormatch/services/logger"
	"github.com/mentormatch/mentormatch/storage/cache"
	"github.com/mentormatch/mentormatch/storage/database"
	inmemdb "github.com/mentormatch/mentormatch/storage/database/inmem"
	sqlxrepos "github.com/mentormatch/mentormatch/storage/database/sqlx"
)

const dbLoggerName = "dbLogger"

type (
	// App is what the API process runs.
	App struct {
		dig.In

		Conf     *core.Config
		Logger   core.Logger
		DBLogger core.Logger `name:"dbLogger"`
		Server   *echoapi.Server
		// Closers release the resources of the app, in order.
		Closers []io.Closer
	}

	DBLoggerParam struct {
		dig.In
		Logger core.Logger `name:"dbLogger"`
	}

	Storage struct {
		dig.Out

		Users    user.Repository
		Mentors  mentor.Repository
		Sessions session.Repository
		Reviews  review.Repository
		Closer   io.Closer `name:"storageCloser"`
	}

	cacheOut struct {
		dig.Out
		Cache  core.Cache
		Closer io.Closer `name:"cacheCloser"`
	}

	eventsOut struct {
		dig.Out
		Events core.EventPublisher
		Closer io.Closer `name:"eventsCloser"`
	}

	hubOut struct {
		dig.Out
		Hub    *notify.Hub
		Closer io.Closer `name:"hubCloser"`
	}

	closerParams struct {
		dig.In
		Storage io.Closer `name:"storageCloser"`
		Cache   io.Closer `name:"cacheCloser"`
		Events  io.Closer `name:"eventsCloser"`
		Hub     io.Closer `name:"hubCloser"`
	}

	serverParams struct {
		dig.In

		Conf       *core.Config
		Logger     core.Logger
		UserSvc    *user.Service
		SessionSvc *session.Service
		ReviewSvc  *review.Service
		MentorSvc  *mentor.Service
		Validate   *validator.Validate
		Translator ut.Translator
		Cache      core.Cache
		Hub        *notify.Hub
		Templates  *template.Template
	}
)

type closerFunc func() error

func (fn closerFunc) Close() error { return fn() }

func newLogger(conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)
	logger.Enable(!(conf.Debug || conf.TestMode))
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)
	logger.Enable(!(conf.Debug || conf.TestMode))
	return logger
}

// newStorage opens the configured engine and returns its repositories.
func newStorage(conf *core.Config, loggerParam DBLoggerParam) (Storage, error) {
	if conf.Database.Engine == database.EngineInMem {
		db := inmemdb.Open()
		return Storage{
			Users:    inmemdb.NewUserRepository(db),
			Mentors:  inmemdb.NewMentorRepository(db),
			Sessions: inmemdb.NewSessionRepository(db),
			Reviews:  inmemdb.NewReviewRepository(db),
			Closer:   closerFunc(func() error { return nil }),
		}, nil
	}

	if err := database.CreateIfNotExist(conf); err != nil {
		return Storage{}, err
	}
	db, err := database.Open(conf)
	if err != nil {
		return Storage{}, err
	}
	if err = database.Migrate(db, conf.Database.Engine); err != nil {
		_ = db.Close()
		return Storage{}, err
	}
	loggerParam.Logger.Info(fmt.Sprintf("connected to %s database", conf.Database.Engine))

	return Storage{
		Users:    sqlxrepos.NewUserRepository(db),
		Mentors:  sqlxrepos.NewMentorRepository(db),
		Sessions: sqlxrepos.NewSessionRepository(db),
		Reviews:  sqlxrepos.NewReviewRepository(db),
		Closer: closerFunc(func() error {
			if err := db.Close(); err != nil {
				loggerParam.Logger.Error(fmt.Sprintf("closing database: %v", err), err)
				return err
			}
			return nil
		}),
	}, nil
}

func newCache(conf *core.Config) (cacheOut, error) {
	c, closeFn, err := cache.New(context.Background(), conf)
	if err != nil {
		return cacheOut{}, errors.Wrap(err, "connecting to redis")
	}
	return cacheOut{Cache: c, Closer: closerFunc(closeFn)}, nil
}

func newEvents(conf *core.Config, logger core.Logger) eventsOut {
	pub, closeFn := events.New(conf, logger)
	return eventsOut{Events: pub, Closer: closerFunc(closeFn)}
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug || conf.TestMode {
		return emailsvc.NewConsoleService(conf)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newHub(conf *core.Config) hubOut {
	hub := notify.NewHub(conf.Server.NotificationDelay, notify.DefaultTransition)
	return hubOut{Hub: hub, Closer: closerFunc(func() error { hub.Close(); return nil })}
}

// newClosers lists the closers in release order. The database goes last.
func newClosers(p closerParams) []io.Closer {
	return []io.Closer{p.Hub, p.Events, p.Cache, p.Storage}
}

func newValidate(translator ut.Translator, logger core.Logger) *validator.Validate {
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	user.LoadCommonPasswords(logger)
	return validate
}

func mentorFinder(repo mentor.Repository) session.MentorFinder { return repo }

func newServer(p serverParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:       p.Conf,
		Logger:     p.Logger,
		UserSvc:    p.UserSvc,
		SessionSvc: p.SessionSvc,
		ReviewSvc:  p.ReviewSvc,
		MentorSvc:  p.MentorSvc,
		Validate:   p.Validate,
		Translator: p.Translator,
		Cache:      p.Cache,
		Hub:        p.Hub,
		Templates:  p.Templates,
	})
}

// New returns the dependency injection dig.Container of the API, built on conf.
func New(conf *core.Config) (*dig.Container, error) {
	c := dig.New()

	providers := []struct {
		ctor interface{}
		opts []dig.ProvideOption
	}{
		{ctor: func() *core.Config { return conf }},
		{ctor: newLogger},
		{ctor: newDBLogger, opts: []dig.ProvideOption{dig.Name(dbLoggerName)}},
		{ctor: newStorage},
		{ctor: newCache},
		{ctor: newEvents},
		{ctor: newEmailService},
		{ctor: newHub},
		{ctor: core.NewTranslator},
		{ctor: newValidate},
		{ctor: dashboard.ParseTemplates},
		{ctor: mentorFinder},
		{ctor: user.NewService},
		{ctor: session.NewService},
		{ctor: review.NewService},
		{ctor: mentor.NewService},
		{ctor: newServer},
		{ctor: newClosers},
	}
	for _, p := range providers {
		if err := c.Provide(p.ctor, p.opts...); err != nil {
			return nil, errors.Wrap(err, "failed to provide dependency")
		}
	}
	return c, nil
}

// Close runs the closers of app in order.
func (app App) Close() {
	for _, c := range app.Closers {
		if err := c.Close(); err != nil {
			app.Logger.Error(fmt.Sprintf("releasing resources: %v", err), err)
		}
	}
}
