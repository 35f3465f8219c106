package echoapi

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/csrf"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mentormatch/mentormatch/core"
	"github.com/mentormatch/mentormatch/core/mentor"
	"github.com/mentormatch/mentormatch/core/review"
	"github.com/mentormatch/mentormatch/core/session"
	"github.com/mentormatch/mentormatch/core/user"
	"github.com/mentormatch/mentormatch/dashboard"
	"github.com/mentormatch/mentormatch/dashboard/notify"
)

var (
	sessionSlots = []string{
		dashboard.NotificationsID,
		dashboard.TotalSessionsID,
		dashboard.TotalHoursID,
		dashboard.AvgRatingID,
		dashboard.MentorsCountID,
		dashboard.SessionsTableBodyID,
		dashboard.SessionsChartID,
		dashboard.TopicsChartID,
		dashboard.MentorsChartID,
		dashboard.MentorsMapID,
	}
	reviewSlots = []string{
		dashboard.NotificationsID,
		dashboard.ReviewsGridID,
	}
)

// csrfMiddleware protects the dashboard forms. Plain HTTP requests skip the TLS-only referer checks.
func csrfMiddleware(conf *core.Config) echo.MiddlewareFunc {
	key := sha256.Sum256([]byte(conf.SecretKey))
	protect := csrf.Protect(key[:], csrf.Secure(!conf.Debug), csrf.Path("/dashboard"))

	return echo.WrapMiddleware(func(next http.Handler) http.Handler {
		h := protect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.TLS == nil {
				r = csrf.PlaintextHTTPRequest(r)
			}
			h.ServeHTTP(w, r)
		})
	})
}

type (
	dashboardPages struct {
		conf       *core.Config
		logger     core.Logger
		tmpl       *template.Template
		hub        *notify.Hub
		users      *user.Service
		sessions   *session.Service
		reviews    *review.Service
		mentors    *mentor.Service
		validate   *validator.Validate
		translator ut.Translator
	}

	// page is the data of a dashboard page template.
	page struct {
		Title     string
		AppName   string
		UserID    int
		UserName  string
		Doc       *dashboard.Document
		Query     string
		Sort      string
		Charts    []dashboard.ChartConfig
		Markers   template.JS
		Mentors   []mentor.Mentor
		FormField template.HTML
	}
)

func registerDashboard(g *echo.Group, srv *Server) {
	p := dashboardPages{
		conf:       srv.deps.Conf,
		logger:     srv.deps.Logger,
		tmpl:       srv.deps.Templates,
		hub:        srv.deps.Hub,
		users:      srv.deps.UserSvc,
		sessions:   srv.deps.SessionSvc,
		reviews:    srv.deps.ReviewSvc,
		mentors:    srv.deps.MentorSvc,
		validate:   srv.deps.Validate,
		translator: srv.deps.Translator,
	}

	ug := g.Group("/:userID")
	ug.GET("/sessions", p.sessionsPage)
	ug.POST("/sessions/:id/:action", p.sessionAction)
	ug.GET("/reviews", p.reviewsPage)
	ug.POST("/reviews", p.addReview)
	ug.POST("/reviews/:id/:action", p.reviewAction)
	ug.POST("/favorites", p.addFavorite)
}

func formField(ctx echo.Context, conf *core.Config) template.HTML {
	if !conf.Server.CSRF {
		return ""
	}
	return csrf.TemplateField(ctx.Request())
}

func (p *dashboardPages) newPage(ctx echo.Context, title string, userID int, slots []string) page {
	var params viewParams
	params.Bind(ctx)

	pg := page{
		Title:     title,
		AppName:   p.conf.AppName,
		UserID:    userID,
		Doc:       dashboard.NewDocument(p.logger, slots...),
		Query:     params.Query,
		Sort:      params.Sort,
		FormField: formField(ctx, p.conf),
	}
	if usr, err := p.users.GetByID(ctx.Request().Context(), userID); err == nil {
		pg.UserName = usr.Name
	}
	return pg
}

func (p *dashboardPages) render(ctx echo.Context, name string, pg page) error {
	var notes bytes.Buffer
	if err := p.tmpl.ExecuteTemplate(&notes, "notifications", p.hub.Active(pg.UserID)); err != nil {
		return errors.Wrap(err, "rendering notifications")
	}
	pg.Doc.Set(dashboard.NotificationsID, template.HTML(notes.String()))

	var buf bytes.Buffer
	if err := p.tmpl.ExecuteTemplate(&buf, name, pg); err != nil {
		return errors.Wrapf(err, "rendering %s page", name)
	}
	return ctx.HTMLBlob(http.StatusOK, buf.Bytes())
}

func (p *dashboardPages) redirect(ctx echo.Context, userID int, to string) error {
	return ctx.Redirect(http.StatusSeeOther, fmt.Sprintf("/dashboard/%d/%s", userID, to))
}

// Sessions

func (p *dashboardPages) sessionController(ctx echo.Context, doc *dashboard.Document, userID int) (*dashboard.Controller[session.Session], error) {
	ctrl := dashboard.NewController(doc, dashboard.Options[session.Session]{
		Noun:      "Session",
		ListSlot:  dashboard.SessionsTableBodyID,
		Fragment:  "sessionRows",
		StatSlots: true,
		Store: dashboard.StoreFuncs[session.Session]{
			UpdateFunc: func(c context.Context, s session.Session) (session.Session, error) {
				return p.sessions.Update(c, s.ID, session.UpdateSession{
					Topic:    s.Topic,
					Duration: core.Float(s.Duration),
					Rating:   core.Int(s.RecordRating()),
				})
			},
			DeleteFunc: p.sessions.Delete,
		},
		Notifier:  p.hub.For(userID),
		Templates: p.tmpl,
		Logger:    p.logger,
		ActionURL: func(action string, id int) string {
			return fmt.Sprintf("/dashboard/%d/sessions/%d/%s", userID, id, action)
		},
		FormField: formField(ctx, p.conf),
	})

	loader := func(c context.Context) ([]session.Session, error) { return p.sessions.QueryByUser(c, userID) }
	if err := ctrl.Load(ctx.Request().Context(), loader); err != nil {
		return nil, err
	}
	ctrl.Handle("edit", "Save", func(c context.Context, s session.Session) error {
		duration, _ := strconv.ParseFloat(ctx.FormValue("duration"), 64)
		rating, _ := strconv.Atoi(ctx.FormValue("rating"))
		data := session.UpdateSession{
			Topic:    ctx.FormValue("topic"),
			Duration: core.Float(duration),
			Rating:   core.Int(rating),
		}
		if err := data.Validate(p.validate); err != nil {
			p.hub.For(userID).Emit(formError(err, p.translator), notify.Error)
			return err
		}
		_, err := ctrl.Edit(c, data.Apply(s))
		return err
	})
	ctrl.Handle("delete", "Delete", func(c context.Context, s session.Session) error {
		return ctrl.Delete(c, s.ID)
	})
	return ctrl, nil
}

func (p *dashboardPages) sessionsPage(ctx echo.Context) error {
	userID, err := pathID(ctx, "userID")
	if err != nil {
		return err
	}
	pg := p.newPage(ctx, "Sessions", userID, sessionSlots)

	ctrl, err := p.sessionController(ctx, pg.Doc, userID)
	if err != nil {
		return err
	}
	if err = ctrl.Render(ctrl.View(pg.Query, pg.Sort)); err != nil {
		return err
	}

	charts := dashboard.NewChartJSSink()
	drawSessionCharts(charts, ctrl.Records())
	if pg.Charts, err = charts.Configs(); err != nil {
		return errors.Wrap(err, "encoding charts")
	}

	if pg.Mentors, err = p.mentors.Query(ctx.Request().Context()); err != nil {
		return err
	}
	markers := dashboard.NewMapSink()
	markers.Place(dashboard.MentorsMapID, dashboard.Markers(pg.Mentors))
	if pg.Markers, err = markers.JSON(dashboard.MentorsMapID); err != nil {
		return errors.Wrap(err, "encoding markers")
	}

	return p.render(ctx, "sessions", pg)
}

func (p *dashboardPages) sessionAction(ctx echo.Context) error {
	userID, id, err := actionTarget(ctx)
	if err != nil {
		return err
	}
	ctrl, err := p.sessionController(ctx, dashboard.NewDocument(nil), userID)
	if err != nil {
		return err
	}
	p.dispatched(userID, ctrl.Dispatch(ctx.Request().Context(), ctx.Param("action"), id))
	return p.redirect(ctx, userID, "sessions")
}

// Reviews

func (p *dashboardPages) reviewController(ctx echo.Context, doc *dashboard.Document, userID int) (*dashboard.Controller[review.Review], error) {
	ctrl := dashboard.NewController(doc, dashboard.Options[review.Review]{
		Noun:     "Review",
		ListSlot: dashboard.ReviewsGridID,
		Fragment: "reviewCards",
		Store: dashboard.StoreFuncs[review.Review]{
			CreateFunc: func(c context.Context, r review.Review) (review.Review, error) {
				return p.reviews.Create(c, review.NewReview{
					UserID:     core.Int(r.UserID),
					MentorName: r.MentorName,
					Rating:     core.Int(r.Rating),
					Title:      r.Title,
					Text:       r.Text,
					Date:       r.Date,
				})
			},
			UpdateFunc: func(c context.Context, r review.Review) (review.Review, error) {
				return p.reviews.Update(c, r.ID, review.UpdateReview{Rating: core.Int(r.Rating), Title: r.Title, Text: r.Text})
			},
			DeleteFunc: p.reviews.Delete,
		},
		Notifier:  p.hub.For(userID),
		Templates: p.tmpl,
		Logger:    p.logger,
		ActionURL: func(action string, id int) string {
			return fmt.Sprintf("/dashboard/%d/reviews/%d/%s", userID, id, action)
		},
		FormField: formField(ctx, p.conf),
	})

	loader := func(c context.Context) ([]review.Review, error) { return p.reviews.QueryByUser(c, userID) }
	if err := ctrl.Load(ctx.Request().Context(), loader); err != nil {
		return nil, err
	}
	ctrl.Handle("edit", "Save", func(c context.Context, r review.Review) error {
		rating, _ := strconv.Atoi(ctx.FormValue("rating"))
		data := review.UpdateReview{
			Rating: core.Int(rating),
			Title:  ctx.FormValue("title"),
			Text:   ctx.FormValue("text"),
		}
		if err := data.Validate(p.validate); err != nil {
			p.hub.For(userID).Emit(formError(err, p.translator), notify.Error)
			return err
		}
		_, err := ctrl.Edit(c, data.Apply(r))
		return err
	})
	ctrl.Handle("delete", "Delete", func(c context.Context, r review.Review) error {
		return ctrl.Delete(c, r.ID)
	})
	return ctrl, nil
}

func (p *dashboardPages) reviewsPage(ctx echo.Context) error {
	userID, err := pathID(ctx, "userID")
	if err != nil {
		return err
	}
	pg := p.newPage(ctx, "Reviews", userID, reviewSlots)

	ctrl, err := p.reviewController(ctx, pg.Doc, userID)
	if err != nil {
		return err
	}
	if err = ctrl.Render(ctrl.View(pg.Query, pg.Sort)); err != nil {
		return err
	}
	return p.render(ctx, "reviews", pg)
}

func (p *dashboardPages) reviewAction(ctx echo.Context) error {
	userID, id, err := actionTarget(ctx)
	if err != nil {
		return err
	}
	ctrl, err := p.reviewController(ctx, dashboard.NewDocument(nil), userID)
	if err != nil {
		return err
	}
	p.dispatched(userID, ctrl.Dispatch(ctx.Request().Context(), ctx.Param("action"), id))
	return p.redirect(ctx, userID, "reviews")
}

// addReview handles the add-review form.
func (p *dashboardPages) addReview(ctx echo.Context) error {
	userID, err := pathID(ctx, "userID")
	if err != nil {
		return err
	}
	center := p.hub.For(userID)

	rating, _ := strconv.Atoi(ctx.FormValue("rating"))
	data := review.NewReview{
		UserID:     core.Int(userID),
		MentorName: ctx.FormValue("mentor_name"),
		Rating:     core.Int(rating),
		Title:      ctx.FormValue("title"),
		Text:       ctx.FormValue("text"),
		Date:       core.Today(),
	}
	if err = data.Validate(p.validate); err != nil {
		center.Emit(formError(err, p.translator), notify.Error)
		return p.redirect(ctx, userID, "reviews")
	}

	ctrl, err := p.reviewController(ctx, dashboard.NewDocument(nil), userID)
	if err != nil {
		return err
	}
	// failures are reported by the controller
	_, _ = ctrl.Add(ctx.Request().Context(), review.Review{
		UserID:     int(data.UserID),
		MentorName: data.MentorName,
		Rating:     int(data.Rating),
		Title:      data.Title,
		Text:       data.Text,
		Date:       data.Date,
	})
	return p.redirect(ctx, userID, "reviews")
}

// addFavorite handles the drop of a mentor card on the favourites zone.
func (p *dashboardPages) addFavorite(ctx echo.Context) error {
	userID, err := pathID(ctx, "userID")
	if err != nil {
		return err
	}
	center := p.hub.For(userID)

	mentorID, _ := strconv.Atoi(ctx.FormValue("mentor_id"))
	m, err := p.mentors.AddFavorite(ctx.Request().Context(), userID, mentor.NewFavorite{MentorID: core.Int(mentorID)})
	if err != nil {
		p.logger.Warn(fmt.Sprintf("adding favourite of user %d: %v", userID, err), err)
		center.Emit(fmt.Sprintf("adding favourite failed: %v", errors.Cause(err)), notify.Error)
	} else {
		center.Emit(m.Name+" added to favourites", notify.Success)
	}
	return p.redirect(ctx, userID, "sessions")
}

func actionTarget(ctx echo.Context) (userID, id int, err error) {
	if userID, err = pathID(ctx, "userID"); err != nil {
		return 0, 0, err
	}
	if id, err = pathID(ctx, "id"); err != nil {
		return 0, 0, err
	}
	return userID, id, nil
}

// dispatched notifies the dispatch errors the controller did not already report.
func (p *dashboardPages) dispatched(userID int, err error) {
	if err == nil {
		return
	}
	if cause := errors.Cause(err); cause == dashboard.ErrUnknownAction || cause == dashboard.ErrRecordNotFound {
		p.hub.For(userID).Emit(err.Error(), notify.Error)
	}
}

// formError is the notification text of a rejected form.
func formError(err error, translator ut.Translator) string {
	switch vErr := errors.Cause(err).(type) {
	case validator.ValidationErrors:
		return joinFields(core.TranslateValidationErrors(vErr, translator))
	case *core.ValidationError:
		return vErr.Error()
	}
	return err.Error()
}
