package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mentormatch/mentormatch/core/session"
	"github.com/mentormatch/mentormatch/dashboard"
)

type sessionApi struct {
	svc      *session.Service
	validate *validator.Validate
}

func registerSessionAPI(g *echo.Group, svc *session.Service, validate *validator.Validate) {
	api := sessionApi{svc: svc, validate: validate}

	g.GET("/users/:id/sessions", api.query)
	g.POST("/sessions", api.create)
	g.PUT("/sessions/:id", api.update)
	g.DELETE("/sessions/:id", api.destroy)
}

func (api *sessionApi) query(ctx echo.Context) error {
	userID, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	var params viewParams
	params.Bind(ctx)

	sessions, err := api.svc.QueryByUser(ctx.Request().Context(), userID)
	if err != nil {
		return err
	}
	view := dashboard.SortRecords(dashboard.FilterRecords(sessions, params.Query), params.Sort)
	return ok(ctx, http.StatusOK, view)
}

func (api *sessionApi) create(ctx echo.Context) error {
	var data session.NewSession
	if err := bind(ctx, &data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	s, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating session")
	}
	return ok(ctx, http.StatusCreated, s)
}

func (api *sessionApi) update(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	var data session.UpdateSession
	if err = bind(ctx, &data); err != nil {
		return err
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	s, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating session")
	}
	return ok(ctx, http.StatusOK, s)
}

func (api *sessionApi) destroy(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting session")
	}
	return ok(ctx, http.StatusOK, Deleted{ID: id, Deleted: true})
}

type Deleted struct {
	ID      int  `json:"id"`
	Deleted bool `json:"deleted"`
}
