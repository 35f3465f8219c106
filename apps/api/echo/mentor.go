package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mentormatch/mentormatch/core/mentor"
	"github.com/mentormatch/mentormatch/dashboard"
)

type mentorApi struct {
	svc      *mentor.Service
	validate *validator.Validate
}

func registerMentorAPI(g *echo.Group, svc *mentor.Service, validate *validator.Validate) {
	api := mentorApi{svc: svc, validate: validate}

	g.GET("/mentors", api.query)
	g.GET("/mentors/markers", api.markers)
	g.GET("/users/:id/favorites", api.favorites)
	g.POST("/users/:id/favorites", api.addFavorite)
}

func (api *mentorApi) query(ctx echo.Context) error {
	mentors, err := api.svc.Query(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ok(ctx, http.StatusOK, mentors)
}

func (api *mentorApi) markers(ctx echo.Context) error {
	mentors, err := api.svc.Query(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ok(ctx, http.StatusOK, dashboard.Markers(mentors))
}

func (api *mentorApi) favorites(ctx echo.Context) error {
	userID, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	mentors, err := api.svc.Favorites(ctx.Request().Context(), userID)
	if err != nil {
		return err
	}
	return ok(ctx, http.StatusOK, mentors)
}

func (api *mentorApi) addFavorite(ctx echo.Context) error {
	userID, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	var data mentor.NewFavorite
	if err = bind(ctx, &data); err != nil {
		return err
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	m, err := api.svc.AddFavorite(ctx.Request().Context(), userID, data)
	if err != nil {
		return errors.Wrap(err, "adding favourite")
	}
	return ok(ctx, http.StatusCreated, m)
}
