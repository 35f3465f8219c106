package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mentormatch/mentormatch/core/review"
	"github.com/mentormatch/mentormatch/dashboard"
)

type reviewApi struct {
	svc      *review.Service
	validate *validator.Validate
}

func registerReviewAPI(g *echo.Group, svc *review.Service, validate *validator.Validate) {
	api := reviewApi{svc: svc, validate: validate}

	g.GET("/users/:id/reviews", api.query)
	g.POST("/reviews", api.create)
	g.PUT("/reviews/:id", api.update)
	g.DELETE("/reviews/:id", api.destroy)
}

func (api *reviewApi) query(ctx echo.Context) error {
	userID, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	var params viewParams
	params.Bind(ctx)

	reviews, err := api.svc.QueryByUser(ctx.Request().Context(), userID)
	if err != nil {
		return err
	}
	return ok(ctx, http.StatusOK, dashboard.SortRecords(dashboard.FilterRecords(reviews, params.Query), params.Sort))
}

func (api *reviewApi) create(ctx echo.Context) error {
	var data review.NewReview
	if err := bind(ctx, &data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	r, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating review")
	}
	return ok(ctx, http.StatusCreated, r)
}

func (api *reviewApi) update(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	var data review.UpdateReview
	if err = bind(ctx, &data); err != nil {
		return err
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	r, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating review")
	}
	return ok(ctx, http.StatusOK, r)
}

func (api *reviewApi) destroy(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting review")
	}
	return ok(ctx, http.StatusOK, Deleted{ID: id, Deleted: true})
}
