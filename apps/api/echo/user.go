package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mentormatch/mentormatch/core/user"
)

type userApi struct {
	svc      *user.Service
	validate *validator.Validate
	srv      *Server
}

func registerUserAPI(g *echo.Group, jwt echo.MiddlewareFunc, srv *Server) {
	api := userApi{
		svc:      srv.deps.UserSvc,
		validate: srv.deps.Validate,
		srv:      srv,
	}

	// un-authed endpoints
	g.POST("/register", api.register)
	g.POST("/login", api.login)

	// authed endpoints
	g.GET("/me", api.me, jwt)
}

// Handlers

func (api *userApi) register(ctx echo.Context) error {
	var data user.NewUser
	if err := bind(ctx, &data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.svc.Register(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "registering user")
	}
	return ok(ctx, http.StatusCreated, usr)
}

func (api *userApi) login(ctx echo.Context) error {
	var data user.Credentials
	if err := bind(ctx, &data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.svc.Authenticate(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}
	conf := api.srv.deps.Conf
	token, err := GenerateToken(GetUserClaims(usr, conf), conf)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ok(ctx, http.StatusOK, LoginResponse{Token: token, User: usr})
}

func (api *userApi) me(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return err
	}
	return ok(ctx, http.StatusOK, usr)
}

type LoginResponse struct {
	Token string    `json:"token"`
	User  user.User `json:"user"`
}
