package echoapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mentormatch/mentormatch/core"
)

var errPositiveInt = "must be a positive integer"

// bind decodes the request body into i. Malformed payloads are reported as validation errors.
func bind(ctx echo.Context, i interface{}) error {
	err := ctx.Bind(i)
	if err == nil {
		return nil
	}
	if herr, ok := err.(*echo.HTTPError); ok && herr.Code == http.StatusBadRequest {
		msg := fmt.Sprint(herr.Message)
		if nErr, ok := herr.Internal.(*core.NumberError); ok {
			msg = nErr.Error()
		}
		return core.NewValidationError(errors.New(msg))
	}
	return errors.Wrap(err, "binding request")
}

// pathID reads a positive integer path parameter.
func pathID(ctx echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(ctx.Param(name))
	if err != nil || id < 1 {
		return 0, core.NewValidationError(nil, core.FieldError{Field: name, Error: errPositiveInt})
	}
	return id, nil
}

// viewParams are the search and ordering query params of list endpoints.
type viewParams struct {
	Query string
	Sort  string
}

func (p *viewParams) Bind(ctx echo.Context) {
	p.Query = strings.TrimSpace(ctx.QueryParam("q"))
	p.Sort = strings.TrimSpace(ctx.QueryParam("sort"))
}
