package echoapi

import (
	"fmt"
	"net/http"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/mentormatch/mentormatch/core"
	"github.com/mentormatch/mentormatch/core/mentor"
	"github.com/mentormatch/mentormatch/core/review"
	"github.com/mentormatch/mentormatch/core/session"
	"github.com/mentormatch/mentormatch/core/user"
	"github.com/mentormatch/mentormatch/dashboard"
)

// Envelope wraps every /api response.
type Envelope struct {
	Success bool              `json:"success"`
	Data    interface{}       `json:"data,omitempty"`
	Error   string            `json:"error,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func ok(ctx echo.Context, code int, data interface{}) error {
	return ctx.JSON(code, Envelope{Success: true, Data: data})
}

func isNotFound(err error) bool {
	switch errors.Cause(err) {
	case session.ErrNotFound, review.ErrNotFound, user.ErrNotFound, mentor.ErrNotFound, dashboard.ErrRecordNotFound:
		return true
	}
	return false
}

func fieldsMap(flds []core.FieldError) map[string]string {
	if len(flds) == 0 {
		return nil
	}
	out := make(map[string]string, len(flds))
	for _, f := range flds {
		out[f.Field] = f.Error
	}
	return out
}

func joinFields(flds []core.FieldError) string {
	parts := make([]string, 0, len(flds))
	for _, f := range flds {
		parts = append(parts, f.Field+": "+f.Error)
	}
	return strings.Join(parts, "; ")
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that answers with an error Envelope.
// Unless conf.Server.StrictErrors is set, every failure raised by a handler is a 400 carrying the raw message.
// In strict mode validation errors are 400, missing objects 404 and anything else 500.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(
	conf *core.Config,
	logger core.Logger,
	translator ut.Translator,
	signalShutdown func(),
) echo.HTTPErrorHandler {
	strict := conf.Server.StrictErrors

	return func(err error, ctx echo.Context) {
		var (
			code = http.StatusBadRequest
			resp = Envelope{Error: err.Error()}
		)

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			code = origErr.Code
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
			}
			if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
				origErr = herr
			}
			resp.Error = fmt.Sprint(origErr.Message)
		case validator.ValidationErrors:
			flds := core.TranslateValidationErrors(origErr, translator)
			resp.Error = joinFields(flds)
			resp.Fields = fieldsMap(flds)
		case *core.ValidationError:
			resp.Error = origErr.Error()
			resp.Fields = fieldsMap(origErr.Fields)
		default:
			switch {
			case isNotFound(origErr):
				resp.Error = origErr.Error()
				if strict {
					code = http.StatusNotFound
				}
			case origErr == user.ErrAuthenticationFailed:
				resp.Error = origErr.Error()
			case origErr == user.ErrAccountDeactivated:
				resp.Error = origErr.Error()
				if strict {
					code = http.StatusForbidden
				}
			default: // any other error is a server error
				msg := http.StatusText(http.StatusInternalServerError)
				logger.Error(msg, errors.Wrap(err, msg), contextUserOrAnon(ctx))
				if strict {
					code = http.StatusInternalServerError
					if !conf.Debug {
						resp.Error = msg
					}
				}

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, resp)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
