package echoapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mentormatch/mentormatch/core"
	"github.com/mentormatch/mentormatch/core/session"
	"github.com/mentormatch/mentormatch/dashboard"
)

type statsApi struct {
	svc    *session.Service
	cache  core.Cache
	conf   *core.Config
	logger core.Logger
}

func registerStatsAPI(g *echo.Group, svc *session.Service, cache core.Cache, conf *core.Config, logger core.Logger) {
	api := statsApi{svc: svc, cache: cache, conf: conf, logger: logger}

	g.GET("/users/:id/stats", api.stats)
	g.GET("/users/:id/charts", api.charts)
}

// stats serves the stat fields of the user's whole session list, cached until a session changes.
func (api *statsApi) stats(ctx echo.Context) error {
	userID, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	c := ctx.Request().Context()

	key, err := api.svc.StatsKey(c, userID)
	if err != nil {
		api.logger.Warn(fmt.Sprintf("reading stats generation of user %d: %v", userID, err), err)
	}
	if key != "" {
		if sum, hit := api.cached(c, userID, key); hit {
			return ok(ctx, http.StatusOK, sum)
		}
	}

	sessions, err := api.svc.QueryByUser(c, userID)
	if err != nil {
		return err
	}
	sum := dashboard.ComputeStats(sessions).Summary()
	if key != "" {
		api.store(c, userID, key, sum)
	}
	return ok(ctx, http.StatusOK, sum)
}

func (api *statsApi) cached(c context.Context, userID int, key string) (dashboard.Summary, bool) {
	var sum dashboard.Summary
	b, err := api.cache.Get(c, key)
	if err != nil {
		if err != core.ErrCacheMiss {
			api.logger.Warn(fmt.Sprintf("reading cached stats of user %d: %v", userID, err), err)
		}
		return sum, false
	}
	if err = json.Unmarshal(b, &sum); err != nil {
		api.logger.Warn(fmt.Sprintf("decoding cached stats of user %d: %v", userID, err), err)
		return sum, false
	}
	return sum, true
}

func (api *statsApi) store(c context.Context, userID int, key string, sum dashboard.Summary) {
	b, err := json.Marshal(sum)
	if err == nil {
		err = api.cache.Set(c, key, b, api.conf.Redis.StatsTTL)
	}
	if err != nil {
		api.logger.Warn(fmt.Sprintf("caching stats of user %d: %v", userID, err), err)
	}
}

func (api *statsApi) charts(ctx echo.Context) error {
	userID, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	sessions, err := api.svc.QueryByUser(ctx.Request().Context(), userID)
	if err != nil {
		return err
	}
	sink := dashboard.NewChartJSSink()
	drawSessionCharts(sink, sessions)
	return ok(ctx, http.StatusOK, sink.Charts())
}

func drawSessionCharts(sink dashboard.ChartSink, sessions []session.Session) {
	sink.Draw(dashboard.SessionsChartID, dashboard.SessionsPerMonth(sessions))
	sink.Draw(dashboard.TopicsChartID, dashboard.TopicShare(sessions))
	sink.Draw(dashboard.MentorsChartID, dashboard.MentorRatings(sessions))
}
