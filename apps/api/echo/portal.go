package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/convenientedu/portal/core"
	"github.com/convenientedu/portal/core/credit"
	"github.com/convenientedu/portal/core/schedule"
	"github.com/convenientedu/portal/core/session"
	"github.com/convenientedu/portal/core/user"
)

type portalApi struct {
	users     *user.Service
	schedules *schedule.Service
	sessions  *session.Service
	credits   *credit.Service
	scopes    *user.Resolver
}

func registerPortalAPI(g *echo.Group, jwt echo.MiddlewareFunc, api *portalApi) {
	// un-authed endpoints
	g.POST("/users/login", api.userLogin)

	// authed endpoints
	pg := g.Group("/portal", jwt)
	pg.POST("/sessions", api.sessionCreate, roleRequired(user.RoleTeacher, user.RoleManager, user.RoleAdmin))
	pg.POST("/occurrences/materialize", api.occurrenceMaterialize, roleRequired(user.RoleManager, user.RoleAdmin))
	pg.GET("/today", api.todayList)
	pg.POST("/join", api.join)
	pg.POST("/cancel", api.cancel)
	pg.GET("/reports", api.reports)
	pg.GET("/timetable", api.timetableList)
	pg.GET("/people", api.peopleList, roleRequired(user.RoleTeacher, user.RoleParent, user.RoleManager, user.RoleAdmin))
	pg.GET("/credits", api.creditBalance, roleRequired(user.RoleStudent, user.RoleParent))
}

type (
	loginRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}
	loginResponse struct {
		Token string `json:"token"`
	}

	tokenRequest struct {
		Token string `json:"token" validate:"required"`
	}
)

// Handlers

func (api *portalApi) userLogin(ctx echo.Context) error {
	data := new(loginRequest)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := core.Validate.Struct(data); err != nil {
		return err
	}

	claims, err := authenticate(ctx, data.Username, data.Password, api.users)
	if err != nil {
		return err
	}
	token, err := GenerateToken(claims)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, loginResponse{Token: token})
}

func (api *portalApi) sessionCreate(ctx echo.Context) error {
	data := new(schedule.NewSession)
	if err := ctx.Bind(data); err != nil {
		return err
	}

	entry, err := api.schedules.ScheduleSession(ctx.Request().Context(), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, entry)
}

func (api *portalApi) occurrenceMaterialize(ctx echo.Context) error {
	n, err := api.schedules.MaterializeToday(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"materialized": n})
}

func (api *portalApi) todayList(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	sessions, err := api.sessions.TodaySessions(ctx.Request().Context(), actor)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sessions)
}

func (api *portalApi) join(ctx echo.Context) error {
	data := new(tokenRequest)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := core.Validate.Struct(data); err != nil {
		return err
	}

	link, err := api.sessions.Join(ctx.Request().Context(), data.Token)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"link": link})
}

func (api *portalApi) cancel(ctx echo.Context) error {
	data := new(tokenRequest)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := core.Validate.Struct(data); err != nil {
		return err
	}

	if err := api.sessions.Cancel(ctx.Request().Context(), data.Token); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"message": "class cancelled"})
}

func (api *portalApi) reports(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	reports, err := api.sessions.Reports(ctx.Request().Context(), actor)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, reports)
}

func (api *portalApi) timetableList(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	scope, err := api.scopes.Resolve(actor)
	if err != nil {
		return err
	}

	todayOnly := ctx.QueryParam("today") == "true"
	sessions, err := api.schedules.ListFor(ctx.Request().Context(), scope, todayOnly)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sessions)
}

func (api *portalApi) peopleList(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	scope, err := api.scopes.Resolve(actor)
	if err != nil {
		return err
	}

	reqCtx := ctx.Request().Context()
	students, err := scope.Students(reqCtx)
	if err != nil {
		return err
	}
	teachers, err := scope.Teachers(reqCtx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"students": students, "teachers": teachers})
}

func (api *portalApi) creditBalance(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	balance, err := api.credits.BalanceFor(ctx.Request().Context(), actor.ID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"balance": balance})
}
