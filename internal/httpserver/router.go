package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/maumeum/internal/middleware/auth"
	"github.com/Skotchmaster/maumeum/internal/middleware/csrf"
	"github.com/Skotchmaster/maumeum/pkg/db"
)

type Deps struct {
	Sessions  *SessionHTTP
	Users     *UserHTTP
	Postings  *PostingHTTP
	Community *CommunityHTTP
	Gate      *auth.Gate
	DB        *gorm.DB

	// CSRF is nil when the check is disabled.
	CSRF *csrf.Config
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if err := db.Ping(c.Request().Context(), d.DB); err != nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "db unavailable"})
		}
		return c.NoContent(http.StatusOK)
	})

	api := e.Group("/api")
	if d.CSRF != nil {
		cfg := *d.CSRF
		cfg.SkipPaths = append(cfg.SkipPaths, "/api/login", "/api/session/refresh")
		api.Use(csrf.Middleware(cfg))
	}

	api.POST("/login", d.Sessions.Login)
	api.POST("/logout", d.Sessions.Logout)
	api.GET("/session/refresh", d.Sessions.Refresh)

	api.POST("/users", d.Users.Register)
	api.POST("/users/email/check", d.Users.CheckEmail)

	me := api.Group("/users/me", d.Gate.RequireLogin)
	me.GET("", d.Users.Me)
	me.PATCH("", d.Users.PatchMe)
	me.DELETE("", d.Users.DeleteMe)
	me.POST("/password/check", d.Users.CheckPassword)
	me.GET("/volunteers", d.Postings.ListMine)
	me.GET("/posts", d.Community.ListMine)
	me.GET("/comments", d.Community.ListCommented)

	admin := api.Group("/admin", d.Gate.AdminOnly)
	admin.GET("/users/disabled", d.Users.ListDisabled)
	admin.PATCH("/users/:id/role", d.Users.SetRole)
	admin.GET("/users/:id/reported-times", d.Users.ReportStanding)
	admin.PATCH("/users/:id/reported-times", d.Users.SetReportedTimes)
	admin.GET("/volunteers/reported", d.Postings.ListReported)
	admin.DELETE("/volunteers/:id", d.Postings.DeleteReported)
	admin.GET("/community/reported", d.Community.ListReported)
	admin.DELETE("/community/:id", d.Community.DeleteReported)

	api.GET("/volunteers", d.Postings.List)
	api.GET("/volunteers/search", d.Postings.Search)
	api.GET("/volunteers/:id", d.Postings.Get)
	api.POST("/volunteers", d.Postings.Create, d.Gate.RequireLogin)
	api.PATCH("/volunteers/:id", d.Postings.Update, d.Gate.RequireLogin)
	api.PATCH("/volunteers/:id/status", d.Postings.SetStatus, d.Gate.RequireLogin)
	api.POST("/volunteers/:id/apply", d.Postings.Apply, d.Gate.RequireLogin)
	api.POST("/volunteers/:id/report", d.Postings.Report, d.Gate.RequireLogin)

	api.GET("/community", d.Community.List)
	api.GET("/community/search", d.Community.Search)
	api.GET("/community/:id", d.Community.Get)
	api.POST("/community", d.Community.Create, d.Gate.RequireLogin)
	api.PATCH("/community/:id", d.Community.Update, d.Gate.RequireLogin)
	api.DELETE("/community/:id", d.Community.Delete, d.Gate.RequireLogin)
	api.POST("/community/:id/report", d.Community.Report, d.Gate.RequireLogin)
	api.GET("/community/:id/comments", d.Community.ListComments)
	api.POST("/community/:id/comments", d.Community.CreateComment, d.Gate.RequireLogin)
	api.PATCH("/comments/:id", d.Community.UpdateComment, d.Gate.RequireLogin)
	api.DELETE("/comments/:id", d.Community.DeleteComment, d.Gate.RequireLogin)
}
