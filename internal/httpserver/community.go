package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/maumeum/internal/middleware/auth"
	"github.com/Skotchmaster/maumeum/internal/service"
	"github.com/Skotchmaster/maumeum/internal/transport"
	"github.com/Skotchmaster/maumeum/internal/util"
	"github.com/Skotchmaster/maumeum/pkg/logging"
)

// CommunityHTTP serves the community board and its comment threads.
type CommunityHTTP struct {
	Posts    *service.CommunityService
	Comments *service.CommentService
}

func (h *CommunityHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "community.list")

	page, offset, limit := pageParams(c)
	res, err := h.Posts.List(ctx, c.QueryParam("category"), offset, limit)
	if err != nil {
		return fail(l, "community_list_failed", err, http.StatusUnauthorized)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data": res.Items,
		"meta": util.NewMeta(page, offset, limit, res.Total),
	})
}

func (h *CommunityHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "community.search")

	page, offset, limit := pageParams(c)
	res, err := h.Posts.Search(ctx, c.QueryParam("q"), c.QueryParam("category"), offset, limit)
	if err != nil {
		return fail(l, "community_search_failed", err, http.StatusUnauthorized)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data": res.Items,
		"meta": util.NewMeta(page, offset, limit, res.Total),
	})
}

func (h *CommunityHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "community.get")

	thread, err := h.Posts.Get(ctx, c.Param("id"))
	if err != nil {
		return fail(l, "community_get_failed", err, http.StatusUnauthorized)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": thread})
}

func (h *CommunityHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "community.create")

	id, err := identity(c)
	if err != nil {
		return err
	}
	var req transport.CommunityPostRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("community_create_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	p, err := h.Posts.Create(ctx, id.UserID, req)
	if err != nil {
		return fail(l, "community_create_failed", err, http.StatusUnauthorized)
	}
	return c.JSON(http.StatusCreated, echo.Map{"data": p})
}

func (h *CommunityHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "community.update")

	id, err := identity(c)
	if err != nil {
		return err
	}
	var req transport.CommunityPostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	p, err := h.Posts.Update(ctx, id.UserID, c.Param("id"), req)
	if err != nil {
		return fail(l, "community_update_failed", err, http.StatusUnauthorized)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": p})
}

func (h *CommunityHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "community.delete")

	id, err := identity(c)
	if err != nil {
		return err
	}
	if err := h.Posts.Delete(ctx, id.UserID, id.Role, c.Param("id")); err != nil {
		return fail(l, "community_delete_failed", err, http.StatusUnauthorized)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CommunityHTTP) Report(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "community.report")

	id, err := identity(c)
	if err != nil {
		return err
	}
	if err := h.Posts.Report(ctx, id.UserID, c.Param("id")); err != nil {
		return fail(l, "community_report_failed", err, http.StatusUnauthorized)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": c.Param("id"), "isReported": true})
}

func (h *CommunityHTTP) ListMine(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "community.list_mine")

	id, err := identity(c)
	if err != nil {
		return err
	}
	posts, err := h.Posts.ListByUser(ctx, id.UserID)
	if err != nil {
		return fail(l, "community_list_failed", err, http.StatusUnauthorized)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": posts})
}

func (h *CommunityHTTP) ListCommented(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "community.list_commented")

	id, err := identity(c)
	if err != nil {
		return err
	}
	posts, err := h.Comments.CommentedPosts(ctx, id.UserID)
	if err != nil {
		return fail(l, "community_list_failed", err, http.StatusUnauthorized)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": posts})
}

func (h *CommunityHTTP) ListReported(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.list_reported_community")

	page, offset, limit := pageParams(c)
	res, err := h.Posts.ListReported(ctx, offset, limit)
	if err != nil {
		return fail(l, "community_list_failed", err, http.StatusUnauthorized)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data": res.Items,
		"meta": util.NewMeta(page, offset, limit, res.Total),
	})
}

func (h *CommunityHTTP) DeleteReported(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.delete_reported_community")

	admin, _ := auth.IdentityFrom(c)
	if err := h.Posts.DeleteReported(ctx, admin.UserID, c.Param("id")); err != nil {
		return fail(l, "community_delete_failed", err, http.StatusUnauthorized)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CommunityHTTP) CreateComment(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "comment.create")

	id, err := identity(c)
	if err != nil {
		return err
	}
	var req transport.CommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	comment, err := h.Comments.Create(ctx, id.UserID, c.Param("id"), req.Content)
	if err != nil {
		return fail(l, "comment_create_failed", err, http.StatusUnauthorized)
	}
	return c.JSON(http.StatusCreated, echo.Map{"data": comment})
}

func (h *CommunityHTTP) ListComments(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "comment.list")

	comments, err := h.Comments.ListByPost(ctx, c.Param("id"))
	if err != nil {
		return fail(l, "comment_list_failed", err, http.StatusUnauthorized)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": comments})
}

func (h *CommunityHTTP) UpdateComment(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "comment.update")

	id, err := identity(c)
	if err != nil {
		return err
	}
	var req transport.CommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	comment, err := h.Comments.Update(ctx, id.UserID, c.Param("id"), req.Content)
	if err != nil {
		return fail(l, "comment_update_failed", err, http.StatusUnauthorized)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": comment})
}

func (h *CommunityHTTP) DeleteComment(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "comment.delete")

	id, err := identity(c)
	if err != nil {
		return err
	}
	if err := h.Comments.Delete(ctx, id.UserID, id.Role, c.Param("id")); err != nil {
		return fail(l, "comment_delete_failed", err, http.StatusUnauthorized)
	}
	return c.NoContent(http.StatusNoContent)
}
