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

type PostingHTTP struct {
	Svc *service.PostingService
}

func pageParams(c echo.Context) (page, offset, limit int) {
	page = util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit = util.Calculate(page, size)
	return page, offset, limit
}

func (h *PostingHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "posting.create")

	id, err := identity(c)
	if err != nil {
		return err
	}
	var req transport.CreatePostingRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("posting_create_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	p, err := h.Svc.Create(ctx, id.UserID, req)
	if err != nil {
		return fail(l, "posting_create_failed", err, http.StatusUnauthorized)
	}
	return c.JSON(http.StatusCreated, echo.Map{"data": p})
}

func (h *PostingHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "posting.get")

	p, err := h.Svc.Get(ctx, c.Param("id"))
	if err != nil {
		return fail(l, "posting_get_failed", err, http.StatusUnauthorized)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": p})
}

func (h *PostingHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "posting.list")

	page, offset, limit := pageParams(c)

	res, err := h.Svc.List(ctx, c.QueryParam("status"), offset, limit)
	if err != nil {
		return fail(l, "posting_list_failed", err, http.StatusUnauthorized)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data": res.Items,
		"meta": util.NewMeta(page, offset, limit, res.Total),
	})
}

func (h *PostingHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "posting.search")

	page, offset, limit := pageParams(c)

	res, err := h.Svc.Search(ctx, c.QueryParam("q"), offset, limit)
	if err != nil {
		return fail(l, "posting_search_failed", err, http.StatusUnauthorized)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data": res.Items,
		"meta": util.NewMeta(page, offset, limit, res.Total),
	})
}

func (h *PostingHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "posting.update")

	id, err := identity(c)
	if err != nil {
		return err
	}
	var req transport.CreatePostingRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("posting_update_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	p, err := h.Svc.Update(ctx, id.UserID, c.Param("id"), req)
	if err != nil {
		return fail(l, "posting_update_failed", err, http.StatusUnauthorized)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": p})
}

func (h *PostingHTTP) Apply(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "posting.apply")

	id, err := identity(c)
	if err != nil {
		return err
	}
	p, err := h.Svc.Apply(ctx, id.UserID, c.Param("id"))
	if err != nil {
		return fail(l, "posting_apply_failed", err, http.StatusUnauthorized)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": p})
}

func (h *PostingHTTP) SetStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "posting.set_status")

	id, err := identity(c)
	if err != nil {
		return err
	}
	var req transport.PostingStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	p, err := h.Svc.SetStatus(ctx, id.UserID, c.Param("id"), req.StatusName)
	if err != nil {
		return fail(l, "posting_status_failed", err, http.StatusUnauthorized)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": p})
}

func (h *PostingHTTP) Report(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "posting.report")

	id, err := identity(c)
	if err != nil {
		return err
	}
	if err := h.Svc.Report(ctx, id.UserID, c.Param("id")); err != nil {
		return fail(l, "posting_report_failed", err, http.StatusUnauthorized)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": c.Param("id"), "isReported": true})
}

func (h *PostingHTTP) ListMine(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "posting.list_mine")

	id, err := identity(c)
	if err != nil {
		return err
	}
	page, offset, limit := pageParams(c)
	res, err := h.Svc.ListMine(ctx, id.UserID, offset, limit)
	if err != nil {
		return fail(l, "posting_list_failed", err, http.StatusUnauthorized)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data": res.Items,
		"meta": util.NewMeta(page, offset, limit, res.Total),
	})
}

func (h *PostingHTTP) ListReported(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.list_reported_postings")

	page, offset, limit := pageParams(c)
	res, err := h.Svc.ListReported(ctx, offset, limit)
	if err != nil {
		return fail(l, "posting_list_failed", err, http.StatusUnauthorized)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data": res.Items,
		"meta": util.NewMeta(page, offset, limit, res.Total),
	})
}

func (h *PostingHTTP) DeleteReported(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.delete_reported_posting")

	admin, _ := auth.IdentityFrom(c)
	if err := h.Svc.DeleteReported(ctx, admin.UserID, c.Param("id")); err != nil {
		return fail(l, "posting_delete_failed", err, http.StatusUnauthorized)
	}
	return c.NoContent(http.StatusNoContent)
}
