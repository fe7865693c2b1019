package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/dmarych/web_shop/internal/service/search"
	"github.com/dmarych/web_shop/internal/util"
)

type SearchHandler struct {
	Service *search.Service
}

func (h *SearchHandler) Search(c echo.Context) error {
	if h.Service == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "search is not configured"})
	}

	q := c.QueryParam("q")
	if q == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "query parameter q is required"})
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	from, size := util.Calculate(page, size)

	total, products, err := h.Service.Search(c.Request().Context(), q, from, size)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"total": total, "products": products})
}
