package api

import (
	"net/http"
	"strconv"

	"github.com/Domenick1991/carebooking/internal/hospitalapi"
	"github.com/Domenick1991/carebooking/internal/service/catalog"
	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	service catalog.CatalogUseCase
}

func NewCatalogHandler(service catalog.CatalogUseCase) *CatalogHandler {
	return &CatalogHandler{service: service}
}

func (h *CatalogHandler) Register(router *gin.RouterGroup) {
	router.GET("/hospitals", h.hospitals)
	router.GET("/hospitals/:id/departments", h.departments)
	router.GET("/departments/:id/doctors", h.doctors)
}

func pageFromQuery(c *gin.Context) (hospitalapi.PageRequest, bool) {
	var page hospitalapi.PageRequest
	for name, dst := range map[string]*int{"page": &page.Page, "page_size": &page.PageSize} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			badRequest(c, "invalid "+name)
			return page, false
		}
		*dst = n
	}
	return page, true
}

func (h *CatalogHandler) hospitals(c *gin.Context) {
	page, ok := pageFromQuery(c)
	if !ok {
		return
	}
	out, err := h.service.Hospitals(c.Request.Context(), page)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *CatalogHandler) departments(c *gin.Context) {
	page, ok := pageFromQuery(c)
	if !ok {
		return
	}
	out, err := h.service.Departments(c.Request.Context(), c.Param("id"), page)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *CatalogHandler) doctors(c *gin.Context) {
	page, ok := pageFromQuery(c)
	if !ok {
		return
	}
	out, err := h.service.Doctors(c.Request.Context(), c.Param("id"), c.Query("hospital_id"), page)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
