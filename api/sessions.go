package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/Domenick1991/carebooking/internal/domain"
	"github.com/Domenick1991/carebooking/internal/service/booking"
	"github.com/Domenick1991/carebooking/internal/wizard"
	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	service booking.BookingUseCase
}

type selectSlotRequest struct {
	DayIndex  *int   `json:"day_index" binding:"required,min=0,max=6"`
	TimeLabel string `json:"time_label" binding:"required"`
}

type shiftWeekRequest struct {
	Weeks int `json:"weeks" binding:"required"`
}

type weekResponse struct {
	Session booking.Wizard `json:"session"`
	Week    wizard.Week    `json:"week"`
}

func NewSessionHandler(service booking.BookingUseCase) *SessionHandler {
	return &SessionHandler{service: service}
}

func (h *SessionHandler) Register(router *gin.RouterGroup) {
	router.GET("/appointments", h.appointments)

	sessions := router.Group("/sessions")
	sessions.POST("", h.start)
	sessions.GET("/:id", h.get)
	sessions.DELETE("/:id", h.discard)
	sessions.PUT("/:id/hospital", h.selectHospital)
	sessions.PUT("/:id/department", h.selectDepartment)
	sessions.PUT("/:id/service", h.selectService)
	sessions.PUT("/:id/doctor", h.selectDoctor)
	sessions.PUT("/:id/slot", h.selectSlot)
	sessions.DELETE("/:id/slot", h.clearSlot)
	sessions.PATCH("/:id/details", h.updateDetails)
	sessions.POST("/:id/reset", h.reset)
	sessions.GET("/:id/week", h.week)
	sessions.POST("/:id/week", h.shiftWeek)
	sessions.GET("/:id/departments", h.departments)
	sessions.GET("/:id/doctors", h.doctors)
	sessions.GET("/:id/progress", h.progress)
	sessions.POST("/:id/submit", h.submit)
	sessions.GET("/:id/confirmation", h.confirmation)
	sessions.POST("/:id/finish", h.finish)
}

// decodeSelection reads a JSON object or null. A non-null selection needs an id.
func decodeSelection[T any](c *gin.Context, idOf func(*T) string) (*T, bool) {
	var v *T
	if err := json.NewDecoder(c.Request.Body).Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			badRequest(c, "request body is required, send null to clear")
		} else {
			badRequest(c, "invalid JSON: "+err.Error())
		}
		return nil, false
	}
	if v != nil && idOf(v) == "" {
		badRequest(c, "id is required")
		return nil, false
	}
	return v, true
}

func (h *SessionHandler) respond(c *gin.Context, w booking.Wizard, err error) {
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

func (h *SessionHandler) start(c *gin.Context) {
	w, err := h.service.Start(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, w)
}

func (h *SessionHandler) get(c *gin.Context) {
	w, err := h.service.Get(c.Request.Context(), c.Param("id"))
	h.respond(c, w, err)
}

func (h *SessionHandler) discard(c *gin.Context) {
	if err := h.service.Discard(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SessionHandler) selectHospital(c *gin.Context) {
	v, ok := decodeSelection(c, func(x *domain.Hospital) string { return x.ID })
	if !ok {
		return
	}
	w, err := h.service.SelectHospital(c.Request.Context(), c.Param("id"), v)
	h.respond(c, w, err)
}

func (h *SessionHandler) selectDepartment(c *gin.Context) {
	v, ok := decodeSelection(c, func(x *domain.Department) string { return x.ID })
	if !ok {
		return
	}
	w, err := h.service.SelectDepartment(c.Request.Context(), c.Param("id"), v)
	h.respond(c, w, err)
}

func (h *SessionHandler) selectService(c *gin.Context) {
	v, ok := decodeSelection(c, func(x *domain.Service) string { return x.ID })
	if !ok {
		return
	}
	w, err := h.service.SelectService(c.Request.Context(), c.Param("id"), v)
	h.respond(c, w, err)
}

func (h *SessionHandler) selectDoctor(c *gin.Context) {
	v, ok := decodeSelection(c, func(x *domain.Doctor) string { return x.ID })
	if !ok {
		return
	}
	w, err := h.service.SelectDoctor(c.Request.Context(), c.Param("id"), v)
	h.respond(c, w, err)
}

func (h *SessionHandler) selectSlot(c *gin.Context) {
	var req selectSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	w, err := h.service.SelectSlot(c.Request.Context(), c.Param("id"), *req.DayIndex, req.TimeLabel)
	h.respond(c, w, err)
}

func (h *SessionHandler) clearSlot(c *gin.Context) {
	w, err := h.service.ClearSlot(c.Request.Context(), c.Param("id"))
	h.respond(c, w, err)
}

func (h *SessionHandler) updateDetails(c *gin.Context) {
	var patch wizard.DetailsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err.Error())
		return
	}
	w, err := h.service.UpdateDetails(c.Request.Context(), c.Param("id"), patch)
	h.respond(c, w, err)
}

func (h *SessionHandler) reset(c *gin.Context) {
	w, err := h.service.Reset(c.Request.Context(), c.Param("id"))
	h.respond(c, w, err)
}

func (h *SessionHandler) week(c *gin.Context) {
	week, err := h.service.Week(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, week)
}

func (h *SessionHandler) shiftWeek(c *gin.Context) {
	var req shiftWeekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "weeks must be a non-zero integer")
		return
	}
	ctx := c.Request.Context()
	w, err := h.service.ShiftWeek(ctx, c.Param("id"), req.Weeks)
	if err != nil {
		writeError(c, err)
		return
	}
	week, err := h.service.Week(ctx, w.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, weekResponse{Session: w, Week: week})
}

func (h *SessionHandler) departments(c *gin.Context) {
	list, err := h.service.Departments(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

func (h *SessionHandler) doctors(c *gin.Context) {
	list, err := h.service.Doctors(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

func (h *SessionHandler) progress(c *gin.Context) {
	var opts wizard.ProgressOptions
	if raw := c.Query("override"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			badRequest(c, "invalid override")
			return
		}
		opts.Override = &v
	}
	if raw := c.Query("complete"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			badRequest(c, "invalid complete")
			return
		}
		opts.ForceComplete = v
	}

	p, err := h.service.Progress(c.Request.Context(), c.Param("id"), c.Query("location"), opts)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *SessionHandler) submit(c *gin.Context) {
	w, err := h.service.Submit(c.Request.Context(), c.Param("id"))
	h.respond(c, w, err)
}

func (h *SessionHandler) confirmation(c *gin.Context) {
	conf, err := h.service.Confirmation(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, conf)
}

func (h *SessionHandler) finish(c *gin.Context) {
	w, err := h.service.Finish(c.Request.Context(), c.Param("id"))
	h.respond(c, w, err)
}

func (h *SessionHandler) appointments(c *gin.Context) {
	list, err := h.service.Appointments(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}
