// Package pages renders the doctor profile and the admin directory as
// server-side HTML on top of the view models.
package pages

import (
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/duynhne/doctor-service/internal/core/domain"
	"github.com/duynhne/doctor-service/internal/view"
	"github.com/duynhne/doctor-service/middleware"
)

//go:embed templates/*.html
var templates embed.FS

const (
	ProfilePath   = view.DirectoryRoute + "/doctor/:id"
	DirectoryPath = "/admin/features/manage-doctors"
)

// Templates parses the embedded page templates.
func Templates() *template.Template {
	return template.Must(template.New("pages").ParseFS(templates, "templates/*.html"))
}

// Handler serves the HTML pages
type Handler struct {
	source   view.DoctorSource
	pageSize int
}

func NewHandler(svc DoctorService, pageSize int) *Handler {
	if pageSize <= 0 {
		pageSize = view.DefaultPageSize
	}
	return &Handler{source: serviceSource{svc: svc}, pageSize: pageSize}
}

// Register mounts the pages. The engine must have Templates() installed.
func (h *Handler) Register(r gin.IRouter, adminGuard gin.HandlerFunc) {
	r.GET(ProfilePath, h.Profile)

	admin := r.Group(DirectoryPath, adminGuard)
	admin.GET("", h.Directory)
	admin.POST("/:id/delete", h.Delete)
}

// Profile renders one doctor, or the not-found message.
func (h *Handler) Profile(c *gin.Context) {
	logger := middleware.GetLoggerFromGinContext(c)

	var uri doctorURI
	if err := c.ShouldBindUri(&uri); err != nil {
		logger.Warn("Invalid doctor id", zap.Error(err))
		c.HTML(http.StatusNotFound, "profile.html", gin.H{"NotFound": view.MsgDoctorNotFound})
		return
	}

	profile := view.NewProfile(h.source, logger)
	profile.Load(c.Request.Context(), uri.ID)

	card := profile.Card()
	if card == nil {
		c.HTML(http.StatusNotFound, "profile.html", gin.H{"NotFound": view.MsgDoctorNotFound})
		return
	}
	c.HTML(http.StatusOK, "profile.html", gin.H{"Card": card})
}

// doctorURI binds the :id path segment.
type doctorURI struct {
	ID string `uri:"id" binding:"required,max=128"`
}

// directoryQuery binds the directory page query string.
type directoryQuery struct {
	Q      string `form:"q" binding:"max=256"`
	Page   int    `form:"page" binding:"omitempty,min=1"`
	Notice string `form:"notice" binding:"omitempty,oneof=removed failed"`
}

// deleteForm carries the list position to return to after a delete.
type deleteForm struct {
	Q    string `form:"q" binding:"max=256"`
	Page int    `form:"page" binding:"omitempty,min=1"`
}

type directoryPage struct {
	Query    string
	Doctors  []domain.Doctor
	Pager    view.Pager
	Empty    string
	Notice   *view.Notification
	PrevLink string
	NextLink string
	Links    []pageLink
}

type pageLink struct {
	Number int
	Href   string
	Active bool
}

// Directory renders one page of the admin list. Search failures render the
// empty state.
func (h *Handler) Directory(c *gin.Context) {
	logger := middleware.GetLoggerFromGinContext(c)

	var req directoryQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		logger.Warn("Invalid directory query", zap.Error(err))
		c.String(http.StatusBadRequest, "Invalid request")
		return
	}
	query := req.Q

	doctors, err := h.source.SearchDoctors(c.Request.Context(), query)
	if err != nil {
		logger.Error("Error searching doctors", zap.String("query", query), zap.Error(err))
		doctors = nil
	}

	pager := view.NewPager(len(doctors), h.pageSize, req.Page)

	data := directoryPage{
		Query:   query,
		Doctors: view.PageOf(doctors, pager),
		Pager:   pager,
		Notice:  noticeFor(req.Notice),
	}
	if len(doctors) == 0 {
		data.Empty = view.MsgNoDoctors
	}
	if pager.HasPrev() {
		data.PrevLink = directoryLink(query, pager.Page-1, "")
	}
	if pager.HasNext() {
		data.NextLink = directoryLink(query, pager.Page+1, "")
	}
	for _, n := range pager.Pages() {
		data.Links = append(data.Links, pageLink{Number: n, Href: directoryLink(query, n, ""), Active: n == pager.Page})
	}

	c.HTML(http.StatusOK, "directory.html", data)
}

// Delete removes a doctor and redirects back to the list with a notice.
func (h *Handler) Delete(c *gin.Context) {
	logger := middleware.GetLoggerFromGinContext(c)

	var uri doctorURI
	var form deleteForm
	if err := c.ShouldBindUri(&uri); err != nil {
		logger.Warn("Invalid doctor id", zap.Error(err))
		c.String(http.StatusBadRequest, "Invalid request")
		return
	}
	if err := c.ShouldBind(&form); err != nil {
		logger.Warn("Invalid delete form", zap.Error(err))
		c.String(http.StatusBadRequest, "Invalid request")
		return
	}
	id := uri.ID

	notice := "removed"
	if err := h.source.DeleteDoctor(c.Request.Context(), id); err != nil {
		logger.Error("Failed to remove doctor", zap.String("doctor_id", id), zap.Error(err))
		notice = "failed"
	} else {
		logger.Info("Doctor removed", zap.String("doctor_id", id))
	}

	c.Redirect(http.StatusSeeOther, directoryLink(form.Q, form.Page, notice))
}

func noticeFor(code string) *view.Notification {
	switch code {
	case "removed":
		return &view.Notification{Level: view.LevelSuccess, Message: view.MsgRemoved}
	case "failed":
		return &view.Notification{Level: view.LevelError, Message: view.MsgRemoveFailed}
	}
	return nil
}

func directoryLink(query string, page int, notice string) string {
	v := url.Values{}
	if query != "" {
		v.Set("q", query)
	}
	if page > 1 {
		v.Set("page", strconv.Itoa(page))
	}
	if notice != "" {
		v.Set("notice", notice)
	}
	if len(v) == 0 {
		return DirectoryPath
	}
	return DirectoryPath + "?" + v.Encode()
}
