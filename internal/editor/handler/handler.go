package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/resumeforge/resumeforge/backend/go-services/internal/editor/service"
	"github.com/resumeforge/resumeforge/backend/go-services/internal/resume"
	"github.com/resumeforge/resumeforge/backend/go-services/internal/tokens"
	"github.com/resumeforge/resumeforge/backend/go-services/pkg/logger"
	"github.com/resumeforge/resumeforge/backend/go-services/pkg/middleware"
)

// Options configures the session routes. Zero values disable the matching
// feature: no token secret means sessions are open to anyone holding the id.
type Options struct {
	TokenSecret string
	TokenTTL    time.Duration
	// Limiter guards the endpoints that call the text-understanding service.
	Limiter gin.HandlerFunc
}

func RegisterSessionRoutes(r *gin.Engine, svc service.Service, opts Options) {
	h := &sessionHandler{svc: svc, opts: opts}
	limit := opts.Limiter
	if limit == nil {
		limit = func(c *gin.Context) { c.Next() }
	}

	r.POST("/api/sessions", h.create)
	r.POST("/api/sessions/import", limit, h.importText)

	var guards []gin.HandlerFunc
	if opts.TokenSecret != "" {
		guards = append(guards, middleware.SessionAuth(tokens.NewVerifier(opts.TokenSecret)))
	}
	s := r.Group("/api/sessions/:id", guards...)
	s.GET("", h.get)
	s.DELETE("", h.delete)
	s.PUT("/document", h.set)
	s.POST("/undo", h.undo)
	s.POST("/redo", h.redo)
	s.POST("/rewrite", limit, h.rewrite)
	s.POST("/rewrites", h.begin)
	s.POST("/rewrites/:ticket", h.commit)
	s.GET("/snapshot", h.snapshot)
	s.POST("/export", h.export)
}

type sessionHandler struct {
	svc  service.Service
	opts Options
}

// writeError maps service errors onto HTTP responses.
func writeError(c *gin.Context, err error) {
	var verr *resume.ValidationError
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document", "details": verr.Problems})
	case errors.Is(err, service.ErrInvalidDocument), errors.Is(err, service.ErrInvalidTarget):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrRewriterUnavailable), errors.Is(err, service.ErrExportUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrRewriteFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": "rewrite failed", "details": err.Error()})
	default:
		logger.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// created answers a new session, with an access token when tokens are enabled.
func (h *sessionHandler) created(c *gin.Context, st *service.State) {
	out := gin.H{"id": st.ID, "state": st}
	if h.opts.TokenSecret != "" {
		tok, err := tokens.GenerateSessionToken(h.opts.TokenSecret, st.ID, h.opts.TokenTTL)
		if err != nil {
			writeError(c, err)
			return
		}
		out["token"] = tok
	}
	c.JSON(http.StatusCreated, out)
}

func (h *sessionHandler) create(c *gin.Context) {
	var req struct {
		Document *resume.Document `json:"document"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	st, err := h.svc.Create(c.Request.Context(), req.Document)
	if err != nil {
		writeError(c, err)
		return
	}
	h.created(c, st)
}

func (h *sessionHandler) importText(c *gin.Context) {
	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	st, err := h.svc.Import(c.Request.Context(), req.Text)
	if err != nil {
		writeError(c, err)
		return
	}
	h.created(c, st)
}

func (h *sessionHandler) get(c *gin.Context) {
	st, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *sessionHandler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *sessionHandler) set(c *gin.Context) {
	var doc resume.Document
	if err := c.ShouldBindJSON(&doc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	st, err := h.svc.Set(c.Request.Context(), c.Param("id"), doc)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *sessionHandler) undo(c *gin.Context) {
	st, err := h.svc.Undo(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *sessionHandler) redo(c *gin.Context) {
	st, err := h.svc.Redo(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *sessionHandler) rewrite(c *gin.Context) {
	var req service.RewriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.svc.Rewrite(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *sessionHandler) begin(c *gin.Context) {
	t, err := h.svc.BeginRewrite(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *sessionHandler) commit(c *gin.Context) {
	ticket, err := strconv.ParseInt(c.Param("ticket"), 10, 64)
	if err != nil || ticket <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ticket"})
		return
	}
	var req struct {
		Document *resume.Document `json:"document" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.svc.CommitRewrite(c.Request.Context(), c.Param("id"), ticket, *req.Document)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *sessionHandler) snapshot(c *gin.Context) {
	doc, err := h.svc.Snapshot(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *sessionHandler) export(c *gin.Context) {
	pub, err := h.svc.Export(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pub)
}
