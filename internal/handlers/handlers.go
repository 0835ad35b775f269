package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"stockfolio/internal/analytics"
	"stockfolio/internal/store"
)

const requestIDKey = "request_id"

type Handler struct {
	repo   *store.Repo
	engine *analytics.Engine
	log    *logrus.Logger
}

func NewHandler(r *store.Repo, e *analytics.Engine, log *logrus.Logger) *Handler {
	return &Handler{repo: r, engine: e, log: log}
}

// Routes mounts the API on rg.
func (h *Handler) Routes(rg gin.IRouter) {
	rg.Use(RequestID())
	rg.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	rg.GET("/snapshot", h.GetSnapshot)
	rg.GET("/portfolio", h.GetPortfolio)
	rg.GET("/activity", h.GetActivity)
}

// RequestID tags every request with an id, echoed in the X-Request-ID header.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(requestIDKey, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func (h *Handler) logger(c *gin.Context) *logrus.Entry {
	return h.log.WithField(requestIDKey, c.GetString(requestIDKey))
}

func (h *Handler) snapshot(c *gin.Context) (analytics.Snapshot, bool) {
	ctx := c.Request.Context()
	trxs, err := h.repo.Transactions(ctx)
	if err != nil {
		h.logger(c).Errorf("load transactions failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ledger unavailable"})
		return analytics.Snapshot{}, false
	}
	return h.engine.Snapshot(ctx, trxs), true
}

func (h *Handler) GetSnapshot(c *gin.Context) {
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}
	c.PureJSON(http.StatusOK, snap)
}

func (h *Handler) GetPortfolio(c *gin.Context) {
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": snap.Portfolio, "grand_total": snap.GrandTotal, "funds": snap.Funds})
}

func (h *Handler) GetActivity(c *gin.Context) {
	trxs, err := h.repo.Transactions(c.Request.Context())
	if err != nil {
		h.logger(c).Errorf("load transactions failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ledger unavailable"})
		return
	}
	c.PureJSON(http.StatusOK, h.engine.BuildActivity(trxs))
}
