package handler

import (
	"context"
	"database/sql"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/welth/backend/internal/interfaces/http/dto"
)

const healthCheckTimeout = 2 * time.Second

// Pinger checks a backing store is reachable
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PoolStatter is implemented by stores that expose connection pool figures
type PoolStatter interface {
	Stats() (sql.DBStats, error)
}

// HealthHandler answers liveness checks
type HealthHandler struct {
	BaseHandler
	db        Pinger
	version   string
	startTime time.Time
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db Pinger, version string) *HealthHandler {
	return &HealthHandler{
		db:        db,
		version:   version,
		startTime: time.Now(),
	}
}

// HealthResponse is the health check payload
type HealthResponse struct {
	Status    string     `json:"status"`
	Database  string     `json:"database"`
	Version   string     `json:"version"`
	GoVersion string     `json:"goVersion"`
	Uptime    string     `json:"uptime"`
	Pool      *PoolStats `json:"pool,omitempty"`
}

// PoolStats summarises the database connection pool
type PoolStats struct {
	Open    int   `json:"open"`
	InUse   int   `json:"inUse"`
	Idle    int   `json:"idle"`
	Waiting int64 `json:"waitCount"`
}

// Health godoc
// @ID           getHealth
//
//	@Summary		Health check
//	@Description	Ping the database and report connection pool figures
//	@Tags			system
//	@Produce		json
//	@Success		200		{object}	dto.Response{data=HealthResponse}
//	@Failure		503		{object}	dto.Response
//	@Router			/health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:    "ok",
		Database:  "up",
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		_ = c.Error(err)
		resp.Status = "degraded"
		resp.Database = "down"
		c.JSON(http.StatusServiceUnavailable, dto.Response{Success: false, Data: resp})
		return
	}

	if ps, ok := h.db.(PoolStatter); ok {
		if st, err := ps.Stats(); err == nil {
			resp.Pool = &PoolStats{Open: st.OpenConnections, InUse: st.InUse, Idle: st.Idle, Waiting: st.WaitCount}
		}
	}

	h.Success(c, resp)
}
