package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/davidromeo/tradeblocks-sub006/internal/domain/models"
	"github.com/davidromeo/tradeblocks-sub006/internal/service/ratelimit"
	"github.com/davidromeo/tradeblocks-sub006/internal/usecase"
	xhttp "github.com/davidromeo/tradeblocks-sub006/pkg/http"
	xlogger "github.com/davidromeo/tradeblocks-sub006/pkg/logger"
)

// Rate limits for the write endpoints. Imports and syncs do real work
// against the store, so a runaway client cannot be allowed to queue them.
const (
	writeBurst     = 5
	writePerSecond = 1
)

// PipelineHandler exposes the import, sync, enrichment and query
// operations over HTTP.
type PipelineHandler struct {
	logger   *xlogger.Logger
	importer *usecase.Importer
	syncer   *usecase.BlockSyncer
	enricher *usecase.Enricher
	queries  *usecase.QueryService
	limiter  *ratelimit.Limiter
}

func NewPipelineHandler(
	logger *xlogger.Logger,
	importer *usecase.Importer,
	syncer *usecase.BlockSyncer,
	enricher *usecase.Enricher,
	queries *usecase.QueryService,
	limiter *ratelimit.Limiter,
) *PipelineHandler {
	return &PipelineHandler{
		logger:   logger,
		importer: importer,
		syncer:   syncer,
		enricher: enricher,
		queries:  queries,
		limiter:  limiter,
	}
}

func (h *PipelineHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)
	e.GET("/api/logs", h.Logs)

	g := e.Group("/api/v1")
	g.POST("/import/file", h.ImportFile, h.writeLimit)
	g.POST("/import/db", h.ImportDB, h.writeLimit)
	g.POST("/import/clickhouse", h.ImportClickHouse, h.writeLimit)
	g.POST("/sync", h.SyncAll, h.writeLimit)
	g.POST("/sync/:blockId", h.SyncBlock, h.writeLimit)
	g.POST("/enrich/:ticker", h.Enrich, h.writeLimit)
	g.POST("/detect", h.Detect)
	g.GET("/query/entry", h.QueryEntry)
	g.GET("/query/outcome", h.QueryOutcome)
	g.GET("/checkpoints", h.Checkpoints)
}

func (h *PipelineHandler) writeLimit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if h.limiter != nil && !h.limiter.Allow(c.RealIP(), writeBurst, writePerSecond) {
			return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
		}
		return next(c)
	}
}

func (h *PipelineHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

// Logs serves the aggregated error entries buffered by the logger.
func (h *PipelineHandler) Logs(c echo.Context) error {
	logs := h.logger.CollectedLogs()
	if limit := xhttp.ParseIntDefault(c.QueryParam("limit"), 0); limit > 0 && limit < len(logs) {
		logs = logs[:limit]
	}
	return xhttp.SuccessResponse(c, logs)
}

func (h *PipelineHandler) ImportFile(c echo.Context) error {
	req := &models.FileImportRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.importer.ImportFile(c.Request().Context(), *req)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidMapping) {
			return xhttp.BadRequestResponse(c, err.Error())
		}
		h.logger.Error("file import failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *PipelineHandler) ImportDB(c echo.Context) error {
	req := &models.DBImportRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.importer.ImportDB(c.Request().Context(), *req)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidMapping) {
			return xhttp.BadRequestResponse(c, err.Error())
		}
		h.logger.Error("db import failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *PipelineHandler) ImportClickHouse(c echo.Context) error {
	req := &models.ClickHouseImportRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.importer.ImportClickHouse(c.Request().Context(), *req)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidMapping) {
			return xhttp.BadRequestResponse(c, err.Error())
		}
		h.logger.Error("clickhouse import failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *PipelineHandler) SyncAll(c echo.Context) error {
	res, err := h.syncer.SyncAll(c.Request().Context())
	if err != nil {
		h.logger.Error("block sync failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *PipelineHandler) SyncBlock(c echo.Context) error {
	blockID := c.Param("blockId")
	res, err := h.syncer.SyncBlock(c.Request().Context(), blockID)
	if err != nil {
		h.logger.Error("block sync failed", xlogger.String("block_id", blockID), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *PipelineHandler) Enrich(c echo.Context) error {
	req := &models.EnrichRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	ticker := c.Param("ticker")
	res, err := h.enricher.EnrichTicker(c.Request().Context(), ticker, req.ForceFull)
	if err != nil {
		h.logger.Error("enrichment failed", xlogger.String("ticker", ticker), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *PipelineHandler) Detect(c echo.Context) error {
	req := &models.DetectRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.importer.Detect(c.Request().Context(), req.FilePath)
	if err != nil {
		h.logger.Error("detect failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *PipelineHandler) QueryEntry(c echo.Context) error {
	req := &models.EntryQueryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	rows, err := h.queries.EntryRows(c.Request().Context(), *req)
	if err != nil {
		h.logger.Error("entry query failed", xlogger.String("ticker", req.Ticker), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, rows)
}

func (h *PipelineHandler) QueryOutcome(c echo.Context) error {
	req := &models.EntryQueryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	rows, err := h.queries.OutcomeRows(c.Request().Context(), *req)
	if err != nil {
		h.logger.Error("outcome query failed", xlogger.String("ticker", req.Ticker), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, rows)
}

func (h *PipelineHandler) Checkpoints(c echo.Context) error {
	req := &models.CheckpointsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	times, err := h.queries.Checkpoints(*req)
	if err != nil {
		return xhttp.BadRequestResponse(c, err.Error())
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"source": req.Source,
		"clock":  req.Clock,
		"known":  times,
	})
}
