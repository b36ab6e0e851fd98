package api

import (
	"net/http"

	models "ChainSight/internal/domain/models"
	domrepo "ChainSight/internal/domain/repository"
	"ChainSight/internal/usecase"
	xhttp "ChainSight/pkg/http"
	xlogger "ChainSight/pkg/logger"

	"github.com/labstack/echo/v4"
)

// AnalysisEchoHandler exposes the analysis pipeline, the backtester and the
// snapshot history over HTTP.
type AnalysisEchoHandler struct {
	logger     *xlogger.Logger
	analyzer   *usecase.Analyzer
	backtester *usecase.Backtester
	store      domrepo.SnapshotStore
}

func NewAnalysisEchoHandler(logger *xlogger.Logger, analyzer *usecase.Analyzer, backtester *usecase.Backtester, store domrepo.SnapshotStore) *AnalysisEchoHandler {
	return &AnalysisEchoHandler{logger: logger, analyzer: analyzer, backtester: backtester, store: store}
}

func (h *AnalysisEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/analyze", h.Analyze)
	g.POST("/analyze", h.Analyze)
	g.POST("/backtest", h.Backtest)
	g.GET("/history", h.History)
}

// Analyze runs the pipeline for a symbol. GET fetches the live chain; POST
// additionally accepts a pre-built feature set in the body.
func (h *AnalysisEchoHandler) Analyze(c echo.Context) error {
	req := &models.AnalyzeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.analyzer.AnalyzeSymbol(c.Request().Context(), *req)
	if err != nil {
		h.logger.Error("analyze usecase error", xlogger.String("symbol", req.Symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=60")
	return xhttp.SuccessResponse(c, res)
}

// Backtest replays history for a symbol, either from the snapshot store or
// from snapshots inlined in the request body.
func (h *AnalysisEchoHandler) Backtest(c echo.Context) error {
	req := &models.BacktestRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.backtester.Run(c.Request().Context(), *req)
	if err != nil {
		h.logger.Error("backtest usecase error", xlogger.String("symbol", req.Symbol), xlogger.Error(err))
		if res != nil && res.FailedDay >= 0 {
			// Partial replay: hand back what finished along with the failure.
			return xhttp.DataResponse(c, http.StatusUnprocessableEntity, map[string]interface{}{
				"error":  err.Error(),
				"result": res,
			})
		}
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

// History returns stored day snapshots for a symbol in ascending date order.
func (h *AnalysisEchoHandler) History(c echo.Context) error {
	if h.store == nil {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("no snapshot store configured"))
	}

	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	from, ok := xhttp.ParseTime(req.From)
	if !ok {
		return xhttp.BadRequestResponse(c, "unparseable from date")
	}
	to, ok := xhttp.ParseTime(req.To)
	if !ok {
		return xhttp.BadRequestResponse(c, "unparseable to date")
	}

	snaps, err := h.store.QueryRange(c.Request().Context(), req.Symbol, from, to, req.Limit)
	if err != nil {
		h.logger.Error("history query error", xlogger.String("symbol", req.Symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, snaps, int64(len(snaps)))
}
