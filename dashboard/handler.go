// Package dashboard serves the server-rendered stock pages.
package dashboard

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"stock-dashboard/client"
	"stock-dashboard/logger"
	"stock-dashboard/middleware"
	"stock-dashboard/models"
	"stock-dashboard/stockview"
)

//go:embed templates/*.html
var templatesFS embed.FS

const (
	msgLatestFailed = "Failed to fetch data from the server. Please try again."
	msgTickerFailed = "Failed to fetch stock data. Please try again."
	msgNoData       = "No data for the selected range."
	msgBadRange     = "Invalid date range. Pick both a start and an end, with start before end."
)

// Handler renders dashboard pages from records read through a client.Fetcher.
type Handler struct {
	fetcher client.Fetcher
	seq     *stockview.Sequencer
	loc     *time.Location
	log     logger.Interface
}

func NewHandler(fetcher client.Fetcher, seq *stockview.Sequencer, loc *time.Location, log logger.Interface) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{fetcher: fetcher, seq: seq, loc: loc, log: log}
}

// NewRouter wires the handler, templates and middleware into a gin engine.
func NewRouter(h *Handler, log logger.Interface) (*gin.Engine, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"fixed2":    stockview.Fixed2,
		"localtime": h.localtime,
	}).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.AccessLog(log), gin.Recovery())
	r.SetHTMLTemplate(tmpl)

	r.GET("/", h.Home)
	r.GET("/stocks", h.Latest)
	r.GET("/stocks/:ticker", h.TickerHistory)
	r.GET("/views/:ticker/chart", h.Chart)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return r, nil
}

func (h *Handler) localtime(t time.Time) string {
	return t.In(h.loc).Format("2006-01-02 15:04:05")
}

func (h *Handler) Home(c *gin.Context) {
	c.HTML(http.StatusOK, "home.html", gin.H{"Title": "Stock Dashboard"})
}

// Latest renders the latest record of every ticker.
func (h *Handler) Latest(c *gin.Context) {
	records, err := h.fetcher.Latest(c.Request.Context())
	if err != nil {
		h.log.ErrorContext(c.Request.Context(), err, logger.Field{Key: "page", Value: "latest"})
		c.HTML(http.StatusBadGateway, "error.html", gin.H{"Title": "Stocks", "Message": msgLatestFailed})
		return
	}

	c.HTML(http.StatusOK, "stocks.html", gin.H{
		"Title":   "Stocks",
		"Records": records,
	})
}

type selection struct {
	records []models.StockRecord
	notice  string
	status  int
}

// selectRange applies the start/end query to records. With no bounds at all
// the whole history is shown.
func (h *Handler) selectRange(records []models.StockRecord, startQ, endQ string) selection {
	start, errStart := stockview.ParseBound(startQ, h.loc)
	end, errEnd := stockview.ParseBound(endQ, h.loc)
	if errStart != nil || errEnd != nil {
		return selection{records: []models.StockRecord{}, notice: msgBadRange, status: http.StatusBadRequest}
	}
	if start == nil && end == nil {
		if len(records) == 0 {
			return selection{records: records, notice: msgNoData, status: http.StatusOK}
		}
		return selection{records: records, status: http.StatusOK}
	}

	filtered, err := stockview.FilterRange(records, start, end)
	switch {
	case errors.Is(err, stockview.ErrEmptyResult):
		return selection{records: filtered, notice: msgNoData, status: http.StatusOK}
	case errors.Is(err, stockview.ErrInvalidRange):
		return selection{records: filtered, notice: msgBadRange, status: http.StatusBadRequest}
	}
	return selection{records: filtered, status: http.StatusOK}
}

// TickerHistory renders the history table and close-price chart of a ticker.
func (h *Handler) TickerHistory(c *gin.Context) {
	ticker := strings.ToUpper(c.Param("ticker"))

	records, err := h.fetcher.Ticker(c.Request.Context(), ticker)
	if err != nil {
		h.log.ErrorContext(c.Request.Context(), err, logger.Field{Key: "ticker", Value: ticker})
		c.HTML(http.StatusBadGateway, "error.html", gin.H{"Title": ticker, "Message": msgTickerFailed})
		return
	}

	startQ, endQ := c.Query("start"), c.Query("end")
	sel := h.selectRange(records, startQ, endQ)

	c.HTML(sel.status, "ticker.html", gin.H{
		"Title":  ticker,
		"Ticker": ticker,
		"Start":  startQ,
		"End":    endQ,
		"Notice": sel.notice,
		"Rows":   h.tableRows(sel.records),
		"Chart":  stockview.ProjectChart(sel.records, h.loc),
		"ViewID": uuid.NewString(),
	})
}

// tableRow is a history table line formatted for display. The page template
// and the chart endpoint share it so an in-page range edit can redraw the
// table exactly as the server renders it.
type tableRow struct {
	Datetime string `json:"datetime"`
	Open     string `json:"open"`
	High     string `json:"high"`
	Low      string `json:"low"`
	Close    string `json:"close"`
	Volume   int64  `json:"volume"`
	Diff     string `json:"diff"`
	Up       bool   `json:"up"`
}

func (h *Handler) tableRows(records []models.StockRecord) []tableRow {
	rows := stockview.BuildTable(records)
	out := make([]tableRow, len(rows))
	for i, r := range rows {
		out[i] = tableRow{
			Datetime: h.localtime(r.Datetime),
			Open:     stockview.Fixed2(r.Open),
			High:     stockview.Fixed2(r.High),
			Low:      stockview.Fixed2(r.Low),
			Close:    stockview.Fixed2(r.Close),
			Volume:   r.Volume,
			Diff:     stockview.Fixed2(r.Diff),
			Up:       r.Diff >= 0,
		}
	}
	return out
}

type chartResponse struct {
	Seq    uint64          `json:"seq"`
	Chart  stockview.Chart `json:"chart"`
	Rows   []tableRow      `json:"rows"`
	Notice string          `json:"notice,omitempty"`
}

// Chart returns the chart data for an in-page range edit. Only the latest
// request of a page view gets data; older ones answer 409.
func (h *Handler) Chart(c *gin.Context) {
	ticker := strings.ToUpper(c.Param("ticker"))
	view := c.Query("view")
	if view == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "view is required"})
		return
	}
	clientSeq, _ := strconv.ParseUint(c.Query("seq"), 10, 64)

	ctx, ticket := h.seq.Begin(c.Request.Context(), view)
	records, err := h.fetcher.Ticker(ctx, ticker)
	if !h.seq.Finish(ticket) {
		c.JSON(http.StatusConflict, gin.H{"error": "superseded", "seq": clientSeq})
		return
	}
	if err != nil {
		h.log.ErrorContext(c.Request.Context(), err, logger.Field{Key: "ticker", Value: ticker})
		c.JSON(http.StatusBadGateway, gin.H{"error": msgTickerFailed, "seq": clientSeq})
		return
	}

	sel := h.selectRange(records, c.Query("start"), c.Query("end"))
	if sel.status != http.StatusOK {
		c.JSON(sel.status, gin.H{"error": sel.notice, "seq": clientSeq, "rows": []tableRow{}})
		return
	}

	c.JSON(http.StatusOK, chartResponse{
		Seq:    clientSeq,
		Chart:  stockview.ProjectChart(sel.records, h.loc),
		Rows:   h.tableRows(sel.records),
		Notice: sel.notice,
	})
}
