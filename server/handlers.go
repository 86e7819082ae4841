package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/TFMV/refugeeflow/labels"
	"github.com/TFMV/refugeeflow/models"
	"github.com/TFMV/refugeeflow/render"
	"github.com/TFMV/refugeeflow/view"
)

// ChartQuery carries the dashboard inputs for one chart, from the query
// string on GET or a JSON body on POST. Year only has to be present; an
// out of range year yields an empty chart.
type ChartQuery struct {
	Kind      string   `form:"kind" json:"kind" validate:"required"`
	Year      *int     `form:"year" json:"year" validate:"required"`
	Direction string   `form:"direction" json:"direction" validate:"required"`
	Selection []string `form:"selection" json:"selection" validate:"max=300,dive,required,max=64"`
	Format    string   `form:"format" json:"format" validate:"omitempty,oneof=json svg dot ascii text"`
}

// MapQuery selects the choropleth year
type MapQuery struct {
	Year *int `form:"year" validate:"required"`
}

// LabelEntry pairs an encoder id with its label
type LabelEntry struct {
	ID    int    `json:"id"`
	Label string `json:"label"`
}

// LabelsResponse lists every encoder label in id order
type LabelsResponse struct {
	Count  int          `json:"count"`
	Labels []LabelEntry `json:"labels"`
}

// ErrorResponse is returned for any failed request
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleLabels(c *gin.Context) {
	all := s.selector.Labels.Labels()
	resp := LabelsResponse{Count: len(all), Labels: make([]LabelEntry, len(all))}
	for id, label := range all {
		resp.Labels[id] = LabelEntry{ID: id, Label: label}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleMap(c *gin.Context) {
	var q MapQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "invalid query", err)
		return
	}
	if err := s.validate.Struct(q); err != nil {
		badRequest(c, "invalid query", err)
		return
	}
	c.JSON(http.StatusOK, s.selector.Map(c.Request.Context(), *q.Year))
}

func (s *Server) handleChart(c *gin.Context) {
	log := logger(c, "chart")

	var q ChartQuery
	var err error
	if c.Request.Method == http.MethodPost {
		err = c.ShouldBindJSON(&q)
	} else {
		err = c.ShouldBindQuery(&q)
	}
	if err != nil {
		badRequest(c, "invalid request", err)
		return
	}
	if err := s.validate.Struct(q); err != nil {
		badRequest(c, "invalid request", err)
		return
	}

	kind, ok := models.ParseChartKind(q.Kind)
	if !ok {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unknown chart kind " + q.Kind, Code: "UNKNOWN_KIND"})
		return
	}

	// An unknown direction is passed through; the view answers with an
	// empty chart.
	direction, ok := models.ParseDirection(q.Direction)
	if !ok {
		direction = models.Direction(q.Direction)
	}

	chart, err := s.selector.Select(c.Request.Context(), view.Request{
		Kind:      kind,
		Year:      *q.Year,
		Direction: direction,
		Selection: cleanSelection(q.Selection),
	})
	if err != nil {
		status, code := http.StatusInternalServerError, "CHART_FAILED"
		switch {
		case errors.Is(err, labels.ErrUnknownLabel):
			status, code = http.StatusUnprocessableEntity, "UNKNOWN_LABEL"
		case errors.Is(err, view.ErrUnknownChartKind):
			status, code = http.StatusBadRequest, "UNKNOWN_KIND"
		}
		log.Error("chart failed", "kind", kind, "year", *q.Year, "error", err)
		c.JSON(status, ErrorResponse{Error: err.Error(), Code: code})
		return
	}

	if q.Format == "" {
		c.JSON(http.StatusOK, chart)
		return
	}

	renderer, err := render.GetRenderer(q.Format)
	if err != nil {
		badRequest(c, "unsupported format", err)
		return
	}
	out, err := renderer.Render(chart, render.NewDefaultOptions(q.Format))
	if err != nil {
		if errors.Is(err, render.ErrUnsupportedFormat) {
			badRequest(c, "unsupported format", err)
			return
		}
		log.Error("render failed", "format", q.Format, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Code: "RENDER_FAILED"})
		return
	}
	c.Data(http.StatusOK, renderer.ContentType(), out)
}

// cleanSelection trims the repeated selection values and drops blanks.
// Country names may contain commas, so values are never split.
func cleanSelection(values []string) []models.CountryCode {
	var out []models.CountryCode
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func badRequest(c *gin.Context, msg string, err error) {
	logger(c, c.FullPath()).Warn(msg, "error", err)
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg + ": " + err.Error(), Code: "INVALID_REQUEST"})
}
