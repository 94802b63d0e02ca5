package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/alnah/papyrus"
)

type chartRequest struct {
	Data    *papyrus.ChartData   `json:"data"`
	Type    papyrus.ChartType    `json:"type"`
	Options papyrus.ChartOptions `json:"options"`
}

type diagramRequest struct {
	Description string              `json:"description"`
	Type        papyrus.DiagramType `json:"type"`
}

type chartDataRequest struct {
	Text string `json:"text"`
}

func joinTypes[T ~string](types []T) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = string(t)
	}
	return strings.Join(parts, ", ")
}

func (a *api) generateChart(w http.ResponseWriter, r *http.Request) {
	var req chartRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	var details []fieldError
	if req.Data == nil {
		details = append(details, fieldError{Field: "data", Message: "Chart data is required"})
	}
	if !req.Type.Valid() {
		details = append(details, fieldError{
			Field:   "type",
			Message: fmt.Sprintf("Chart type must be one of: %s", joinTypes(papyrus.ChartTypes)),
		})
	}
	if len(details) > 0 {
		writeValidation(w, details...)
		return
	}

	chart, err := a.svc.charts.GenerateChart(r.Context(), req.Type, *req.Data, req.Options)
	if err != nil {
		a.failure(w, r, "generate chart", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"chart":   chart,
	})
}

// generateDiagram asks the model for mermaid code, then writes the page
// that renders it.
func (a *api) generateDiagram(w http.ResponseWriter, r *http.Request) {
	var req diagramRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Type == "" {
		req.Type = papyrus.DiagramFlowchart
	}
	var details []fieldError
	if blank(req.Description) {
		details = append(details, fieldError{Field: "description", Message: "Diagram description is required"})
	}
	if !req.Type.Valid() {
		details = append(details, fieldError{
			Field:   "type",
			Message: fmt.Sprintf("Diagram type must be one of: %s", joinTypes(papyrus.DiagramTypes)),
		})
	}
	if len(details) > 0 {
		writeValidation(w, details...)
		return
	}

	code, err := a.svc.analyzer.GenerateDiagramCode(r.Context(), req.Description, req.Type)
	if err != nil {
		a.failure(w, r, "generate diagram", err)
		return
	}
	diagram, err := a.svc.charts.GenerateDiagram(r.Context(), code)
	if err != nil {
		a.failure(w, r, "generate diagram", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"diagram":      diagram,
		"mermaid_code": code,
	})
}

func (a *api) extractChartData(w http.ResponseWriter, r *http.Request) {
	var req chartDataRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if blank(req.Text) {
		writeValidation(w, fieldError{Field: "text", Message: "Text content is required"})
		return
	}

	data, err := papyrus.ExtractChartData(r.Context(), a.svc.analyzer, req.Text)
	if err != nil {
		a.failure(w, r, "extract chart data", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"extracted_data": data,
	})
}
