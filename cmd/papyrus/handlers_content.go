package main

import (
	"errors"
	"net/http"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"github.com/alnah/papyrus"
)

type analyzeRequest struct {
	Text   string `json:"text"`
	Format string `json:"format"`
}

type enhanceRequest struct {
	Text        string               `json:"text"`
	Suggestions []papyrus.Suggestion `json:"suggestions"`
	Format      string               `json:"format"`
}

// checkText validates the text and format fields shared by the content
// endpoints.
func checkText(text, format string) (papyrus.Format, []fieldError) {
	var details []fieldError
	if blank(text) {
		details = append(details, fieldError{Field: "text", Message: "Text content is required"})
	}
	f, err := papyrus.ParseFormat(format)
	if err != nil {
		details = append(details, fieldError{Field: "format", Message: "Format must be plain, markdown, or html"})
	}
	return f, details
}

func (a *api) analyzeContent(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	format, details := checkText(req.Text, req.Format)
	if len(details) > 0 {
		writeValidation(w, details...)
		return
	}

	analysis, err := a.svc.analyzer.Analyze(r.Context(), req.Text, format)
	if err != nil {
		a.failure(w, r, "analyze content", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"analysis": analysis,
	})
}

func (a *api) enhanceContent(w http.ResponseWriter, r *http.Request) {
	var req enhanceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	format, details := checkText(req.Text, req.Format)
	if req.Suggestions == nil {
		details = append(details, fieldError{Field: "suggestions", Message: "Suggestions must be an array"})
	}
	if len(details) > 0 {
		writeValidation(w, details...)
		return
	}

	enhanced, err := a.svc.analyzer.Enhance(r.Context(), req.Text, req.Suggestions, format)
	if err != nil {
		a.failure(w, r, "enhance content", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"enhanced_content": enhanced,
		"original_length":  utf8.RuneCountInString(req.Text),
		"enhanced_length":  utf8.RuneCountInString(enhanced),
	})
}

// processContent runs the content pipeline: enhancement when suggestions
// are given, then signal and optional chart extraction.
func (a *api) processContent(w http.ResponseWriter, r *http.Request) {
	var req papyrus.ProcessRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if _, details := checkText(req.Text, string(req.Format)); len(details) > 0 {
		writeValidation(w, details...)
		return
	}

	result, err := a.svc.content.Process(r.Context(), req)
	if err != nil {
		a.failure(w, r, "process content", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"result":  result,
	})
}

// extractContent returns the text of one uploaded document without the
// upload metadata.
func (a *api) extractContent(w http.ResponseWriter, r *http.Request) {
	up, ok := a.receiveDocument(w, r)
	if !ok {
		return
	}
	ex := up.extraction
	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"extracted_text": ex.Text,
		"length":         utf8.RuneCountInString(ex.Text),
		"format":         ex.Format,
	})
}

func (a *api) suggestions(w http.ResponseWriter, r *http.Request) {
	catalog, err := papyrus.Suggestions(chi.URLParam(r, "type"))
	if err != nil {
		if errors.Is(err, papyrus.ErrUnknownSuggestion) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Suggestion type not found"})
			return
		}
		a.failure(w, r, "get suggestions", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"suggestions": catalog,
	})
}
