package main

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/alnah/papyrus"
)

type pdfRequest struct {
	Content  string                `json:"content"`
	Template string                `json:"template"`
	Options  papyrus.RenderOptions `json:"options"`
}

func (a *api) decodePDFRequest(w http.ResponseWriter, r *http.Request) (*pdfRequest, bool) {
	var req pdfRequest
	if !decodeJSON(w, r, &req) {
		return nil, false
	}
	if blank(req.Content) {
		writeValidation(w, fieldError{Field: "content", Message: "Content is required"})
		return nil, false
	}
	if req.Template == "" {
		req.Template = "default"
	}
	// Request options never point the browser at local files.
	req.Options.SourceDir = ""
	return &req, true
}

func (a *api) generatePDF(w http.ResponseWriter, r *http.Request) {
	req, ok := a.decodePDFRequest(w, r)
	if !ok {
		return
	}

	start := time.Now()
	var artifact *papyrus.Artifact
	err := withCompiler(a.svc.pool, func(c DocumentCompiler) error {
		var err error
		artifact, err = c.CompileToPDF(r.Context(), req.Content, req.Template, req.Options)
		return err
	})
	if err != nil {
		a.failure(w, r, "generate PDF", err)
		return
	}

	a.logger.Debug("pdf generated",
		zap.String("file", artifact.Filename),
		zap.Int("pages", artifact.Pages),
		zap.Duration("elapsed", time.Since(start)))
	writeJSON(w, http.StatusOK, map[string]any{
		"success":         true,
		"pdf":             artifact,
		"generation_time": timestamp(a.now()),
	})
}

func (a *api) previewPDF(w http.ResponseWriter, r *http.Request) {
	req, ok := a.decodePDFRequest(w, r)
	if !ok {
		return
	}

	var doc string
	err := withCompiler(a.svc.pool, func(c DocumentCompiler) error {
		var err error
		doc, err = c.CompileToHTML(r.Context(), req.Content, req.Template, req.Options)
		return err
	})
	if err != nil {
		a.failure(w, r, "generate preview", err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, doc)
}

func (a *api) listTemplates(w http.ResponseWriter, r *http.Request) {
	var templates []papyrus.TemplateInfo
	err := withCompiler(a.svc.pool, func(c DocumentCompiler) error {
		var err error
		templates, err = c.ListTemplates()
		return err
	})
	if err != nil {
		a.failure(w, r, "get templates", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"templates": templates,
	})
}

func (a *api) getTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var info *papyrus.TemplateInfo
	err := withCompiler(a.svc.pool, func(c DocumentCompiler) error {
		var err error
		info, err = c.Template(id)
		return err
	})
	if err != nil {
		if errors.Is(err, papyrus.ErrTemplateNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Template not found"})
			return
		}
		a.failure(w, r, "get template", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"template": info,
	})
}
