package server

import (
	"bytes"
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/photonlayout/pkg/cache"
	"github.com/matzehuels/photonlayout/pkg/config"
	"github.com/matzehuels/photonlayout/pkg/errors"
	pkgio "github.com/matzehuels/photonlayout/pkg/io"
	"github.com/matzehuels/photonlayout/pkg/pipeline"
	"github.com/matzehuels/photonlayout/pkg/store"
)

var contentTypes = map[string]string{
	pipeline.FormatJSON: "application/json",
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
}

// summary is returned for stored and built designs.
type summary struct {
	Name       string `json:"name,omitempty"`
	Top        string `json:"top"`
	Hash       string `json:"hash"`
	Cells      int    `json:"cells"`
	Instances  int    `json:"instances"`
	Waveguides int    `json:"waveguides"`
	Polygons   int    `json:"polygons"`
}

type buildResponse struct {
	summary
	Layout *pkgio.LayoutDoc `json:"layout"`
}

func newSummary(name string, res *pipeline.Result) summary {
	return summary{
		Name:       name,
		Top:        res.Session.Design().CellName(res.Built.Top),
		Hash:       res.DesignHash,
		Cells:      res.Stats.Cells,
		Instances:  res.Stats.Instances,
		Waveguides: res.Stats.Waveguides,
		Polygons:   res.Stats.Polygons,
	}
}

// buildOptions reads the query parameters shared by the build endpoints.
func buildOptions(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := pipeline.Options{Top: q.Get("top")}
	for name, dst := range map[string]*bool{
		"parallel":    &opts.Parallel,
		"skip_routes": &opts.SkipRoutes,
		"detailed":    &opts.Detailed,
		"refresh":     &opts.Refresh,
	} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "query parameter %s: %q is not a boolean", name, v)
		}
		*dst = b
	}
	return opts, nil
}

func (s *Server) execute(r *http.Request, doc *pkgio.Document, opts pipeline.Options) (*pipeline.Result, error) {
	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RouteTimeout)
	defer cancel()
	return s.runner.Execute(ctx, doc, opts)
}

func (s *Server) handleBuild(w http.ResponseWriter, r *http.Request) {
	opts, err := buildOptions(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	doc, err := pkgio.ReadDocument(r.Body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.execute(r, doc, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, buildResponse{
		summary: newSummary(doc.Name, res),
		Layout:  pkgio.NewLayoutDoc(doc.Name, res.Layout, res.Session.Config),
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	names, err := s.store.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"designs": names})
}

// handlePut stores a document after checking that it builds.
func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := store.ValidateName(name); err != nil {
		writeError(w, r, err)
		return
	}
	opts, err := buildOptions(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	doc, err := pkgio.ReadDocument(r.Body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.execute(r, doc, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}

	status := http.StatusOK
	if _, err := s.store.Get(r.Context(), name); errors.Is(err, errors.ErrCodeNotFound) {
		status = http.StatusCreated
	}
	if err := s.store.Put(r.Context(), name, doc); err != nil {
		writeError(w, r, err)
		return
	}
	loggerFrom(r.Context()).Info("stored design", "name", name, "cells", res.Stats.Cells)
	writeJSON(w, status, newSummary(name, res))
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	doc, err := s.store.Get(r.Context(), name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := pkgio.WriteDocument(doc, &buf); err != nil {
		loggerFrom(r.Context()).Error("encode stored design", "name", name, "err", err)
		writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "encode design %q", name))
		return
	}
	w.Header().Set("Content-Type", contentTypes[pipeline.FormatJSON])
	w.Write(buf.Bytes())
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatJSON
	}
	s.serveStored(w, r, "layout", func(opts *pipeline.Options) { opts.Formats = []string{format} },
		func(res *pipeline.Result) ([]byte, string) { return res.Artifacts[format], format })
}

func (s *Server) handleHierarchy(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	s.serveStored(w, r, "hierarchy", func(opts *pipeline.Options) { opts.Diagram = format },
		func(res *pipeline.Result) ([]byte, string) { return res.Diagram, format })
}

// serveStored builds a stored design and writes one artifact of it. A
// request whose If-None-Match names the current ETag gets 304 without a
// build, unless it asks for a refresh.
func (s *Server) serveStored(w http.ResponseWriter, r *http.Request, kind string, configure func(*pipeline.Options), pick func(*pipeline.Result) ([]byte, string)) {
	opts, err := buildOptions(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	configure(&opts)
	if err := opts.Validate(); err != nil {
		writeError(w, r, err)
		return
	}
	doc, err := s.store.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	etag, err := s.artifactETag(kind, doc, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !opts.Refresh && etagMatches(r.Header.Get("If-None-Match"), etag) {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	res, err := s.execute(r, doc, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	data, format := pick(res)
	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("ETag", etag)
	w.Write(data)
}

// artifactETag identifies one rendering of a stored design: the document,
// the session config, the artifact kind and the options it is built with.
func (s *Server) artifactETag(kind string, doc *pkgio.Document, opts pipeline.Options) (string, error) {
	opts.Refresh = false
	h, err := cache.HashJSON(struct {
		Kind    string           `json:"kind"`
		Doc     *pkgio.Document  `json:"doc"`
		Options pipeline.Options `json:"options"`
		Config  config.Session   `json:"config"`
	}{kind, doc, opts, s.runner.Config})
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "hash %s request", kind)
	}
	return strconv.Quote(h), nil
}

// etagMatches reports whether an If-None-Match header lists etag.
func etagMatches(header, etag string) bool {
	for _, tag := range strings.Split(header, ",") {
		tag = strings.TrimPrefix(strings.TrimSpace(tag), "W/")
		if tag == "*" || tag == etag {
			return true
		}
	}
	return false
}
