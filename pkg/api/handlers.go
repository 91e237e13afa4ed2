package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fung04/ucsconv/pkg/archive"
	"github.com/fung04/ucsconv/pkg/convert"
)

// maxConvertBody caps uploaded conversion input at 64 MiB.
const maxConvertBody = 64 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeOK(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, Response{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, Response{Success: false, Error: msg})
}

func (s *Server) healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeOK(w, map[string]string{"status": "ok"})
}

func (s *Server) statusHandler(w http.ResponseWriter, _ *http.Request) {
	resp := StatusResponse{
		Uptime:        time.Since(s.startTime).Truncate(time.Second).String(),
		DocumentCount: s.store.Len(),
	}
	for _, name := range s.store.Names() {
		if doc, err := s.store.Get(name); err == nil {
			resp.ObjectCount += doc.Objects()
		}
	}
	writeOK(w, resp)
}

func (s *Server) documentsHandler(w http.ResponseWriter, _ *http.Request) {
	summaries := []DocumentSummary{}
	for _, name := range s.store.Names() {
		doc, err := s.store.Get(name)
		if err != nil {
			continue
		}
		summaries = append(summaries, DocumentSummary{
			Name:     doc.Name,
			Objects:  doc.Objects(),
			Failures: len(doc.Failures),
		})
	}
	writeOK(w, summaries)
}

func (s *Server) documentHandler(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Get(r.PathValue("name"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeOK(w, doc.Tree)
}

// GroupSummary describes one object group in a document.
type GroupSummary struct {
	Type    string `json:"type"`
	Objects int    `json:"objects"`
}

func (s *Server) documentGroupsHandler(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Get(r.PathValue("name"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	groups := []GroupSummary{}
	for _, g := range doc.Tree.Groups() {
		groups = append(groups, GroupSummary{Type: g.Type, Objects: len(g.Objects)})
	}
	writeOK(w, groups)
}

// convertHandler parses a single configuration file posted as the
// request body and stores the result under ?name= (default "config").
func (s *Server) convertHandler(w http.ResponseWriter, r *http.Request) {
	s.convertsTotal.Inc()
	start := time.Now()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxConvertBody))
	if err != nil {
		s.convertErrors.Inc()
		writeError(w, http.StatusBadRequest, "read body: "+err.Error())
		return
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		s.convertErrors.Inc()
		writeError(w, http.StatusBadRequest, "empty request body")
		return
	}

	name := documentName(r, "config")
	res := s.conv.ConvertFiles([]archive.File{{Name: name + ".conf", Data: body}})
	res.Name = name

	if len(res.Tree.Objects) == 0 && len(res.Failures) > 0 {
		s.convertErrors.Inc()
		writeError(w, http.StatusUnprocessableEntity, res.Failures[0].Error())
		return
	}
	s.finishConvert(w, res, start)
}

// convertArchiveHandler extracts a UCS archive posted as the request
// body and stores the merged result under ?name= (default "archive").
func (s *Server) convertArchiveHandler(w http.ResponseWriter, r *http.Request) {
	s.convertsTotal.Inc()
	start := time.Now()

	files, err := archive.ExtractReader(io.LimitReader(r.Body, maxConvertBody))
	if err != nil {
		s.convertErrors.Inc()
		writeError(w, http.StatusUnprocessableEntity, "extract archive: "+err.Error())
		return
	}

	res := s.conv.ConvertFiles(files)
	res.Name = documentName(r, "archive")
	s.finishConvert(w, res, start)
}

func (s *Server) finishConvert(w http.ResponseWriter, res *convert.Result, start time.Time) {
	s.convertDuration.Observe(time.Since(start).Seconds())
	s.store.PutResult(res)
	s.log.Info("converted document",
		"name", res.Name,
		"objects", len(res.Tree.Objects),
		"failures", len(res.Failures))

	resp := ConvertResponse{
		Documents: []DocumentSummary{{
			Name:     res.Name,
			Objects:  len(res.Tree.Objects),
			Failures: len(res.Failures),
		}},
	}
	for _, f := range res.Failures {
		resp.Failures = append(resp.Failures, FailureDetail{File: f.File, Error: f.Err.Error()})
	}
	writeOK(w, resp)
}

func documentName(r *http.Request, fallback string) string {
	if name := r.URL.Query().Get("name"); name != "" {
		return name
	}
	return fallback
}
