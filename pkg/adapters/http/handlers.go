package http

import (
	"io"
	"net/http"
	"strings"

	"github.com/aretw0/eventstorm"
	mermaid "github.com/aretw0/eventstorm/internal/presentation/graph"
	"github.com/aretw0/eventstorm/internal/presentation/markdown"
	"github.com/aretw0/eventstorm/pkg/codec"
	"github.com/aretw0/eventstorm/pkg/domain"
	"github.com/aretw0/eventstorm/pkg/flow"
	"github.com/aretw0/eventstorm/pkg/graph"
	"github.com/aretw0/eventstorm/pkg/query"
	"github.com/go-chi/chi/v5"
)

func (s *Server) listWorkshops(w http.ResponseWriter, r *http.Request) {
	list, err := s.engine.ListWorkshops(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []domain.Summary{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"workshops": list, "total": len(list)})
}

func (s *Server) createWorkshop(w http.ResponseWriter, r *http.Request) {
	var in createWorkshopRequest
	if err := decodeBody(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	doc, err := s.engine.CreateWorkshop(r.Context(), eventstorm.CreateWorkshopInput{
		Name:         in.Name,
		Description:  in.Description,
		Domain:       in.Domain,
		Facilitators: in.Facilitators,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/workshops/"+doc.Metadata.ID)
	s.writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) getWorkshop(w http.ResponseWriter, r *http.Request) {
	doc, err := s.engine.LoadWorkshop(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}

func (s *Server) deleteWorkshop(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.DeleteWorkshop(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) addElement(w http.ResponseWriter, r *http.Request) {
	var in addElementRequest
	if err := decodeBody(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	el, err := s.engine.AddElement(r.Context(), chi.URLParam(r, "id"), graph.ElementInput{
		Type:             in.Type,
		Name:             in.Name,
		Description:      in.Description,
		Position:         in.Position,
		Notes:            in.Notes,
		CreatedBy:        in.CreatedBy,
		Triggers:         in.Triggers,
		TriggeredBy:      in.TriggeredBy,
		BoundedContextID: in.BoundedContextID,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, el)
}

func (s *Server) updateElement(w http.ResponseWriter, r *http.Request) {
	var in updateElementRequest
	if err := decodeBody(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	el, fields, err := s.engine.UpdateElement(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "elementID"), graph.ElementPatch{
		Name:             in.Name,
		Description:      in.Description,
		Position:         in.Position,
		Notes:            in.Notes,
		Triggers:         in.Triggers,
		TriggeredBy:      in.TriggeredBy,
		BoundedContextID: in.BoundedContextID,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if fields == nil {
		fields = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"element": el, "updated_fields": fields})
}

func (s *Server) deleteElement(w http.ResponseWriter, r *http.Request) {
	el, err := s.engine.DeleteElement(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "elementID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"deleted_element": el})
}

func (s *Server) createContext(w http.ResponseWriter, r *http.Request) {
	var in createContextRequest
	if err := decodeBody(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	bc, err := s.engine.CreateContext(r.Context(), chi.URLParam(r, "id"), graph.ContextInput{
		Name:        in.Name,
		Description: in.Description,
		Color:       in.Color,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, bc)
}

func (s *Server) deleteContext(w http.ResponseWriter, r *http.Request) {
	bc, err := s.engine.DeleteContext(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "contextID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"deleted_context":  bc,
		"unassigned_count": len(bc.ElementIDs),
	})
}

func (s *Server) assign(w http.ResponseWriter, r *http.Request) {
	var in assignRequest
	if err := decodeBody(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.engine.AssignToContext(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "contextID"), in.ElementIDs)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func filterOf(r *http.Request) query.Filter {
	q := r.URL.Query()
	return query.Filter{
		Type:      domain.ElementType(q.Get("type")),
		ContextID: q.Get("context"),
	}
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	page, size, err := s.pageQuery(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	term := r.URL.Query().Get("q")
	els, err := s.engine.Search(r.Context(), chi.URLParam(r, "id"), term, filterOf(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	matches, info := query.Paginate(els, page, size)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"query":      term,
		"matches":    nonNil(matches),
		"pagination": info,
	})
}

func (s *Server) timeline(w http.ResponseWriter, r *http.Request) {
	page, size, err := s.pageQuery(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	els, err := s.engine.Timeline(r.Context(), chi.URLParam(r, "id"), filterOf(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	items, info := query.Paginate(els, page, size)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"timeline":   nonNil(items),
		"pagination": info,
	})
}

func (s *Server) statistics(w http.ResponseWriter, r *http.Request) {
	st, err := s.engine.Statistics(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, st)
}

func (s *Server) contextOverview(w http.ResponseWriter, r *http.Request) {
	ov, err := s.engine.ContextOverview(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("context_id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ov)
}

func (s *Server) traceFlow(r *http.Request) (flow.Report, error) {
	depth, err := intParam(r, "max_depth")
	if err != nil {
		return flow.Report{}, err
	}
	limit, err := intParam(r, "max_elements")
	if err != nil {
		return flow.Report{}, err
	}
	return s.engine.VisualizeFlow(r.Context(), chi.URLParam(r, "id"), flow.Options{
		StartID:     r.URL.Query().Get("start"),
		MaxDepth:    depth,
		MaxElements: limit,
	})
}

// getFlow serves the traced forest as JSON, or as the markdown tree with
// ?format=markdown.
func (s *Server) getFlow(w http.ResponseWriter, r *http.Request) {
	rep, err := s.traceFlow(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if r.URL.Query().Get("format") == "markdown" {
		writeText(w, "text/markdown; charset=utf-8", markdown.Flow(rep))
		return
	}
	s.writeJSON(w, http.StatusOK, rep)
}

// getMermaid serves the workshop flowchart. With ?start= the flow traced from
// that element is highlighted.
func (s *Server) getMermaid(w http.ResponseWriter, r *http.Request) {
	doc, err := s.engine.LoadWorkshop(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var overlay *mermaid.Overlay
	if r.URL.Query().Get("start") != "" {
		rep, err := s.traceFlow(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		overlay = mermaid.FlowOverlay(rep)
	}
	writeText(w, "text/plain; charset=utf-8", mermaid.GenerateMermaid(doc, overlay))
}

func (s *Server) exportWorkshop(w http.ResponseWriter, r *http.Request) {
	format, err := codec.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	includeMetadata, err := boolParam(r, "include_metadata", true)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	exp, err := s.engine.Export(r.Context(), chi.URLParam(r, "id"), includeMetadata)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := codec.Encode(exp, format)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeText(w, contentType(format), string(data))
}

// importWorkshop handles POST /import. The body is the exported document;
// format, new_name and preserve_id are query parameters.
func (s *Server) importWorkshop(w http.ResponseWriter, r *http.Request) {
	format, err := codec.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	preserve, err := boolParam(r, "preserve_id", false)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodySize))
	if err != nil {
		s.writeError(w, r, domain.Validation("reading import body: %v", err))
		return
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		s.writeError(w, r, domain.Validation("import body is empty"))
		return
	}
	doc, err := s.engine.Import(r.Context(), data, format, codec.ImportOptions{
		NewName:    r.URL.Query().Get("new_name"),
		PreserveID: preserve,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/workshops/"+doc.Metadata.ID)
	s.writeJSON(w, http.StatusCreated, doc)
}

func contentType(f codec.Format) string {
	if f == codec.FormatYAML {
		return "application/yaml"
	}
	return "application/json"
}

func nonNil(els []domain.Element) []domain.Element {
	if els == nil {
		return []domain.Element{}
	}
	return els
}
