package http

import (
	"net/http"

	"github.com/aretw0/eventstorm/internal/validator"
)

type sanitizer interface {
	sanitize() error
}

type createWorkshopRequest struct {
	Name         string   `json:"name" validate:"required,max=200"`
	Description  string   `json:"description" validate:"max=1000"`
	Domain       string   `json:"domain" validate:"max=100"`
	Facilitators []string `json:"facilitators" validate:"max=10"`
}

func (in *createWorkshopRequest) sanitize() error {
	if err := validator.SanitizeAll(&in.Name, &in.Description, &in.Domain); err != nil {
		return err
	}
	return validator.SanitizeSlice(in.Facilitators)
}

type addElementRequest struct {
	Type             string   `json:"type" validate:"required"`
	Name             string   `json:"name" validate:"required,max=200"`
	Description      string   `json:"description" validate:"max=1000"`
	Position         *int     `json:"position" validate:"omitempty,gte=0"`
	Notes            string   `json:"notes" validate:"max=2000"`
	CreatedBy        string   `json:"created_by" validate:"max=100"`
	Triggers         []string `json:"triggers" validate:"max=20"`
	TriggeredBy      []string `json:"triggered_by" validate:"max=20"`
	BoundedContextID string   `json:"bounded_context_id" validate:"max=100"`
}

func (in *addElementRequest) sanitize() error {
	return validator.SanitizeAll(&in.Name, &in.Description, &in.Notes, &in.CreatedBy)
}

// updateElementRequest is a partial update; absent fields stay untouched.
type updateElementRequest struct {
	Name             *string   `json:"name" validate:"omitempty,min=1,max=200"`
	Description      *string   `json:"description" validate:"omitempty,max=1000"`
	Position         *int      `json:"position" validate:"omitempty,gte=0"`
	Notes            *string   `json:"notes" validate:"omitempty,max=2000"`
	Triggers         *[]string `json:"triggers" validate:"omitempty,max=20"`
	TriggeredBy      *[]string `json:"triggered_by" validate:"omitempty,max=20"`
	BoundedContextID *string   `json:"bounded_context_id" validate:"omitempty,max=100"`
}

func (in *updateElementRequest) sanitize() error {
	return validator.SanitizeAll(in.Name, in.Description, in.Notes)
}

type createContextRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=1000"`
	Color       string `json:"color" validate:"max=20"`
}

func (in *createContextRequest) sanitize() error {
	return validator.SanitizeAll(&in.Name, &in.Description, &in.Color)
}

type assignRequest struct {
	ElementIDs []string `json:"element_ids" validate:"required,min=1,max=100"`
}

// pageQuery holds the pagination parameters of list endpoints.
type pageQuery struct {
	Page     int `json:"page" validate:"omitempty,gte=1"`
	PageSize int `json:"page_size" validate:"omitempty,gte=1,lte=200"`
}

func (s *Server) pageQuery(r *http.Request) (int, int, error) {
	var q pageQuery
	var err error
	if q.Page, err = intParam(r, "page"); err != nil {
		return 0, 0, err
	}
	if q.PageSize, err = intParam(r, "page_size"); err != nil {
		return 0, 0, err
	}
	if err := validator.Struct(q); err != nil {
		return 0, 0, err
	}
	if q.Page == 0 {
		q.Page = 1
	}
	if q.PageSize == 0 {
		q.PageSize = s.pageSize
	}
	return q.Page, q.PageSize, nil
}
