package mcp

import (
	"github.com/aretw0/eventstorm/internal/validator"
)

// Tool arguments. Field names are the wire names of the original tool set;
// unknown keys are rejected when decoding.

type readOptions struct {
	ResponseFormat string `mapstructure:"response_format" validate:"omitempty,oneof=markdown json"`
	DetailLevel    string `mapstructure:"detail_level" validate:"omitempty,oneof=summary full"`
}

type pageOptions struct {
	Page     int `mapstructure:"page" validate:"omitempty,gte=1"`
	PageSize int `mapstructure:"page_size" validate:"omitempty,gte=1,lte=200"`
}

type createWorkshopInput struct {
	Name         string   `mapstructure:"name" validate:"required,max=200"`
	Description  string   `mapstructure:"description" validate:"max=1000"`
	Domain       string   `mapstructure:"domain" validate:"max=100"`
	Facilitators []string `mapstructure:"facilitators" validate:"max=10"`
}

func (in *createWorkshopInput) sanitize() error {
	if err := validator.SanitizeAll(&in.Name, &in.Description, &in.Domain); err != nil {
		return err
	}
	return validator.SanitizeSlice(in.Facilitators)
}

type workshopRef struct {
	WorkshopID string `mapstructure:"workshop_id" validate:"required,max=100"`
}

type loadWorkshopInput struct {
	WorkshopID  string `mapstructure:"workshop_id" validate:"required,max=100"`
	readOptions `mapstructure:",squash"`
}

type addElementInput struct {
	WorkshopID       string   `mapstructure:"workshop_id" validate:"required,max=100"`
	Type             string   `mapstructure:"type" validate:"required"`
	Name             string   `mapstructure:"name" validate:"required,max=200"`
	Description      string   `mapstructure:"description" validate:"max=1000"`
	Position         *int     `mapstructure:"position" validate:"omitempty,gte=0"`
	Notes            string   `mapstructure:"notes" validate:"max=2000"`
	CreatedBy        string   `mapstructure:"created_by" validate:"max=100"`
	Triggers         []string `mapstructure:"triggers" validate:"max=20"`
	TriggeredBy      []string `mapstructure:"triggered_by" validate:"max=20"`
	BoundedContextID string   `mapstructure:"bounded_context_id" validate:"max=100"`
}

func (in *addElementInput) sanitize() error {
	return validator.SanitizeAll(&in.Name, &in.Description, &in.Notes, &in.CreatedBy)
}

type updateElementInput struct {
	WorkshopID       string    `mapstructure:"workshop_id" validate:"required,max=100"`
	ElementID        string    `mapstructure:"element_id" validate:"required,max=100"`
	Name             *string   `mapstructure:"name" validate:"omitempty,min=1,max=200"`
	Description      *string   `mapstructure:"description" validate:"omitempty,max=1000"`
	Position         *int      `mapstructure:"position" validate:"omitempty,gte=0"`
	Notes            *string   `mapstructure:"notes" validate:"omitempty,max=2000"`
	Triggers         *[]string `mapstructure:"triggers" validate:"omitempty,max=20"`
	TriggeredBy      *[]string `mapstructure:"triggered_by" validate:"omitempty,max=20"`
	BoundedContextID *string   `mapstructure:"bounded_context_id" validate:"omitempty,max=100"`
}

func (in *updateElementInput) sanitize() error {
	return validator.SanitizeAll(in.Name, in.Description, in.Notes)
}

type elementRef struct {
	WorkshopID string `mapstructure:"workshop_id" validate:"required,max=100"`
	ElementID  string `mapstructure:"element_id" validate:"required,max=100"`
}

type createContextInput struct {
	WorkshopID  string `mapstructure:"workshop_id" validate:"required,max=100"`
	Name        string `mapstructure:"name" validate:"required,max=100"`
	Description string `mapstructure:"description" validate:"max=1000"`
	Color       string `mapstructure:"color" validate:"max=20"`
}

func (in *createContextInput) sanitize() error {
	return validator.SanitizeAll(&in.Name, &in.Description, &in.Color)
}

type contextRef struct {
	WorkshopID string `mapstructure:"workshop_id" validate:"required,max=100"`
	ContextID  string `mapstructure:"context_id" validate:"required,max=100"`
}

type assignInput struct {
	WorkshopID string   `mapstructure:"workshop_id" validate:"required,max=100"`
	ContextID  string   `mapstructure:"context_id" validate:"required,max=100"`
	ElementIDs []string `mapstructure:"element_ids" validate:"required,min=1,max=100"`
}

type searchInput struct {
	WorkshopID       string `mapstructure:"workshop_id" validate:"required,max=100"`
	Query            string `mapstructure:"query" validate:"required,max=200"`
	ElementType      string `mapstructure:"element_type"`
	BoundedContextID string `mapstructure:"bounded_context_id" validate:"max=100"`
	pageOptions      `mapstructure:",squash"`
	readOptions      `mapstructure:",squash"`
}

func (in *searchInput) sanitize() error {
	return validator.SanitizeAll(&in.Query)
}

type timelineInput struct {
	WorkshopID       string `mapstructure:"workshop_id" validate:"required,max=100"`
	ElementType      string `mapstructure:"element_type"`
	BoundedContextID string `mapstructure:"bounded_context_id" validate:"max=100"`
	pageOptions      `mapstructure:",squash"`
	readOptions      `mapstructure:",squash"`
}

type overviewInput struct {
	WorkshopID  string `mapstructure:"workshop_id" validate:"required,max=100"`
	ContextID   string `mapstructure:"context_id" validate:"max=100"`
	pageOptions `mapstructure:",squash"`
	readOptions `mapstructure:",squash"`
}

type statisticsInput struct {
	WorkshopID     string `mapstructure:"workshop_id" validate:"required,max=100"`
	ResponseFormat string `mapstructure:"response_format" validate:"omitempty,oneof=markdown json"`
}

type flowInput struct {
	WorkshopID     string `mapstructure:"workshop_id" validate:"required,max=100"`
	StartElementID string `mapstructure:"start_element_id" validate:"max=100"`
	MaxDepth       int    `mapstructure:"max_depth" validate:"omitempty,gte=1,lte=20"`
	MaxElements    int    `mapstructure:"max_elements" validate:"omitempty,gte=1,lte=500"`
	ResponseFormat string `mapstructure:"response_format" validate:"omitempty,oneof=markdown json"`
}

type exportInput struct {
	WorkshopID      string `mapstructure:"workshop_id" validate:"required,max=100"`
	IncludeMetadata *bool  `mapstructure:"include_metadata"`
	Format          string `mapstructure:"format" validate:"omitempty,oneof=json yaml"`
}

type importInput struct {
	WorkshopData string `mapstructure:"workshop_data" validate:"required"`
	NewName      string `mapstructure:"new_name" validate:"max=200"`
	Format       string `mapstructure:"format" validate:"omitempty,oneof=json yaml"`
	PreserveID   bool   `mapstructure:"preserve_id"`
}

func (in *importInput) sanitize() error {
	return validator.SanitizeAll(&in.NewName)
}
