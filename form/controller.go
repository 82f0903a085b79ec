// Package form implements the create/edit modal shared by every screen.
package form

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"sort"
	"strings"
	"sync"

	"marketplace-portal/model"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cast"
)

var (
	ErrClosed = statusError{"form is not open", http.StatusConflict}
	ErrBusy   = statusError{"form is already being submitted", http.StatusConflict}
)

type statusError struct {
	msg    string
	status int
}

func (e statusError) Error() string   { return e.msg }
func (e statusError) HTTPStatus() int { return e.status }

// ValidationError lists the fields that failed local validation, keyed by
// field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, n := range names {
		parts = append(parts, n+" "+e.Fields[n])
	}
	return "invalid input: " + strings.Join(parts, ", ")
}

func (e *ValidationError) HTTPStatus() int { return http.StatusUnprocessableEntity }

// Config describes one entity's form. T is the entity shown in the list and
// P the payload sent to the API.
type Config[T any, P any] struct {
	Name        string
	Defaults    func() Fields
	Seed        func(T) Fields
	Numeric     []string
	Attachments []string
	Build       func(Fields) (P, error)
	Create      func(ctx context.Context, payload P) error
	Update      func(ctx context.Context, id model.ID, payload P) error
	ID          func(T) model.ID
	// OnSaved runs after a successful create or update, normally the
	// owning list's refetch.
	OnSaved func(ctx context.Context) error
}

type State struct {
	Open        bool              `json:"open"`
	Mode        string            `json:"mode"`
	EditingID   model.ID          `json:"editingId,omitempty"`
	Fields      Fields            `json:"fields"`
	Submitting  bool              `json:"submitting"`
	Error       string            `json:"error,omitempty"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
}

const (
	ModeCreate = "create"
	ModeEdit   = "edit"
)

type Controller[T any, P any] struct {
	cfg      Config[T, P]
	validate *validator.Validate
	uploader Uploader

	mu         sync.Mutex
	open       bool
	editing    *T
	fields     Fields
	submitting bool
	err        string
	fieldErrs  map[string]string
}

// NewValidator returns a validator that reports fields by their json name.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

func NewController[T any, P any](cfg Config[T, P], validate *validator.Validate, uploader Uploader) *Controller[T, P] {
	if validate == nil {
		validate = NewValidator()
	}
	if cfg.Defaults == nil {
		cfg.Defaults = func() Fields { return Fields{} }
	}
	return &Controller[T, P]{
		cfg:      cfg,
		validate: validate,
		uploader: uploader,
		fields:   cfg.Defaults(),
	}
}

func (c *Controller[T, P]) OpenCreate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.editing = nil
	c.fields = c.cfg.Defaults()
	c.open = true
	c.clearErrors()
}

func (c *Controller[T, P]) OpenEdit(entity T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := entity
	c.editing = &e
	c.fields = c.cfg.Defaults()
	for k, v := range c.cfg.Seed(entity) {
		c.fields[k] = v
	}
	c.open = true
	c.clearErrors()
}

func (c *Controller[T, P]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = false
	c.editing = nil
	c.fields = c.cfg.Defaults()
	c.clearErrors()
}

// Set merges values into the open form.
func (c *Controller[T, P]) Set(values Fields) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open {
		return ErrClosed
	}
	for k, v := range values {
		c.fields[k] = v
	}
	return nil
}

func (c *Controller[T, P]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := State{
		Open:       c.open,
		Mode:       ModeCreate,
		Fields:     c.fields.Clone(),
		Submitting: c.submitting,
		Error:      c.err,
	}
	if c.editing != nil {
		s.Mode = ModeEdit
		s.EditingID = c.cfg.ID(*c.editing)
	}
	if len(c.fieldErrs) > 0 {
		s.FieldErrors = make(map[string]string, len(c.fieldErrs))
		for k, v := range c.fieldErrs {
			s.FieldErrors[k] = v
		}
	}
	return s
}

// Submit validates the form, uploads pending attachments, then creates or
// updates the entity. Nothing is sent when validation fails, and no
// mutation is attempted when an upload fails. The form stays open with the
// error on any failure.
func (c *Controller[T, P]) Submit(ctx context.Context) error {
	c.mu.Lock()
	if !c.open {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.submitting {
		c.mu.Unlock()
		return ErrBusy
	}
	c.submitting = true
	c.clearErrors()
	fields := c.fields.Clone()
	var editingID model.ID
	editing := c.editing != nil
	if editing {
		editingID = c.cfg.ID(*c.editing)
	}
	c.mu.Unlock()

	urls, err := c.submit(ctx, fields, editing, editingID)

	c.mu.Lock()
	c.submitting = false
	if err != nil {
		c.err = err.Error()
		var ve *ValidationError
		if errors.As(err, &ve) {
			c.fieldErrs = ve.Fields
		}
		c.mu.Unlock()
		return err
	}
	c.open = false
	c.editing = nil
	c.fields = c.cfg.Defaults()
	c.mu.Unlock()

	if committer, ok := c.uploader.(Committer); ok && len(urls) > 0 {
		if err := committer.Commit(ctx, urls); err != nil {
			slog.Error("failed to commit uploads", "form", c.cfg.Name, "err", err)
		}
	}
	if c.cfg.OnSaved != nil {
		if err := c.cfg.OnSaved(ctx); err != nil {
			slog.Error("refetch after save failed", "form", c.cfg.Name, "err", err)
		}
	}
	return nil
}

func (c *Controller[T, P]) submit(ctx context.Context, fields Fields, editing bool, id model.ID) ([]string, error) {
	if err := c.checkNumeric(fields); err != nil {
		return nil, err
	}

	// validate with the preview data urls standing in for the final urls
	preview := fields.Clone()
	pending := map[string]Attachment{}
	for _, key := range c.cfg.Attachments {
		if a, ok := attachmentOf(fields[key]); ok {
			pending[key] = a
			preview[key] = a.DataURL
		}
	}
	payload, err := c.build(preview)
	if err != nil {
		return nil, err
	}

	var urls []string
	if len(pending) > 0 {
		if c.uploader == nil {
			return nil, fmt.Errorf("%s: no uploader configured", c.cfg.Name)
		}
		for _, key := range c.cfg.Attachments {
			a, ok := pending[key]
			if !ok {
				continue
			}
			name, data, err := a.Decode(key)
			if err != nil {
				return nil, &ValidationError{Fields: map[string]string{key: "is not a valid file"}}
			}
			u, err := c.uploader.Upload(ctx, name, data)
			if err != nil {
				return nil, fmt.Errorf("upload %s: %w", key, err)
			}
			fields[key] = u
			urls = append(urls, u)
		}
		if payload, err = c.build(fields); err != nil {
			return nil, err
		}
	}

	if editing {
		err = c.cfg.Update(ctx, id, payload)
	} else {
		err = c.cfg.Create(ctx, payload)
	}
	if err != nil {
		return nil, err
	}
	return urls, nil
}

func (c *Controller[T, P]) checkNumeric(fields Fields) error {
	bad := map[string]string{}
	for _, key := range c.cfg.Numeric {
		if fields.blank(key) {
			continue
		}
		if _, err := cast.ToFloat64E(fields[key]); err != nil {
			bad[key] = "must be a number"
		}
	}
	if len(bad) > 0 {
		return &ValidationError{Fields: bad}
	}
	return nil
}

func (c *Controller[T, P]) build(fields Fields) (P, error) {
	payload, err := c.cfg.Build(fields)
	if err != nil {
		return payload, err
	}
	return payload, Check(c.validate, payload)
}

// Check validates payload and reports rule failures as a ValidationError
// keyed by json field name.
func Check(v *validator.Validate, payload any) error {
	err := v.Struct(payload)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	bad := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		bad[fe.Field()] = describe(fe)
	}
	return &ValidationError{Fields: bad}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		return "must be at least " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	case "eqfield":
		return "does not match " + fe.Param()
	}
	return "is invalid"
}

func (c *Controller[T, P]) clearErrors() {
	c.err = ""
	c.fieldErrs = nil
}
