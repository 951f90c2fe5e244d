// Package forms binds, validates and describes the HTML forms rendered by the server.
package forms

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Widget names the HTML control a field renders as.
type Widget string

const (
	TextInput     Widget = "TextInput"
	EmailInput    Widget = "EmailInput"
	PasswordInput Widget = "PasswordInput"
	Textarea      Widget = "Textarea"
)

// InputType is the type attribute of an <input> for the widget.
func (w Widget) InputType() string {
	switch w {
	case EmailInput:
		return "email"
	case PasswordInput:
		return "password"
	default:
		return "text"
	}
}

const RequiredMessage = "This field is required."

// Field describes one form field.
type Field struct {
	Name      string
	Label     string
	Widget    Widget
	HelpText  string
	MaxLength int
	Required  bool
	Rows      int
}

// Form tracks field metadata, submitted values and errors for one request.
type Form struct {
	fields   []Field
	values   map[string]string
	errors   map[string][]string
	nonField []string
	bound    bool
}

// New returns an unbound form with the given fields, in render order.
func New(fields ...Field) *Form {
	return &Form{
		fields: fields,
		values: map[string]string{},
		errors: map[string][]string{},
	}
}

// IsBound reports whether data was submitted to the form.
func (f *Form) IsBound() bool { return f.bound }

// Valid reports whether a bound form has no errors.
func (f *Form) Valid() bool {
	return f.bound && len(f.errors) == 0 && len(f.nonField) == 0
}

// AddError attaches msg to field, or to the form itself when field is empty.
func (f *Form) AddError(field, msg string) {
	if field == "" {
		f.nonField = append(f.nonField, msg)
		return
	}
	f.errors[field] = append(f.errors[field], msg)
}

// Errors returns the messages for field.
func (f *Form) Errors(field string) []string { return f.errors[field] }

// NonFieldErrors returns errors not tied to a single field.
func (f *Form) NonFieldErrors() []string { return f.nonField }

// Value returns the submitted value of field.
func (f *Form) Value(field string) string { return f.values[field] }

// FieldNames lists the fields in render order.
func (f *Form) FieldNames() []string {
	names := make([]string, len(f.fields))
	for i, fd := range f.fields {
		names[i] = fd.Name
	}
	return names
}

// Fields returns the bound fields in render order.
func (f *Form) Fields() []BoundField {
	out := make([]BoundField, len(f.fields))
	for i, fd := range f.fields {
		out[i] = f.bind(fd)
	}
	return out
}

// Field returns the bound field called name.
func (f *Form) Field(name string) (BoundField, bool) {
	for _, fd := range f.fields {
		if fd.Name == name {
			return f.bind(fd), true
		}
	}
	return BoundField{}, false
}

func (f *Form) bind(fd Field) BoundField {
	return BoundField{Field: fd, Value: f.values[fd.Name], Errors: f.errors[fd.Name], FormBound: f.bound}
}

// BoundField is a Field together with the request's value and errors.
type BoundField struct {
	Field
	Value     string
	Errors    []string
	FormBound bool
}

// ID is the id attribute of the field's control.
func (b BoundField) ID() string { return "id_" + b.Name }

// parse decodes the request body into dst and records the submitted values.
// Values of non-password fields are trimmed, as the form re-renders them.
func (f *Form) parse(c *fiber.Ctx, dst any) error {
	f.bound = true
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(dst); err != nil {
		return fmt.Errorf("parse form: %w", err)
	}

	v := reflect.ValueOf(dst).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		name := t.Field(i).Tag.Get("form")
		if name == "" || name == "-" || v.Field(i).Kind() != reflect.String {
			continue
		}
		fd, ok := f.lookup(name)
		if !ok {
			continue
		}
		if fd.Widget == PasswordInput {
			continue
		}
		trimmed := strings.TrimSpace(v.Field(i).String())
		v.Field(i).SetString(trimmed)
		f.values[name] = trimmed
	}
	return nil
}

func (f *Form) lookup(name string) (Field, bool) {
	for _, fd := range f.fields {
		if fd.Name == name {
			return fd, true
		}
	}
	return Field{}, false
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// check runs the struct's validate tags and records one message per failing field.
func (f *Form) check(dst any) {
	err := getValidator().Struct(dst)
	if err == nil {
		return
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		f.AddError("", err.Error())
		return
	}
	for _, fe := range verrs {
		f.AddError(fe.Field(), message(fe))
	}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return RequiredMessage
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters (it has %d).", fe.Param(), len([]rune(fmt.Sprint(fe.Value()))))
	case "email":
		return "Enter a valid email address."
	case "eqfield":
		return "The two password fields didn’t match."
	default:
		return "Enter a valid value."
	}
}
