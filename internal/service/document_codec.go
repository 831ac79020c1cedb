package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/mentor-site-api/internal/models"
	"github.com/noah-isme/mentor-site-api/internal/repository"
	appErrors "github.com/noah-isme/mentor-site-api/pkg/errors"
)

func encodeFields(v interface{}) (models.Fields, error) {
	return models.ToFields(v)
}

func decodeDocument(doc models.Document, dest interface{}) error {
	return doc.Decode(dest)
}

func decodeDocuments[T any](docs []models.Document) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		var item T
		if err := decodeDocument(doc, &item); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

// storeError maps a store failure onto the API error taxonomy.
func storeError(err error, action, resource string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrDocumentNotFound):
		return appErrors.Clone(appErrors.ErrNotFound, resource+" not found")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, appErrors.ErrUnavailable.Message)
	default:
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to %s %s", action, resource))
	}
}

// authorize checks that actor holds capability.
func authorize(actor *models.JWTClaims, capability models.Capability) error {
	if actor == nil {
		return appErrors.Clone(appErrors.ErrUnauthorized, "authentication required")
	}
	if !actor.Can(capability) {
		return appErrors.Clone(appErrors.ErrForbidden, fmt.Sprintf("missing capability %s", capability))
	}
	return nil
}

func actorID(actor *models.JWTClaims) string {
	if actor == nil {
		return ""
	}
	return actor.UserID
}

// NewValidator builds the shared validator with the content enums registered.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
	_ = v.RegisterValidation("platform", func(fl validator.FieldLevel) bool {
		return models.Platform(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("gallery_section", func(fl validator.FieldLevel) bool {
		return models.GallerySection(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("program_type", func(fl validator.FieldLevel) bool {
		return models.ProgramType(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("review_status", func(fl validator.FieldLevel) bool {
		return models.ReviewStatus(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("message_status", func(fl validator.FieldLevel) bool {
		return models.MessageStatus(fl.Field().String()).Valid()
	})
	return v
}

// validationError turns validator output into a VALIDATION_ERROR carrying one
// detail per offending field.
func validationError(err error, message string) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
	}
	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		details[fe.Field()] = describeRule(fe)
	}
	out := appErrors.WithDetails(appErrors.Clone(appErrors.ErrValidation, message), details)
	out.Err = err
	return out
}

func describeRule(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.String {
			return "must not be empty"
		}
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "email":
		return "must be a valid email"
	case "oneof":
		return "must be one of " + fe.Param()
	case "platform", "gallery_section", "program_type", "review_status", "message_status":
		return "is not a known value"
	default:
		return "failed " + fe.Tag()
	}
}

// validate runs v over payload and returns a structured error on failure.
func validate(v *validator.Validate, payload interface{}, message string) error {
	if err := v.Struct(payload); err != nil {
		return validationError(err, message)
	}
	return nil
}

// trimStrings trims every string, *string and []string field of the struct
// behind ptr in place.
func trimStrings(ptr interface{}) {
	v := reflect.ValueOf(ptr)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return
	}
	v = v.Elem()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		if !field.CanSet() {
			continue
		}
		switch field.Kind() {
		case reflect.String:
			field.SetString(strings.TrimSpace(field.String()))
		case reflect.Ptr:
			if !field.IsNil() && field.Elem().Kind() == reflect.String {
				field.Elem().SetString(strings.TrimSpace(field.Elem().String()))
			}
			if !field.IsNil() && field.Elem().Kind() == reflect.Slice {
				trimSlice(field.Elem())
			}
		case reflect.Slice:
			trimSlice(field)
		}
	}
}

func trimSlice(slice reflect.Value) {
	if slice.Type().Elem().Kind() != reflect.String {
		return
	}
	for i := 0; i < slice.Len(); i++ {
		slice.Index(i).SetString(strings.TrimSpace(slice.Index(i).String()))
	}
}
