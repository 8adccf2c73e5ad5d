package requests

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"barbersites/internal/models"
)

// TemplateSubmission is the visitor input for a template site.
type TemplateSubmission struct {
	FullName         string `json:"fullName" validate:"required,max=200"`
	Email            string `json:"email" validate:"required,email,max=254"`
	Phone            string `json:"phone" validate:"required,max=50"`
	BusinessName     string `json:"businessName" validate:"required,max=200"`
	BusinessType     string `json:"businessType" validate:"max=100"`
	BusinessLocation string `json:"businessLocation" validate:"required,max=200"`
	Services         string `json:"services" validate:"required,max=2000"`
	Description      string `json:"description" validate:"required,max=5000"`
	SelectedTemplate string `json:"selectedTemplate" validate:"required,oneof=classic modern"`
	LogoURL          string `json:"logoUrl" validate:"omitempty,http_url,max=2048"`
}

func (s *TemplateSubmission) normalize() {
	for _, f := range []*string{
		&s.FullName, &s.Email, &s.Phone, &s.BusinessName, &s.BusinessType,
		&s.BusinessLocation, &s.Services, &s.Description, &s.SelectedTemplate, &s.LogoURL,
	} {
		*f = strings.TrimSpace(*f)
	}
	if s.BusinessType == "" {
		s.BusinessType = models.DefaultBusinessType
	}
}

func (s *TemplateSubmission) toModel() *models.TemplateRequest {
	return &models.TemplateRequest{
		FullName:         s.FullName,
		Email:            s.Email,
		Phone:            s.Phone,
		BusinessName:     s.BusinessName,
		BusinessType:     s.BusinessType,
		BusinessLocation: s.BusinessLocation,
		Services:         s.Services,
		Description:      s.Description,
		SelectedTemplate: models.Template(s.SelectedTemplate),
		LogoURL:          optional(s.LogoURL),
	}
}

// PersonalizedSubmission is the visitor input for a custom design.
type PersonalizedSubmission struct {
	FullName               string   `json:"fullName" validate:"required,max=200"`
	Email                  string   `json:"email" validate:"required,email,max=254"`
	Phone                  string   `json:"phone" validate:"required,max=50"`
	BusinessName           string   `json:"businessName" validate:"required,max=200"`
	BusinessLocation       string   `json:"businessLocation" validate:"required,max=200"`
	BusinessDescription    string   `json:"businessDescription" validate:"required,max=5000"`
	ColorScheme            string   `json:"colorScheme" validate:"max=100"`
	StylePreference        string   `json:"stylePreference" validate:"max=100"`
	Features               []string `json:"features" validate:"max=20,dive,catalog_feature"`
	AdditionalRequirements string   `json:"additionalRequirements" validate:"max=5000"`
}

func (s *PersonalizedSubmission) normalize() {
	for _, f := range []*string{
		&s.FullName, &s.Email, &s.Phone, &s.BusinessName, &s.BusinessLocation,
		&s.BusinessDescription, &s.ColorScheme, &s.StylePreference, &s.AdditionalRequirements,
	} {
		*f = strings.TrimSpace(*f)
	}

	// Features are a set.
	seen := make(map[string]bool, len(s.Features))
	features := make([]string, 0, len(s.Features))
	for _, f := range s.Features {
		f = strings.TrimSpace(f)
		if seen[f] {
			continue
		}
		seen[f] = true
		features = append(features, f)
	}
	s.Features = features
}

func (s *PersonalizedSubmission) toModel() *models.PersonalizedRequest {
	return &models.PersonalizedRequest{
		FullName:               s.FullName,
		Email:                  s.Email,
		Phone:                  s.Phone,
		BusinessName:           s.BusinessName,
		BusinessLocation:       s.BusinessLocation,
		BusinessDescription:    s.BusinessDescription,
		ColorScheme:            optional(s.ColorScheme),
		StylePreference:        optional(s.StylePreference),
		Features:               s.Features,
		AdditionalRequirements: optional(s.AdditionalRequirements),
		Status:                 models.StatusPending,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("catalog_feature", func(fl validator.FieldLevel) bool {
		return models.IsCatalogFeature(fl.Field().String())
	})
	return v
}

// check runs struct validation and converts the result to a ValidationError.
func check(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	ve := &ValidationError{}
	for _, fe := range verrs {
		ve.Fields = append(ve.Fields, FieldError{Field: fe.Field(), Message: validationMessage(fe)})
	}
	return ve
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "max":
		if fe.Kind() == reflect.Slice {
			return fe.Field() + " must have at most " + fe.Param() + " entries"
		}
		return fe.Field() + " must be at most " + fe.Param() + " characters"
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param()
	case "http_url":
		return fe.Field() + " must be an http(s) URL"
	case "catalog_feature":
		return fe.Field() + " is not an available feature"
	default:
		return fe.Field() + " is invalid"
	}
}
