package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"firmpanel/internal/config"
	apperrors "firmpanel/internal/errors"
)

// ConfigValidator checks a loaded configuration against its struct tags
type ConfigValidator struct {
	validator *validator.Validate
	logger    *slog.Logger
}

// NewConfigValidator creates a validator with the firmpanel custom tags registered
func NewConfigValidator(logger *slog.Logger) *ConfigValidator {
	if logger == nil {
		logger = slog.Default()
	}

	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterValidation("tabular_file", isTabularFile)
	v.RegisterValidation("xlsx_file", isXLSXFile)

	// Report fields by their YAML names, which users also see in config files
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &ConfigValidator{
		validator: v,
		logger:    logger.With(slog.String("component", "config_validator")),
	}
}

// Validate returns a config error listing every invalid field, or nil
func (c *ConfigValidator) Validate(cfg *config.Config) error {
	err := c.validator.Struct(cfg)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewConfigError("invalid configuration", err)
	}

	messages := make([]string, 0, len(fieldErrs))
	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msg := formatValidationError(fe)
		messages = append(messages, msg)
		fields = append(fields, namespace(fe))
		c.logger.Debug("Configuration field rejected",
			slog.String("field", namespace(fe)),
			slog.String("tag", fe.Tag()),
			slog.String("message", msg))
	}

	return apperrors.NewConfigError("invalid configuration: "+strings.Join(messages, "; "), nil).
		WithContext("fields", strings.Join(fields, ","))
}

// ValidateConfig validates cfg with a default validator
func ValidateConfig(cfg *config.Config) error {
	return NewConfigValidator(nil).Validate(cfg)
}

// namespace drops the root struct name, leaving e.g. "sample.end_year"
func namespace(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// formatValidationError formats validation error messages
func formatValidationError(fe validator.FieldError) string {
	field := namespace(fe)
	param := fe.Param()

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "required_unless":
		return fmt.Sprintf("%s is required unless %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, param)
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, param)
	case "gtefield":
		return fmt.Sprintf("%s must be greater than or equal to field %s", field, param)
	case "tabular_file":
		return fmt.Sprintf("%s must be a .csv, .txt or .xlsx file", field)
	case "xlsx_file":
		return fmt.Sprintf("%s must be an .xlsx file", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// Custom validators

// isTabularFile accepts paths the loader knows how to read
func isTabularFile(fl validator.FieldLevel) bool {
	switch strings.ToLower(filepath.Ext(fl.Field().String())) {
	case ".csv", ".txt", ".xlsx":
		return true
	}
	return false
}

// isXLSXFile accepts workbook paths
func isXLSXFile(fl validator.FieldLevel) bool {
	return strings.EqualFold(filepath.Ext(fl.Field().String()), ".xlsx")
}
