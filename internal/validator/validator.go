package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/DmitryBilevich/product-sales-service/internal/models"
)

// Validator wraps struct tag validation for request payloads
type Validator struct {
	structValidator *validator.Validate
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()

	// Register all custom validators once
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator: structValidator,
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// registerCustomValidators registers all custom validation functions
func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("operation_type", validateOperationType)
	validate.RegisterValidation("sort_order", validateSortOrder)
	validate.RegisterValidation("import_file_ext", validateImportFileExt)

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Custom validation functions
func validateOperationType(fl validator.FieldLevel) bool {
	validTypes := []models.ImportOperationType{
		models.OperationInsert,
		models.OperationUpdate,
	}

	value := fl.Field().String()
	for _, validType := range validTypes {
		if string(validType) == value {
			return true
		}
	}
	return false
}

func validateSortOrder(fl validator.FieldLevel) bool {
	value := fl.Field().Int()
	return value == 1 || value == -1
}

func validateImportFileExt(fl validator.FieldLevel) bool {
	validExts := []string{".xlsx", ".xls", ".csv"}

	value := strings.ToLower(fl.Field().String())
	for _, ext := range validExts {
		if strings.HasSuffix(value, ext) {
			return true
		}
	}
	return false
}
