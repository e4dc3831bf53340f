package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()

	// Use JSON tag names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Register custom validations
	registerCustomValidations()
}

func registerCustomValidations() {
	// Generation mode validation
	validate.RegisterValidation("gen_mode", func(fl validator.FieldLevel) bool {
		mode := fl.Field().String()
		validModes := []string{"text2img", "img2img", "multi_img", "img2video"}
		for _, m := range validModes {
			if mode == m {
				return true
			}
		}
		return false
	})

	// Resolution tier validation
	validate.RegisterValidation("resolution_tier", func(fl validator.FieldLevel) bool {
		tier := fl.Field().String()
		validTiers := []string{"480p", "720p", "1080p", "2k", ""}
		for _, t := range validTiers {
			if tier == t {
				return true
			}
		}
		return false
	})

	// Task type validation
	validate.RegisterValidation("task_type", func(fl validator.FieldLevel) bool {
		taskType := fl.Field().String()
		validTypes := []string{"image_generation", "image_composition", "video_generation"}
		for _, t := range validTypes {
			if taskType == t {
				return true
			}
		}
		return false
	})
}

// Validate validates a struct and returns a map of field errors
func Validate(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	errors := make(map[string]string)
	for _, err := range err.(validator.ValidationErrors) {
		field := err.Field()
		switch err.Tag() {
		case "required":
			errors[field] = "This field is required"
		case "email":
			errors[field] = "Invalid email format"
		case "min":
			errors[field] = "Value is too short (min: " + err.Param() + ")"
		case "max":
			errors[field] = "Value is too long (max: " + err.Param() + ")"
		case "gte":
			errors[field] = "Value must be at least " + err.Param()
		case "lte":
			errors[field] = "Value must be at most " + err.Param()
		case "url":
			errors[field] = "Invalid URL format"
		case "gen_mode":
			errors[field] = "Invalid mode. Must be: text2img, img2img, multi_img, or img2video"
		case "resolution_tier":
			errors[field] = "Invalid resolution. Must be: 480p, 720p, 1080p, or 2k"
		case "task_type":
			errors[field] = "Invalid task type. Must be: image_generation, image_composition, or video_generation"
		default:
			errors[field] = "Invalid value"
		}
	}

	return errors
}

// ValidateVar validates a single variable
func ValidateVar(field interface{}, tag string) error {
	return validate.Var(field, tag)
}
