package utils

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/recipevault/recipevault/recipevault/config"
	"github.com/recipevault/recipevault/web/models"
	"github.com/shopspring/decimal"
)

var (
	// ValidImageExtensions contains valid image file extensions
	ValidImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

	// ValidEmailRegex validates email addresses
	ValidEmailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

	// maxPrice is the largest value representable as decimal(5,2)
	maxPrice = decimal.New(99999, -2)
)

// ValidateUserCreateRequest validates a user registration request
func ValidateUserCreateRequest(req *models.UserCreateRequest) []models.ValidationError {
	var errors []models.ValidationError

	// Validate email
	if req.Email == "" {
		errors = append(errors, models.ValidationError{
			Field:   "email",
			Message: "Email is required",
		})
	} else if len(req.Email) > config.MaxEmailLength {
		errors = append(errors, models.ValidationError{
			Field:   "email",
			Message: fmt.Sprintf("Email must be less than %d characters", config.MaxEmailLength),
		})
	} else if !ValidEmailRegex.MatchString(req.Email) {
		errors = append(errors, models.ValidationError{
			Field:   "email",
			Message: "Enter a valid email address",
		})
	}

	// Validate password
	if req.Password == "" {
		errors = append(errors, models.ValidationError{
			Field:   "password",
			Message: "Password is required",
		})
	} else if len(req.Password) < config.MinPasswordLength {
		errors = append(errors, models.ValidationError{
			Field:   "password",
			Message: fmt.Sprintf("Password must be at least %d characters", config.MinPasswordLength),
		})
	}

	// Validate name
	if req.Name == "" {
		errors = append(errors, models.ValidationError{
			Field:   "name",
			Message: "Name is required",
		})
	} else if len(req.Name) > config.MaxNameLength {
		errors = append(errors, models.ValidationError{
			Field:   "name",
			Message: fmt.Sprintf("Name must be less than %d characters", config.MaxNameLength),
		})
	}

	return errors
}

// ValidateUserManageRequest validates a full profile replacement. The
// password is optional here; when present it must meet the minimum length.
func ValidateUserManageRequest(req *models.UserCreateRequest) []models.ValidationError {
	var errors []models.ValidationError

	if req.Email == "" {
		errors = append(errors, models.ValidationError{
			Field:   "email",
			Message: "Email is required",
		})
	} else if len(req.Email) > config.MaxEmailLength {
		errors = append(errors, models.ValidationError{
			Field:   "email",
			Message: fmt.Sprintf("Email must be less than %d characters", config.MaxEmailLength),
		})
	} else if !ValidEmailRegex.MatchString(req.Email) {
		errors = append(errors, models.ValidationError{
			Field:   "email",
			Message: "Enter a valid email address",
		})
	}

	if req.Password != "" && len(req.Password) < config.MinPasswordLength {
		errors = append(errors, models.ValidationError{
			Field:   "password",
			Message: fmt.Sprintf("Password must be at least %d characters", config.MinPasswordLength),
		})
	}

	if req.Name == "" {
		errors = append(errors, models.ValidationError{
			Field:   "name",
			Message: "Name is required",
		})
	} else if len(req.Name) > config.MaxNameLength {
		errors = append(errors, models.ValidationError{
			Field:   "name",
			Message: fmt.Sprintf("Name must be less than %d characters", config.MaxNameLength),
		})
	}

	return errors
}

// ValidateTokenRequest validates a token issue request
func ValidateTokenRequest(req *models.TokenRequest) []models.ValidationError {
	var errors []models.ValidationError

	if req.Email == "" {
		errors = append(errors, models.ValidationError{
			Field:   "email",
			Message: "Email is required",
		})
	}

	if req.Password == "" {
		errors = append(errors, models.ValidationError{
			Field:   "password",
			Message: "Password is required",
		})
	}

	return errors
}

// ValidateUserUpdateRequest validates a partial profile update
func ValidateUserUpdateRequest(req *models.UserUpdateRequest) []models.ValidationError {
	var errors []models.ValidationError

	// Validate email if provided
	if req.Email != nil {
		if *req.Email == "" {
			errors = append(errors, models.ValidationError{
				Field:   "email",
				Message: "Email cannot be empty",
			})
		} else if len(*req.Email) > config.MaxEmailLength {
			errors = append(errors, models.ValidationError{
				Field:   "email",
				Message: fmt.Sprintf("Email must be less than %d characters", config.MaxEmailLength),
			})
		} else if !ValidEmailRegex.MatchString(*req.Email) {
			errors = append(errors, models.ValidationError{
				Field:   "email",
				Message: "Enter a valid email address",
			})
		}
	}

	// Validate password if provided
	if req.Password != nil {
		if len(*req.Password) < config.MinPasswordLength {
			errors = append(errors, models.ValidationError{
				Field:   "password",
				Message: fmt.Sprintf("Password must be at least %d characters", config.MinPasswordLength),
			})
		}
	}

	// Validate name if provided
	if req.Name != nil {
		if *req.Name == "" {
			errors = append(errors, models.ValidationError{
				Field:   "name",
				Message: "Name cannot be empty",
			})
		} else if len(*req.Name) > config.MaxNameLength {
			errors = append(errors, models.ValidationError{
				Field:   "name",
				Message: fmt.Sprintf("Name must be less than %d characters", config.MaxNameLength),
			})
		}
	}

	return errors
}

// validatePrice checks a price against the decimal(5,2) storage bounds
func validatePrice(price decimal.Decimal) []models.ValidationError {
	var errors []models.ValidationError

	if price.IsNegative() {
		errors = append(errors, models.ValidationError{
			Field:   "price",
			Message: "Price cannot be negative",
		})
	} else if price.GreaterThan(maxPrice) {
		errors = append(errors, models.ValidationError{
			Field:   "price",
			Message: fmt.Sprintf("Ensure price has no more than %d digits in total", config.PriceMaxDigits),
		})
	} else if !price.Equal(price.Round(config.PriceDecimalPlaces)) {
		errors = append(errors, models.ValidationError{
			Field:   "price",
			Message: fmt.Sprintf("Ensure price has no more than %d decimal places", config.PriceDecimalPlaces),
		})
	}

	return errors
}

// validateAttributeRefs checks the nested tag or ingredient names of a recipe payload
func validateAttributeRefs(field string, refs []models.AttributeRef) []models.ValidationError {
	var errors []models.ValidationError

	for i, ref := range refs {
		if strings.TrimSpace(ref.Name) == "" {
			errors = append(errors, models.ValidationError{
				Field:   fmt.Sprintf("%s[%d]", field, i),
				Message: "Name cannot be empty",
			})
		} else if len(ref.Name) > config.MaxNameLength {
			errors = append(errors, models.ValidationError{
				Field:   fmt.Sprintf("%s[%d]", field, i),
				Message: fmt.Sprintf("Name must be less than %d characters", config.MaxNameLength),
			})
		}
	}

	return errors
}

// ValidateRecipeCreateRequest validates a recipe creation or full update request
func ValidateRecipeCreateRequest(req *models.RecipeCreateRequest) []models.ValidationError {
	var errors []models.ValidationError

	// Validate title
	if req.Title == "" {
		errors = append(errors, models.ValidationError{
			Field:   "title",
			Message: "Title is required",
		})
	} else if len(req.Title) > config.MaxTitleLength {
		errors = append(errors, models.ValidationError{
			Field:   "title",
			Message: fmt.Sprintf("Title must be less than %d characters", config.MaxTitleLength),
		})
	}

	// Validate time
	if req.TimeMinutes < 1 {
		errors = append(errors, models.ValidationError{
			Field:   "time_minutes",
			Message: "Time minutes must be at least 1",
		})
	}

	// Validate price
	errors = append(errors, validatePrice(req.Price)...)

	// Validate link
	if len(req.Link) > config.MaxLinkLength {
		errors = append(errors, models.ValidationError{
			Field:   "link",
			Message: fmt.Sprintf("Link must be less than %d characters", config.MaxLinkLength),
		})
	}

	errors = append(errors, validateAttributeRefs("tags", req.Tags)...)
	errors = append(errors, validateAttributeRefs("ingredients", req.Ingredients)...)

	return errors
}

// ValidateRecipeUpdateRequest validates a partial recipe update
func ValidateRecipeUpdateRequest(req *models.RecipeUpdateRequest) []models.ValidationError {
	var errors []models.ValidationError

	// Validate title if provided
	if req.Title != nil {
		if *req.Title == "" {
			errors = append(errors, models.ValidationError{
				Field:   "title",
				Message: "Title cannot be empty",
			})
		} else if len(*req.Title) > config.MaxTitleLength {
			errors = append(errors, models.ValidationError{
				Field:   "title",
				Message: fmt.Sprintf("Title must be less than %d characters", config.MaxTitleLength),
			})
		}
	}

	// Validate time if provided
	if req.TimeMinutes != nil && *req.TimeMinutes < 1 {
		errors = append(errors, models.ValidationError{
			Field:   "time_minutes",
			Message: "Time minutes must be at least 1",
		})
	}

	// Validate price if provided
	if req.Price != nil {
		errors = append(errors, validatePrice(*req.Price)...)
	}

	// Validate link if provided
	if req.Link != nil && len(*req.Link) > config.MaxLinkLength {
		errors = append(errors, models.ValidationError{
			Field:   "link",
			Message: fmt.Sprintf("Link must be less than %d characters", config.MaxLinkLength),
		})
	}

	if req.Tags != nil {
		errors = append(errors, validateAttributeRefs("tags", *req.Tags)...)
	}
	if req.Ingredients != nil {
		errors = append(errors, validateAttributeRefs("ingredients", *req.Ingredients)...)
	}

	return errors
}

// ValidateAttributeUpdateRequest validates a tag or ingredient rename
func ValidateAttributeUpdateRequest(req *models.AttributeUpdateRequest) []models.ValidationError {
	var errors []models.ValidationError

	if strings.TrimSpace(req.Name) == "" {
		errors = append(errors, models.ValidationError{
			Field:   "name",
			Message: "Name is required",
		})
	} else if len(req.Name) > config.MaxNameLength {
		errors = append(errors, models.ValidationError{
			Field:   "name",
			Message: fmt.Sprintf("Name must be less than %d characters", config.MaxNameLength),
		})
	}

	return errors
}

// ValidateImageFile validates an uploaded image file
func ValidateImageFile(fileHeader *multipart.FileHeader) []models.ValidationError {
	var errors []models.ValidationError

	// Check file size
	if fileHeader.Size > config.MaxImageSize {
		errors = append(errors, models.ValidationError{
			Field:   "image",
			Message: fmt.Sprintf("Image size must be less than %dMB", config.MaxImageSize/(1024*1024)),
		})
	}

	// Check file extension
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	validExt := false
	for _, validExtension := range ValidImageExtensions {
		if ext == validExtension {
			validExt = true
			break
		}
	}

	if !validExt {
		errors = append(errors, models.ValidationError{
			Field:   "image",
			Message: fmt.Sprintf("Invalid image format. Allowed formats: %s", strings.Join(ValidImageExtensions, ", ")),
		})
	}

	return errors
}

// ContentTypeForImage maps an image filename to its MIME type
func ContentTypeForImage(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
