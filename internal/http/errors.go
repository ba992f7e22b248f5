package http

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"anniversary-api/internal/service"
)

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var registerTagNamesOnce sync.Once

// useJSONFieldNames hace que los errores del validador usen el nombre JSON del campo.
func useJSONFieldNames() {
	registerTagNamesOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	})
}

// respondValidation traduce errores de binding o de servicio a un 400 uniforme.
func respondValidation(c *gin.Context, err error) {
	details := validationDetails(err)
	c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": details})
}

func validationDetails(err error) []fieldError {
	var svcErr *service.ValidationError
	if errors.As(err, &svcErr) {
		return []fieldError{{Field: svcErr.Field, Message: svcErr.Message}}
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []fieldError{{Field: "body", Message: "Invalid request body"}}
	}
	details := make([]fieldError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, fieldError{Field: fe.Field(), Message: validationMessage(fe)})
	}
	return details
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + " characters"
	case "gt":
		return fe.Field() + " must be greater than " + fe.Param()
	default:
		return fe.Field() + " is invalid"
	}
}

// parseID lee el parametro :id como entero positivo.
func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return id, true
}
