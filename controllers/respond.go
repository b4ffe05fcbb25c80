package controllers

import (
	"errors"
	"log"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"discovery-api/apperrors"
	"discovery-api/models"
)

// respondError logs the cause of err and writes the client-safe message.
func respondError(c *gin.Context, err error) {
	status := apperrors.Status(err)
	msg := apperrors.Message(err, http.StatusText(status))
	if status >= http.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, gin.H{"error": msg})
}

// bindJSON decodes the body into req. Malformed JSON and failed binding
// rules are answered with 400 and false is returned.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingMessage(err)})
		return false
	}
	return true
}

func bindingMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request payload"
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return "Missing required fields"
	case "email":
		return "Invalid email format"
	case "role":
		return "Invalid role"
	case "user_status":
		return "Invalid status"
	case "project_status":
		return "Invalid project status"
	case "deliverable_status":
		return "Invalid deliverable status"
	case "priority":
		return "Invalid priority"
	case "min", "max":
		return "Invalid " + fe.Field()
	default:
		return "Invalid request payload"
	}
}

var registerOnce sync.Once

// RegisterValidators installs the domain binding tags on gin's validator.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		mustRegister(v, "role", func(fl validator.FieldLevel) bool {
			return models.Role(fl.Field().String()).Valid()
		})
		mustRegister(v, "user_status", func(fl validator.FieldLevel) bool {
			return models.UserStatus(fl.Field().String()).Valid()
		})
		mustRegister(v, "project_status", func(fl validator.FieldLevel) bool {
			return models.ProjectStatus(fl.Field().String()).Valid()
		})
		mustRegister(v, "deliverable_status", func(fl validator.FieldLevel) bool {
			return models.DeliverableStatus(fl.Field().String()).Valid()
		})
		mustRegister(v, "priority", func(fl validator.FieldLevel) bool {
			return models.NotificationPriority(fl.Field().String()).Valid()
		})
	})
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

func message(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"message": msg})
}
