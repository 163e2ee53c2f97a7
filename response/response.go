// Package response writes the API's JSON envelope:
// {"success": true, "data": ..., "message": ...} on success and
// {"success": false, "message": ...} or {"success": false, "errors": [...]}
// on failure.
package response

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type Envelope struct {
	Success bool         `json:"success"`
	Data    any          `json:"data,omitempty"`
	Message string       `json:"message,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

func OKMessage(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data, Message: message})
}

func Created(c *gin.Context, message string, data any) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data, Message: message})
}

// Fail aborts the request with status and a single message.
func Fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Envelope{Success: false, Message: message})
}

func BadRequest(c *gin.Context, message string) { Fail(c, http.StatusBadRequest, message) }

func NotFound(c *gin.Context, message string) { Fail(c, http.StatusNotFound, message) }

// ServerError answers 500 with a generic message; the cause is logged by the caller.
func ServerError(c *gin.Context, message string) { Fail(c, http.StatusInternalServerError, message) }

// Invalid answers 400 for a failed bind. Field level validator errors become
// the errors list; anything else (malformed JSON, wrong types) a message.
func Invalid(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, FieldError{Field: fieldPath(fe), Message: describe(fe)})
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, Envelope{Success: false, Errors: out})
		return
	}
	Fail(c, http.StatusBadRequest, "Invalid request body")
}

// fieldPath drops the top-level struct name: "PlaceOrderRequest.items[0].quantity"
// becomes "items[0].quantity".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return "Please enter a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s%s", fe.Field(), fe.Param(), unit(fe))
	case "max":
		return fmt.Sprintf("%s must be at most %s%s", fe.Field(), fe.Param(), unit(fe))
	case "gte":
		return fmt.Sprintf("%s must be >= %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "pincode":
		return "Pincode must be 6 digits"
	case "phone10":
		return "Phone must be 10 digits"
	case "strongpassword":
		return "Password must be at least 6 characters and contain an uppercase letter, a lowercase letter and a number"
	case "category":
		return "Invalid category"
	case "coupontype":
		return "Type must be percentage or fixed"
	case "url":
		return fmt.Sprintf("%s must be a valid URL", fe.Field())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}

func unit(fe validator.FieldError) string {
	switch fe.Kind() {
	case reflect.String:
		return " characters"
	case reflect.Slice, reflect.Array, reflect.Map:
		return " items"
	}
	return ""
}
