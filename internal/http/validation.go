package http

import (
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

type registerRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	FullName string `json:"fullName" form:"fullName" binding:"required"`
	Email    string `json:"email" form:"email" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" form:"email" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" form:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" form:"oldPassword" binding:"required,min=6"`
	NewPassword string `json:"newPassword" form:"newPassword" binding:"required,min=6"`
}

type updateBioRequest struct {
	Bio string `json:"bio" form:"bio" binding:"required,min=20,max=150"`
}

type createPostRequest struct {
	Title   string `form:"title" json:"title" binding:"required"`
	Content string `form:"content" json:"content" binding:"required"`
	Tags    string `form:"tags" json:"tags"`
}

type updatePostRequest struct {
	Title   string `json:"title" form:"title" binding:"required,min=10,max=40"`
	Content string `json:"content" form:"content" binding:"required,min=50,max=500"`
}

var registerTagNames sync.Once

// useJSONFieldNames makes validation errors report the client facing field names.
func useJSONFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return field.Name
			}
			return name
		})
	})
}

// bindRequest decodes the body into dst and validates it. The returned error
// carries the message of the first failing field.
func bindRequest(c *gin.Context, dst any) error {
	err := c.ShouldBind(dst)
	if errors.Is(err, io.EOF) {
		// an empty body still reports which field is missing
		err = binding.Validator.ValidateStruct(dst)
	}
	if err == nil {
		return nil
	}

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return ErrPayloadTooLarge
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return badRequest(validationMessage(verrs[0]))
	}
	return &APIError{Status: http.StatusBadRequest, Message: ErrMalformedBody.Error(), Err: err}
}

func validationMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return field + " must be at least " + fe.Param() + " characters"
	case "max":
		return field + " must not be more than " + fe.Param() + " characters"
	case "email":
		return "invalid email address"
	default:
		return field + " is invalid"
	}
}
