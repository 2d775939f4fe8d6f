// Package request binds and validates request bodies, writing the 400
// response itself when the body is unusable.
package request

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"bookreview/internal/pkg/response"
	"bookreview/internal/pkg/validator"
)

// BindJSON decodes the JSON body into dst and validates it.
func BindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindWith(dst, binding.JSON); err != nil {
		if errors.Is(err, io.EOF) {
			response.ValidationError(c, map[string]string{"non_field_errors": "No data provided."})
			return false
		}
		response.Error(c, http.StatusBadRequest, "PARSE_ERROR", "JSON parse error: "+err.Error())
		return false
	}
	return Validate(c, dst)
}

// BindForm decodes a multipart or urlencoded form into dst and validates it.
func BindForm(c *gin.Context, dst any) bool {
	if err := c.ShouldBind(dst); err != nil {
		response.Error(c, http.StatusBadRequest, "PARSE_ERROR", "Form parse error: "+err.Error())
		return false
	}
	return Validate(c, dst)
}

func Validate(c *gin.Context, v any) bool {
	if errs := validator.Validate(v); errs != nil {
		response.ValidationError(c, errs)
		return false
	}
	return true
}

// IsMultipart reports whether the body is a form rather than JSON.
func IsMultipart(c *gin.Context) bool {
	ct := c.ContentType()
	return ct == binding.MIMEMultipartPOSTForm || ct == binding.MIMEPOSTForm
}

// ParamID parses a positive integer path parameter.
func ParamID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
