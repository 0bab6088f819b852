package helper

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"newsroom-cms/models"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"gopkg.in/go-playground/validator.v9"
	en_translations "gopkg.in/go-playground/validator.v9/translations/en"
)

// HTTPHelper ...
type HTTPHelper struct {
	Validate   *validator.Validate
	Translator ut.Translator
}

// NewHTTPHelper builds a validator whose messages are translated to English
// and keyed by the request's JSON or form field names.
func NewHTTPHelper() *HTTPHelper {
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")

	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
	_ = en_translations.RegisterDefaultTranslations(validate, trans)

	return &HTTPHelper{Validate: validate, Translator: trans}
}

// GetStatusCode ...
func (u *HTTPHelper) GetStatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if appErr, ok := models.AsAppError(err); ok {
		return appErr.Body().Status
	}
	return http.StatusInternalServerError
}

// SendResponse ...
// Send a formatted service result to consumers.
func (u *HTTPHelper) SendResponse(c *gin.Context, res models.Response) {
	c.JSON(res.Status, res)
}

// SendSuccess ...
func (u *HTTPHelper) SendSuccess(c *gin.Context, message string, data interface{}) {
	u.SendResponse(c, models.Response{Status: http.StatusOK, Data: data, Message: message})
}

// SendError ...
// Send error response to consumers. Errors that are not domain errors are
// reported as 500 without leaking their text.
func (u *HTTPHelper) SendError(c *gin.Context, err error) {
	body := models.NewErrorInternalServer(err).Body()
	if appErr, ok := models.AsAppError(err); ok {
		body = appErr.Body()
	}
	c.JSON(body.Status, models.ErrorResponse{Error: body})
}

// SendBadRequest ...
func (u *HTTPHelper) SendBadRequest(c *gin.Context, message string, data []map[string]string) {
	u.SendError(c, models.NewErrorValidation(message, data))
}

// SendUnauthorizedError ...
func (u *HTTPHelper) SendUnauthorizedError(c *gin.Context, message string) {
	u.SendError(c, models.NewErrorUnauthorized(message))
}

// SendValidationError ...
// Send validation error response to consumers.
func (u *HTTPHelper) SendValidationError(c *gin.Context, validationErrors validator.ValidationErrors) {
	u.SendError(c, u.ValidationError(validationErrors))
}

// ValidationError converts validator output to a 400 domain error.
func (u *HTTPHelper) ValidationError(validationErrors validator.ValidationErrors) models.ErrorValidation {
	errorTranslation := validationErrors.Translate(u.Translator)
	data := make([]map[string]string, 0, len(validationErrors))
	for _, err := range validationErrors {
		errKey := Underscore(err.Field())
		data = append(data, map[string]string{errKey: errorTranslation[err.Namespace()]})
	}
	return models.NewErrorValidation(models.MsgInvalidData, data)
}

// ValidateStruct runs the validator and returns a domain error on failure.
func (u *HTTPHelper) ValidateStruct(obj interface{}) error {
	err := u.Validate.Struct(obj)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return u.ValidationError(validationErrors)
	}
	return models.NewErrorValidation(models.MsgInvalidData, nil)
}

// BindJSON decodes and validates a JSON body, answering the request itself
// when that fails.
func (u *HTTPHelper) BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		u.SendBadRequest(c, models.MsgBadRequest, []map[string]string{{"body": err.Error()}})
		return false
	}
	return u.validate(c, obj)
}

// BindQuery decodes and validates query parameters.
func (u *HTTPHelper) BindQuery(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		u.SendBadRequest(c, models.MsgBadRequest, []map[string]string{{"query": err.Error()}})
		return false
	}
	return u.validate(c, obj)
}

// BindForm decodes and validates a multipart or urlencoded form.
func (u *HTTPHelper) BindForm(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBind(obj); err != nil {
		u.SendBadRequest(c, models.MsgBadRequest, []map[string]string{{"body": err.Error()}})
		return false
	}
	return u.validate(c, obj)
}

func (u *HTTPHelper) validate(c *gin.Context, obj interface{}) bool {
	if err := u.ValidateStruct(obj); err != nil {
		u.SendError(c, err)
		return false
	}
	return true
}
