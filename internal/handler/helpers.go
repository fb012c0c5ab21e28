package handler

import (
	"errors"
	"net/http"
	"reflect"

	"clubpos/internal/apierror"
	"clubpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON inválido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// respondError maps domain errors onto HTTP statuses. Anything unrecognized
// is pushed onto the context for the ErrorHandler middleware (500, logged).
func respondError(c *gin.Context, err error) {
	var status int
	switch {
	case errors.Is(err, service.ErrCredenciales):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrSinPermiso):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrCajaNoEncontrada),
		errors.Is(err, service.ErrAperturaNoExiste),
		errors.Is(err, service.ErrAperturaNoAbierta):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrAperturaYaAbierta),
		errors.Is(err, service.ErrAperturaCerrada),
		errors.Is(err, service.ErrCarroVacio):
		status = http.StatusConflict
	case errors.Is(err, service.ErrProductoNoVendible),
		errors.Is(err, service.ErrPrecioRequerido),
		errors.Is(err, service.ErrVoucherRequerido),
		errors.Is(err, service.ErrVoucherInvalido):
		status = http.StatusBadRequest
	default:
		_ = c.Error(err)
		return
	}
	c.JSON(status, apierror.New(err.Error()))
}
