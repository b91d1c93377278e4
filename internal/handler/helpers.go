package handler

import (
	"errors"
	"net/http"
	"reflect"

	"crystalerp/internal/apierror"
	"crystalerp/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
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
		c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()))
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

// writeServiceError maps engine errors to HTTP statuses. Concurrency and
// consistency conflicts are 409s so clients can retry; composition rejects
// are 422s; anything unclassified stays a 400 with the error text.
func writeServiceError(c *gin.Context, err error) {
	var insufficientErr *service.InsufficientStockError
	var mismatchErr *service.LedgerMismatchError
	var compositionErr *service.InvalidCompositionError
	var missingErr *service.MissingMaterialError

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, apierror.New("not found"))
	case errors.As(err, &insufficientErr), errors.As(err, &mismatchErr):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	case errors.As(err, &compositionErr):
		c.JSON(http.StatusUnprocessableEntity, apierror.New(err.Error()))
	case errors.As(err, &missingErr):
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
	default:
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	}
}
