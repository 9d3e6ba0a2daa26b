package handler

import (
	"errors"
	"net/http"
	"reflect"

	"cochera/internal/apierror"
	"cochera/internal/middleware"
	"cochera/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
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
// Returns false and writes the error response if validation fails:
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
			return false
		}
		fields := make(map[string]string)
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// bindQuery binds query-string filters.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Parametros invalidos: "+err.Error()))
		return false
	}
	return true
}

// respondError maps service error kinds to HTTP statuses. Anything unexpected
// is attached to the context so ErrorHandler logs it and answers 500.
func respondError(c *gin.Context, err error) {
	var svcErr *service.Error
	if !errors.As(err, &svcErr) {
		_ = c.Error(err)
		return
	}
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrValidacion):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrConflicto):
		status = http.StatusConflict
	case errors.Is(err, service.ErrNoEncontrado):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrSinTurno):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrCredenciales):
		status = http.StatusUnauthorized
	}
	c.JSON(status, apierror.New(svcErr.Msg))
}

// paramID parses the :id path parameter, answering 400 when malformed.
func paramID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return uuid.Nil, false
	}
	return id, true
}

// actorFrom builds the service actor from the JWT claims set by JWTAuth.
func actorFrom(c *gin.Context) (service.Actor, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Autenticacion requerida"))
		return service.Actor{}, false
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Token mal formado"))
		return service.Actor{}, false
	}
	actor := service.Actor{TrabajadorID: id, Nombre: claims.Nombre, Rol: claims.Rol}
	if claims.TurnoID != nil {
		turnoID, err := uuid.Parse(*claims.TurnoID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, apierror.New("Token mal formado"))
			return service.Actor{}, false
		}
		actor.TurnoID = &turnoID
	}
	return actor, true
}
