package handler

import (
	"net/http"

	"clubpos/internal/apierror"
	"clubpos/internal/dto"
	"clubpos/internal/middleware"
	"clubpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CarroHandler struct{ svc service.CarroService }

func NewCarroHandler(svc service.CarroService) *CarroHandler { return &CarroHandler{svc: svc} }

// Stage replaces the session's staged cart for the caja.
func (h *CarroHandler) Stage(c *gin.Context) {
	cajaID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID de caja inválido"))
		return
	}
	var req dto.StageCarroRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, err := claims.UsuarioID()
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Token inválido"))
		return
	}
	carro, err := h.svc.Stage(c.Request.Context(), usuarioID, claims.Token, cajaID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, carro)
}

// Restaurar returns the staged cart; empty when nothing is staged.
func (h *CarroHandler) Restaurar(c *gin.Context) {
	cajaID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID de caja inválido"))
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, err := claims.UsuarioID()
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Token inválido"))
		return
	}
	carro, err := h.svc.Restaurar(c.Request.Context(), usuarioID, claims.Token, cajaID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, carro)
}
