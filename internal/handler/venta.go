package handler

import (
	"net/http"

	"clubpos/internal/apierror"
	"clubpos/internal/dto"
	"clubpos/internal/middleware"
	"clubpos/internal/service"

	"github.com/gin-gonic/gin"
)

type VentaHandler struct{ svc service.VentaService }

func NewVentaHandler(svc service.VentaService) *VentaHandler { return &VentaHandler{svc: svc} }

// Registrar records a sale against the caja's open apertura from the
// session's staged cart.
func (h *VentaHandler) Registrar(c *gin.Context) {
	var req dto.RegistrarVentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, err := claims.UsuarioID()
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Token inválido"))
		return
	}
	resp, err := h.svc.Registrar(c.Request.Context(), usuarioID, claims.Token, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
