package handler

import (
	"net/http"

	"clubpos/internal/apierror"
	"clubpos/internal/middleware"
	"clubpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CajaHandler struct {
	cajas    service.CajaService
	catalogo service.CatalogoService
}

func NewCajaHandler(cajas service.CajaService, catalogo service.CatalogoService) *CajaHandler {
	return &CajaHandler{cajas: cajas, catalogo: catalogo}
}

// Listar returns the cajas the authenticated cashier may operate.
func (h *CajaHandler) Listar(c *gin.Context) {
	claims := middleware.GetClaims(c)
	usuarioID, err := claims.UsuarioID()
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Token inválido"))
		return
	}
	resp, err := h.cajas.ListarCajas(c.Request.Context(), usuarioID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Productos resolves the priced catalog of one caja.
func (h *CajaHandler) Productos(c *gin.Context) {
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
	resp, err := h.catalogo.ListarProductos(c.Request.Context(), usuarioID, cajaID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
