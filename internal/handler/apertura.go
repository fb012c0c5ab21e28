package handler

import (
	"fmt"
	"net/http"

	"clubpos/internal/apierror"
	"clubpos/internal/dto"
	"clubpos/internal/middleware"
	"clubpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AperturaHandler struct {
	svc    service.AperturaService
	export service.ExportService
}

func NewAperturaHandler(svc service.AperturaService, export service.ExportService) *AperturaHandler {
	return &AperturaHandler{svc: svc, export: export}
}

func (h *AperturaHandler) Abrir(c *gin.Context) {
	var req dto.AbrirAperturaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, err := claims.UsuarioID()
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Token inválido"))
		return
	}
	resp, err := h.svc.Abrir(c.Request.Context(), usuarioID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *AperturaHandler) Cerrar(c *gin.Context) {
	aperturaID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID de apertura inválido"))
		return
	}
	var req dto.CerrarAperturaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, err := claims.UsuarioID()
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Token inválido"))
		return
	}
	resp, err := h.svc.Cerrar(c.Request.Context(), usuarioID, aperturaID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Activa returns the open apertura of a caja, 404 when the drawer is closed.
func (h *AperturaHandler) Activa(c *gin.Context) {
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
	resp, err := h.svc.Activa(c.Request.Context(), usuarioID, cajaID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AperturaHandler) Listar(c *gin.Context) {
	claims := middleware.GetClaims(c)
	usuarioID, err := claims.UsuarioID()
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Token inválido"))
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), usuarioID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AperturaHandler) Total(c *gin.Context) {
	aperturaID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID de apertura inválido"))
		return
	}
	resp, err := h.svc.Total(c.Request.Context(), aperturaID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Exportar streams the apertura's sales as an xlsx attachment.
func (h *AperturaHandler) Exportar(c *gin.Context) {
	aperturaID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID de apertura inválido"))
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, err := claims.UsuarioID()
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Token inválido"))
		return
	}
	result, err := h.export.ExportarApertura(c.Request.Context(), usuarioID, aperturaID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", result.Filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Transfer-Encoding", "binary")
	if err := result.File.Write(c.Writer); err != nil {
		_ = c.Error(err)
	}
}
