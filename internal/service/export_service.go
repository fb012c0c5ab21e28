package service

import (
	"context"
	"fmt"

	"clubpos/internal/model"
	"clubpos/internal/repository"

	"github.com/google/uuid"
	"github.com/tealeg/xlsx"
)

// ExportResult carries a built workbook plus its download filename.
type ExportResult struct {
	Filename string
	File     *xlsx.File
}

type ExportService interface {
	// ExportarApertura builds a one-row-per-sale workbook for a drawer cycle.
	ExportarApertura(ctx context.Context, usuarioID, aperturaID uuid.UUID) (*ExportResult, error)
}

type exportService struct {
	aperturaRepo repository.AperturaRepository
	ventaRepo    repository.VentaRepository
	cajas        CajaService
}

func NewExportService(
	aperturaRepo repository.AperturaRepository,
	ventaRepo repository.VentaRepository,
	cajas CajaService,
) ExportService {
	return &exportService{aperturaRepo: aperturaRepo, ventaRepo: ventaRepo, cajas: cajas}
}

func (s *exportService) ExportarApertura(ctx context.Context, usuarioID, aperturaID uuid.UUID) (*ExportResult, error) {
	apertura, err := s.aperturaRepo.FindByID(ctx, aperturaID)
	if err != nil {
		return nil, ErrAperturaNoExiste
	}
	if err := s.cajas.VerificarPermiso(ctx, usuarioID, apertura.CajaID); err != nil {
		return nil, err
	}

	ventas, err := s.ventaRepo.ListByApertura(ctx, aperturaID)
	if err != nil {
		return nil, err
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Ventas")
	if err != nil {
		return nil, fmt.Errorf("export: create sheet: %w", err)
	}

	headerRow := sheet.AddRow()
	for _, h := range []string{"Fecha", "Boleta", "Medio de Pago", "Voucher", "Total"} {
		headerRow.AddCell().SetValue(h)
	}

	montoStyle := xlsx.NewStyle()
	montoStyle.Alignment.Horizontal = "right"
	montoStyle.ApplyAlignment = true

	for _, v := range ventas {
		row := sheet.AddRow()

		// Rows migrated from the legacy schema carry a zero timestamp; the
		// apertura open time is the closest honest substitute.
		fecha := v.CreatedAt
		if fecha.IsZero() {
			fecha = apertura.OpenedAt
		}
		row.AddCell().SetValue(fecha.Format("02-01-2006 15:04"))

		if v.CorrelativoFlex > 0 {
			row.AddCell().SetValue(v.CorrelativoFlex)
		} else {
			row.AddCell().SetValue("")
		}

		metodo, voucher := "", ""
		if v.MedioPago != nil {
			metodo = v.MedioPago.Metodo
			voucher = v.MedioPago.Voucher
		}
		row.AddCell().SetValue(metodo)
		if voucher == "" || voucher == "0" {
			row.AddCell().SetValue("")
		} else {
			row.AddCell().SetValue(voucher)
		}

		totalCell := row.AddCell()
		total, _ := v.Total.Float64()
		totalCell.SetFloatWithFormat(total, "#,##0")
		totalCell.SetStyle(montoStyle)
	}

	totalRow := sheet.AddRow()
	totalRow.AddCell().SetValue("TOTAL")
	totalRow.AddCell().SetValue("")
	totalRow.AddCell().SetValue("")
	totalRow.AddCell().SetValue("")
	granTotal := sumaVentas(ventas)
	granCell := totalRow.AddCell()
	granCell.SetFloatWithFormat(granTotal, "#,##0")
	granCell.SetStyle(montoStyle)

	return &ExportResult{
		Filename: fmt.Sprintf("aperturas_%s.xlsx", aperturaID),
		File:     file,
	}, nil
}

func sumaVentas(ventas []model.Venta) float64 {
	total := 0.0
	for _, v := range ventas {
		f, _ := v.Total.Float64()
		total += f
	}
	return total
}
