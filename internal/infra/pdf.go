package infra

// pdf.go: PDF documents rendered with go-pdf/fpdf:
//   - the entry ticket handed to the driver (thermal receipt size)
//   - the shift-close report mailed to the administrator (A4)

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"cochera/internal/dto"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// PDFRenderer writes tickets to a response and shift reports to storagePath.
type PDFRenderer struct {
	storagePath string
	negocio     string
}

func NewPDFRenderer(storagePath string) *PDFRenderer {
	return &PDFRenderer{storagePath: storagePath, negocio: "Cochera"}
}

// ── Entry ticket ─────────────────────────────────────────────────────────────

// RenderTicket writes the entry ticket of t to w.
func (r *PDFRenderer) RenderTicket(w io.Writer, t *dto.TicketResponse) error {
	// 74mm × 120mm, close to thermal receipt paper
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 74, Ht: 120},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.SetAutoPageBreak(false, 4)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, tr(r.negocio), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, "Ticket de ingreso", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, tr(t.Placa), "1", 1, "C", false, 0, "")
	pdf.Ln(2)

	labelW := contentW * 0.42
	valueW := contentW - labelW
	fila := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 7)
		pdf.CellFormat(labelW, 4.5, tr(label), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 7)
		pdf.CellFormat(valueW, 4.5, tr(value), "", 1, "R", false, 0, "")
	}

	fila("Cliente:", t.Cliente)
	if t.Celular != "" {
		fila("Celular:", t.Celular)
	}
	fila("Ingreso:", t.FechaEntrada+" "+t.HoraEntrada)
	if t.FechaHasta != nil {
		hasta := *t.FechaHasta
		if t.HoraSalidaEsperada != nil {
			hasta += " " + *t.HoraSalidaEsperada
		}
		fila("Salida pactada:", hasta)
	}
	fila("Días:", fmt.Sprintf("%d", t.Dias))
	fila("Precio por día:", moneda(t.PrecioDia))

	pdf.Ln(1)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(1)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(labelW, 6, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(valueW, 6, moneda(t.Monto), "", 1, "R", false, 0, "")
	fila("Adelanto:", moneda(t.Adelanto))
	if t.PagoCompletoAdelantado {
		fila("Estado:", "PAGADO")
	} else {
		fila("Saldo:", moneda(decimal.Max(decimal.Zero, t.Monto.Sub(t.Adelanto))))
	}
	if t.DejoLlave {
		fila("Llave:", "Dejó la llave")
	}
	if t.Observaciones != "" {
		pdf.Ln(1)
		pdf.SetFont("Helvetica", "I", 6.5)
		pdf.MultiCell(contentW, 3.5, tr(t.Observaciones), "", "L", false)
	}

	pdf.Ln(2)
	pdf.SetFont("Helvetica", "", 6.5)
	pdf.CellFormat(contentW, 4, tr("Atendido por "+t.Trabajador), "", 1, "C", false, 0, "")
	pdf.CellFormat(contentW, 4, tr("Conserve este ticket para retirar su vehículo"), "", 1, "C", false, 0, "")

	return pdf.Output(w)
}

// ── Shift report ─────────────────────────────────────────────────────────────

// GenerateReporteTurno writes the closing report of a shift under storagePath
// (created if needed) and returns the file path.
func (r *PDFRenderer) GenerateReporteTurno(d *dto.DetalleTurnoResponse) (string, error) {
	if err := os.MkdirAll(r.storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	filePath := filepath.Join(r.storagePath, fmt.Sprintf("turno_%s.pdf", d.Turno.ID))

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(r.negocio+" - Reporte de turno"), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Trabajador: %s   Turno: %s", d.Turno.Trabajador, d.Turno.TipoTurno)), "", 1, "L", false, 0, "")
	fin := "-"
	if d.Turno.ClosedAt != nil {
		fin = *d.Turno.ClosedAt
	}
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Inicio: %s   Fin: %s", d.Turno.OpenedAt, fin)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Autos ingresados: %d   Autos salieron: %d", d.AutosIngresados, d.AutosSalieron)), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	// ── Arqueo ───────────────────────────────────────────────────────────────
	declEfectivo := valorOCero(d.Turno.EfectivoDeclarado)
	declElectronico := valorOCero(d.Turno.ElectronicoDeclarado)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(60, 7, "Concepto", "B", 0, "L", false, 0, "")
	pdf.CellFormat(40, 7, "Sistema", "B", 0, "R", false, 0, "")
	pdf.CellFormat(40, 7, "Declarado", "B", 0, "R", false, 0, "")
	pdf.CellFormat(40, 7, "Diferencia", "B", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	arqueo := func(concepto string, sistema, declarado decimal.Decimal) {
		pdf.CellFormat(60, 6, tr(concepto), "", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, moneda(sistema), "", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, moneda(declarado), "", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, moneda(declarado.Sub(sistema)), "", 1, "R", false, 0, "")
	}
	arqueo("Efectivo", d.Totales.Efectivo, declEfectivo)
	arqueo("Electrónico", d.Totales.Electronico, declElectronico)
	pdf.SetFont("Helvetica", "B", 10)
	arqueo("Total", d.Totales.Total, declEfectivo.Add(declElectronico))
	pdf.Ln(4)

	// ── Por tipo ─────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(80, 7, "Tipo de movimiento", "B", 0, "L", false, 0, "")
	pdf.CellFormat(40, 7, "Cantidad", "B", 0, "R", false, 0, "")
	pdf.CellFormat(60, 7, "Monto", "B", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, t := range d.PorTipo {
		pdf.CellFormat(80, 6, t.Tipo, "", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%d", t.Cantidad), "", 0, "R", false, 0, "")
		pdf.CellFormat(60, 6, moneda(t.Monto), "", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	// ── Movimientos ──────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(35, 6, "Fecha", "B", 0, "L", false, 0, "")
	pdf.CellFormat(35, 6, "Tipo", "B", 0, "L", false, 0, "")
	pdf.CellFormat(25, 6, "Placa", "B", 0, "L", false, 0, "")
	pdf.CellFormat(30, 6, tr("Método"), "B", 0, "L", false, 0, "")
	pdf.CellFormat(25, 6, "Monto", "B", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	for _, m := range d.Movimientos {
		pdf.CellFormat(35, 5, m.CreatedAt, "", 0, "L", false, 0, "")
		pdf.CellFormat(35, 5, m.Tipo, "", 0, "L", false, 0, "")
		pdf.CellFormat(25, 5, tr(m.Placa), "", 0, "L", false, 0, "")
		pdf.CellFormat(30, 5, tr(m.MetodoPago), "", 0, "L", false, 0, "")
		pdf.CellFormat(25, 5, moneda(m.Monto), "", 1, "R", false, 0, "")
	}

	if d.Turno.Observaciones != nil && *d.Turno.Observaciones != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.MultiCell(0, 5, tr("Observaciones: "+*d.Turno.Observaciones), "", "L", false)
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}

func moneda(d decimal.Decimal) string { return "S/ " + d.StringFixed(2) }

func valorOCero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
