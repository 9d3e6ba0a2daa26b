package worker

// reporte_turno_worker.go
// Processes QueueReporteTurno: renders the closing report of a shift to PDF
// and hands it to the email queue when a report address is configured.

import (
	"context"
	"encoding/json"
	"fmt"

	"cochera/internal/dto"
	"cochera/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ReporteTurnoPayload is the job envelope sent to QueueReporteTurno.
type ReporteTurnoPayload struct {
	TurnoID string `json:"turno_id"`
}

type TurnoDetalle interface {
	Detalle(ctx context.Context, id uuid.UUID) (*dto.DetalleTurnoResponse, error)
}

type ConfigLector interface {
	Texto(ctx context.Context, clave, def string) string
}

type ReporteRenderer interface {
	GenerateReporteTurno(d *dto.DetalleTurnoResponse) (string, error)
}

type EmailEncolador interface {
	EnqueueEmail(ctx context.Context, payload EmailJobPayload) error
}

type ReporteTurnoWorker struct {
	turnos   TurnoDetalle
	config   ConfigLector
	renderer ReporteRenderer
	emails   EmailEncolador
}

func NewReporteTurnoWorker(turnos TurnoDetalle, config ConfigLector, renderer ReporteRenderer, emails EmailEncolador) *ReporteTurnoWorker {
	return &ReporteTurnoWorker{turnos: turnos, config: config, renderer: renderer, emails: emails}
}

func (w *ReporteTurnoWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload ReporteTurnoPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("reporte_turno: invalid payload: %w", err)
	}
	turnoID, err := uuid.Parse(payload.TurnoID)
	if err != nil {
		return fmt.Errorf("reporte_turno: invalid turno_id %q", payload.TurnoID)
	}

	detalle, err := w.turnos.Detalle(ctx, turnoID)
	if err != nil {
		return fmt.Errorf("reporte_turno: load turno: %w", err)
	}

	pdfPath, err := w.renderer.GenerateReporteTurno(detalle)
	if err != nil {
		return err
	}
	log.Info().Str("pdf", pdfPath).Str("turno_id", payload.TurnoID).Msg("reporte_turno: PDF generated")

	destino := w.config.Texto(ctx, model.ConfEmailReportes, "")
	if destino == "" {
		return nil
	}

	job := EmailJobPayload{
		ToEmail: destino,
		Subject: fmt.Sprintf("Cierre de turno %s - %s", detalle.Turno.TipoTurno, detalle.Turno.Trabajador),
		Body: fmt.Sprintf("Turno cerrado por %s.\nEfectivo: S/ %s\nElectrónico: S/ %s\nTotal: S/ %s",
			detalle.Turno.Trabajador,
			detalle.Totales.Efectivo.StringFixed(2),
			detalle.Totales.Electronico.StringFixed(2),
			detalle.Totales.Total.StringFixed(2)),
		PDFPath: pdfPath,
	}
	if err := w.emails.EnqueueEmail(ctx, job); err != nil {
		return fmt.Errorf("reporte_turno: enqueue email: %w", err)
	}
	log.Info().Str("email", destino).Str("turno_id", payload.TurnoID).Msg("reporte_turno: email job enqueued")
	return nil
}
