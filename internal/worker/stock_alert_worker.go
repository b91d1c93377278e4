package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"crystalerp/internal/infra"

	"github.com/rs/zerolog/log"
)

// StockAlertPayload is the job envelope sent to QueueStockAlert when an
// allocation drops a material to or below its min-stock threshold.
type StockAlertPayload struct {
	MaterialID   string `json:"material_id"`
	MaterialName string `json:"material_name"`
	Remaining    int    `json:"remaining"`
	Threshold    int    `json:"threshold"`
	Unit         string `json:"unit"`
}

// StockAlertWorker emails low-stock notifications to the configured
// recipient. Alerts are best-effort: a failed send is logged, never retried
// into the allocation path.
type StockAlertWorker struct {
	mailer    *infra.Mailer
	recipient string
}

func NewStockAlertWorker(mailer *infra.Mailer, recipient string) *StockAlertWorker {
	return &StockAlertWorker{mailer: mailer, recipient: recipient}
}

func (w *StockAlertWorker) Process(_ context.Context, raw json.RawMessage) {
	var payload StockAlertPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("stock_alert_worker: invalid payload")
		return
	}
	if w.recipient == "" {
		log.Warn().Msg("stock_alert_worker: no recipient configured — skipping")
		return
	}

	subject := fmt.Sprintf("Low stock: %s", payload.MaterialName)
	body := fmt.Sprintf(
		"Material %s (%s) is down to %d %s, at or below its alert threshold of %d.",
		payload.MaterialName, payload.MaterialID,
		payload.Remaining, payload.Unit, payload.Threshold,
	)
	if err := w.mailer.SendAlert(w.recipient, subject, body); err != nil {
		log.Error().Err(err).Str("material", payload.MaterialName).Msg("stock_alert_worker: failed to send email")
		return
	}
	log.Info().Str("material", payload.MaterialName).Int("remaining", payload.Remaining).Msg("stock alert sent")
}
