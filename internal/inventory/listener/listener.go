package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/inventory"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/segmentio/kafka-go"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// SalesListener records POS sales as SALE movements out of the store.
type SalesListener struct {
	consumer MessageReader
	uc       inventory.UseCase
	logger   logger.ZapLogger
}

func NewSalesListener(consumer MessageReader, uc inventory.UseCase, logger logger.ZapLogger) *SalesListener {
	return &SalesListener{
		consumer: consumer,
		uc:       uc,
		logger:   logger,
	}
}

func (l *SalesListener) Start(ctx context.Context) {
	l.logger.Info("Starting sales Kafka listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping sales Kafka listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}
			if err := l.ProcessMessage(ctx, msg.Value); err != nil {
				l.logger.Error("Failed to process sale", zap.Error(err))
			}
		}
	}
}

type SaleRecordedEvent struct {
	EventID   string      `json:"event_id"`
	EventType string      `json:"event_type"`
	Payload   SalePayload `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

type SalePayload struct {
	ID             string            `json:"id"`
	OrganizationID string            `json:"organization_id"`
	CashierID      string            `json:"cashier_id"`
	Items          []SaleItemPayload `json:"items"`
}

type SaleItemPayload struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// ProcessMessage applies every line of a SaleRecorded event; failures of single
// lines do not stop the others and are returned together. Lines of the same
// product are booked as one SALE keyed by the sale ID, so a redelivered event
// only books the lines that are still missing.
func (l *SalesListener) ProcessMessage(ctx context.Context, value []byte) error {
	var event SaleRecordedEvent
	if err := json.Unmarshal(value, &event); err != nil {
		return err
	}
	if event.EventType != "SaleRecorded" {
		return nil
	}

	l.logger.Info("Processing SaleRecorded event", zap.String("sale_id", event.Payload.ID))

	var errs error
	for _, item := range mergeLines(event.Payload.Items) {
		input := &dto.StockChangeInput{
			OrganizationID: event.Payload.OrganizationID,
			UserID:         "system",
			ProductID:      item.ProductID,
			Location:       model.LocationStore,
			Quantity:       item.Quantity,
			Notes:          "POS sale",
			ReferenceType:  "sale",
			ReferenceID:    event.Payload.ID,
		}
		if _, err := l.uc.Reduce(ctx, input); err != nil {
			l.logger.Error("Failed to record sale line",
				zap.String("sale_id", event.Payload.ID),
				zap.String("product_id", item.ProductID),
				zap.Error(err),
			)
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

func mergeLines(items []SaleItemPayload) []SaleItemPayload {
	merged := make([]SaleItemPayload, 0, len(items))
	index := make(map[string]int, len(items))
	for _, it := range items {
		if i, ok := index[it.ProductID]; ok {
			merged[i].Quantity += it.Quantity
			continue
		}
		index[it.ProductID] = len(merged)
		merged = append(merged, it)
	}
	return merged
}
