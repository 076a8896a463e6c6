// Package csvio reads the delimited event stream and writes the final
// account table. It is mechanical plumbing: every row either becomes a
// typed event or is dropped before the core sees it.
package csvio

import (
	"encoding/csv"
	"io"
	"log/slog"
	"strings"

	"payment_engine/internal/domain"
	"payment_engine/pkg/metrics"
	"payment_engine/pkg/validator"
)

// Input columns, in order: type, client, tx, amount. A header row is
// expected; dispute-action rows may omit the amount column entirely.
type Reader struct {
	csv        *csv.Reader
	validator  *validator.EventValidator
	metrics    *metrics.Collector
	logger     *slog.Logger
	headerRead bool
}

func NewReader(r io.Reader, collector *metrics.Collector, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	cr := csv.NewReader(r)
	// Dispute rows legitimately carry three columns instead of four.
	cr.FieldsPerRecord = -1
	return &Reader{
		csv:       cr,
		validator: validator.NewEventValidator(),
		metrics:   collector,
		logger:    logger,
	}
}

// Next returns the next well-formed event. Malformed rows are counted,
// logged at debug, and skipped. io.EOF signals end of input.
func (r *Reader) Next() (domain.Event, error) {
	for {
		fields, err := r.csv.Read()
		if err != nil {
			return nil, err
		}
		if !r.headerRead {
			r.headerRead = true
			continue
		}
		if len(fields) < 3 {
			r.drop(fields, "too few columns")
			continue
		}

		rec := validator.Record{
			Type:   strings.TrimSpace(fields[0]),
			Client: strings.TrimSpace(fields[1]),
			TxID:   strings.TrimSpace(fields[2]),
		}
		if len(fields) > 3 {
			rec.Amount = strings.TrimSpace(fields[3])
		}

		event, err := r.validator.ParseEvent(rec)
		if err != nil {
			r.drop(fields, err.Error())
			continue
		}
		return event, nil
	}
}

func (r *Reader) drop(fields []string, reason string) {
	r.metrics.EventDropped("malformed_row")
	r.logger.Debug("Row dropped",
		slog.String("row", strings.Join(fields, ",")),
		slog.String("reason", reason))
}
