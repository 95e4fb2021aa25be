package notifier

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/skycast-dev/skycast/internal/weather/types"
)

// LogObserver writes each published report to a structured logger.
type LogObserver struct {
	logger *zap.Logger
}

func NewLogObserver(logger *zap.Logger) *LogObserver {
	return &LogObserver{logger: logger}
}

func (o *LogObserver) Update(report types.Report) error {
	o.logger.Info("weather report published",
		zap.String("location", report.Location.Name),
		zap.Float64("temperature", report.Temperature),
		zap.Int("humidity", report.Humidity),
		zap.String("condition", report.Condition.String()),
		zap.Time("timestamp", report.Timestamp),
	)
	return nil
}

// WriterObserver prints the summary of each published report to w, one line
// per report.
type WriterObserver struct {
	w io.Writer
}

func NewWriterObserver(w io.Writer) *WriterObserver {
	return &WriterObserver{w: w}
}

func (o *WriterObserver) Update(report types.Report) error {
	_, err := fmt.Fprintln(o.w, report.Summary())
	return err
}
