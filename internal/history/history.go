// Package history records every characteristic notification to InfluxDB.
//
// The sink is an accessory.Notifier, so it sits in the same fan-out as the
// MQTT adapter and the status tracker. Writes are non-blocking and batched by
// the client library; failures surface asynchronously and are logged.
package history

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/sweeney/lock-controller/internal/accessory"
	"github.com/sweeney/lock-controller/internal/config"
)

// Measurement is the InfluxDB measurement name for notifications.
const Measurement = "characteristic"

const (
	defaultConnectTimeout = 10 * time.Second
	millisecondsPerSecond = 1000
)

// pointWriter is the subset of api.WriteAPI the sink uses.
type pointWriter interface {
	WritePoint(point *write.Point)
	Flush()
}

// Sink writes notifications as InfluxDB points.
type Sink struct {
	client influxdb2.Client
	writer pointWriter
	serial string
	log    *slog.Logger
	now    func() time.Time
}

// Connect creates a Sink for the given accessory serial number. It returns
// ErrDisabled when the sink is turned off and ErrConnectionFailed when the
// server cannot be reached.
func Connect(cfg config.InfluxDBConfig, serial string, log *slog.Logger) (*Sink, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	flushInterval := cfg.FlushInterval
	if flushInterval <= 0 {
		flushInterval = 10
	}

	client := influxdb2.NewClientWithOptions(
		cfg.URL,
		cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(uint(batchSize)).
			SetFlushInterval(uint(flushInterval)*millisecondsPerSecond),
	)

	ctx, cancel := context.WithTimeout(context.Background(), defaultConnectTimeout)
	defer cancel()

	healthy, err := client.Ping(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: ping failed: %w", ErrConnectionFailed, err)
	}
	if !healthy {
		client.Close()
		return nil, fmt.Errorf("%w: server not healthy", ErrConnectionFailed)
	}

	writeAPI := client.WriteAPI(cfg.Org, cfg.Bucket)
	s := newSink(writeAPI, serial, log)
	s.client = client

	go s.handleWriteErrors(writeAPI.Errors())

	return s, nil
}

func newSink(w pointWriter, serial string, log *slog.Logger) *Sink {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Sink{
		writer: w,
		serial: serial,
		log:    log,
		now:    time.Now,
	}
}

func (s *Sink) handleWriteErrors(errs <-chan error) {
	for err := range errs {
		s.log.Error("history write failed", "error", err)
	}
}

// Notify queues one point for the characteristic change.
func (s *Sink) Notify(c accessory.Characteristic, value int) {
	point := write.NewPoint(
		Measurement,
		map[string]string{
			"serial":         s.serial,
			"characteristic": string(c),
		},
		map[string]interface{}{
			"value": value,
		},
		s.now(),
	)
	s.writer.WritePoint(point)
}

// Close flushes pending points and releases the client.
func (s *Sink) Close() error {
	s.writer.Flush()
	if s.client != nil {
		s.client.Close()
	}
	return nil
}
