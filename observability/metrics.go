package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"borrowbot/config"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// MetricsProvider records the bot's counters through OpenTelemetry
type MetricsProvider struct {
	config        *config.Config
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	mu            sync.RWMutex

	accountsProcessedCounter metric.Int64Counter
	transferAttemptsCounter  metric.Int64Counter
	pricePollsCounter        metric.Int64Counter
}

// NewMetricsProvider creates a new metrics provider
func NewMetricsProvider(cfg *config.Config) *MetricsProvider {
	return &MetricsProvider{
		config: cfg,
	}
}

// Initialize sets up the exporter selected by the config. A disabled provider records nothing.
func (mp *MetricsProvider) Initialize(ctx context.Context) error {
	if !mp.config.OTelEnabled {
		log.Info("OpenTelemetry metrics disabled")
		return nil
	}

	var exporter sdkmetric.Exporter
	var err error
	switch mp.config.OTelExporterType {
	case "console":
		exporter, err = stdoutmetric.New()
		if err != nil {
			return fmt.Errorf("failed to create console exporter: %w", err)
		}
		log.Info("Using console metric exporter")

	case "otlp":
		dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		exporter, err = otlpmetricgrpc.New(dialCtx,
			otlpmetricgrpc.WithEndpoint(mp.config.OTelOTLPEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		log.WithField("endpoint", mp.config.OTelOTLPEndpoint).Info("Using OTLP metric exporter")

	case "none":
		log.Info("Metrics export disabled (exporter_type='none')")
		return nil

	default:
		return fmt.Errorf("unknown exporter type: %s", mp.config.OTelExporterType)
	}

	reader := sdkmetric.NewPeriodicReader(
		exporter,
		sdkmetric.WithInterval(time.Duration(mp.config.OTelExportIntervalMillis)*time.Millisecond),
	)
	if err := mp.start(reader); err != nil {
		return err
	}

	log.Info("Metrics provider initialized successfully")
	return nil
}

// start builds the meter provider on reader and creates the instruments
func (mp *MetricsProvider) start(reader sdkmetric.Reader) error {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(mp.config.OTelServiceName),
			attribute.String("environment", mp.config.Environment),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	meter := provider.Meter("borrowbot")

	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.meterProvider = provider
	mp.meter = meter
	if err := mp.createInstruments(); err != nil {
		mp.meterProvider = nil
		return fmt.Errorf("failed to create instruments: %w", err)
	}

	otel.SetMeterProvider(provider)
	return nil
}

func (mp *MetricsProvider) createInstruments() error {
	var err error

	mp.accountsProcessedCounter, err = mp.meter.Int64Counter(
		AccountsProcessedTotal,
		metric.WithDescription("Accounts attempted by a daily batch scheduler, by outcome"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create accounts processed counter: %w", err)
	}

	mp.transferAttemptsCounter, err = mp.meter.Int64Counter(
		TransferAttemptsTotal,
		metric.WithDescription("Ledger transfer attempts made by the transfer queue, by outcome"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create transfer attempts counter: %w", err)
	}

	mp.pricePollsCounter, err = mp.meter.Int64Counter(
		PricePollsTotal,
		metric.WithDescription("Price oracle polls, by outcome"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create price polls counter: %w", err)
	}

	return nil
}

// Shutdown flushes and stops the exporter
func (mp *MetricsProvider) Shutdown(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.meterProvider != nil {
		return mp.meterProvider.Shutdown(ctx)
	}
	return nil
}

// RecordAccountOutcome counts one account attempt of operation
func (mp *MetricsProvider) RecordAccountOutcome(ctx context.Context, operation, outcome string) {
	if !mp.isEnabled() {
		return
	}

	mp.accountsProcessedCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String(LabelOperation, operation),
			attribute.String(LabelOutcome, outcome),
		),
	)
}

// RecordTransferAttempt counts one transfer attempt
func (mp *MetricsProvider) RecordTransferAttempt(ctx context.Context, outcome string) {
	if !mp.isEnabled() {
		return
	}

	mp.transferAttemptsCounter.Add(ctx, 1,
		metric.WithAttributes(attribute.String(LabelOutcome, outcome)),
	)
}

// RecordPricePoll counts one oracle poll
func (mp *MetricsProvider) RecordPricePoll(ctx context.Context, outcome string) {
	if !mp.isEnabled() {
		return
	}

	mp.pricePollsCounter.Add(ctx, 1,
		metric.WithAttributes(attribute.String(LabelOutcome, outcome)),
	)
}

func (mp *MetricsProvider) isEnabled() bool {
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return mp.meterProvider != nil
}
