// Package recoveryproc provides the processor component that runs payloads
// through the recovery engine: LZ4 frames are decoded, corrupted JSON is
// repaired, and plain payloads are compressed for downstream transport.
package recoveryproc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/c360/reclaim/component"
	"github.com/c360/reclaim/errors"
	"github.com/c360/reclaim/health"
	"github.com/c360/reclaim/message"
	"github.com/c360/reclaim/metric"
	"github.com/c360/reclaim/natsclient"
	"github.com/c360/reclaim/recovery"
)

// Config holds configuration for the recovery processor.
type Config struct {
	Ports *component.PortConfig `json:"ports"`

	// Engine tuning. Zero values keep the engine defaults.
	Format           string  `json:"format,omitempty"`
	CompressionLevel int     `json:"compressionLevel,omitempty"`
	RatioThreshold   float64 `json:"ratioThreshold,omitempty"`
	MaxOffsetRetries int     `json:"maxOffsetRetries,omitempty"`
}

// DefaultConfig returns the default configuration for the recovery processor.
func DefaultConfig() Config {
	inputDefs := []component.PortDefinition{
		{
			Name:        "nats_input",
			Type:        "nats",
			Subject:     "raw.>",
			Required:    true,
			Description: "NATS subjects carrying raw, compressed, or corrupted payloads",
		},
	}

	outputDefs := []component.PortDefinition{
		{
			Name:        "nats_output",
			Type:        "nats",
			Subject:     "recovered.messages",
			Interface:   "core.recovery.v1",
			Required:    true,
			Description: "NATS subject for recovered payload messages",
		},
	}

	return Config{
		Ports: &component.PortConfig{
			Inputs:  inputDefs,
			Outputs: outputDefs,
		},
	}
}

// Processor runs incoming payloads through the recovery engine and
// publishes the outcome as core.recovery.v1 messages.
type Processor struct {
	name       string
	subjects   []string
	outputSubj string
	engine     *recovery.Engine
	natsClient *natsclient.Client
	metrics    *metric.Metrics
	logger     *slog.Logger

	// Lifecycle management
	shutdown    chan struct{}
	done        chan struct{}
	running     bool
	startTime   time.Time
	mu          sync.RWMutex
	lifecycleMu sync.Mutex
	wg          *sync.WaitGroup

	// Metrics
	messagesProcessed int64
	messagesPublished int64
	errors            int64
	lastActivity      time.Time

	// Most recent engine outcome, reported through Health.
	lastSignal recovery.Signal
	hasSignal  bool
}

// NewProcessor creates a new recovery processor from configuration.
func NewProcessor(
	rawConfig json.RawMessage, deps component.Dependencies,
) (component.Discoverable, error) {
	config := DefaultConfig()
	if len(rawConfig) > 0 {
		if err := json.Unmarshal(rawConfig, &config); err != nil {
			return nil, errors.WrapInvalid(err, "RecoveryProcessor", "NewProcessor", "config unmarshal")
		}
	}
	if config.Ports == nil {
		config.Ports = DefaultConfig().Ports
	}

	var inputSubjects []string
	var outputSubject string

	for _, input := range config.Ports.Inputs {
		if input.Type == "nats" {
			inputSubjects = append(inputSubjects, input.Subject)
		}
	}
	if len(config.Ports.Outputs) > 0 {
		outputSubject = config.Ports.Outputs[0].Subject
	}

	if len(inputSubjects) == 0 {
		return nil, errors.WrapInvalid(
			errors.ErrInvalidConfig, "RecoveryProcessor", "NewProcessor",
			"no input subjects configured")
	}

	logger := deps.GetLogger()

	opts := []recovery.Option{recovery.WithLogger(logger)}
	if config.Format != "" {
		format := recovery.OutputFormat(config.Format)
		if !format.Valid() {
			return nil, errors.WrapInvalid(
				fmt.Errorf("unknown output format %q", config.Format),
				"RecoveryProcessor", "NewProcessor", "format validation")
		}
		opts = append(opts, recovery.WithOutputFormat(format))
	}
	if config.CompressionLevel > 0 {
		opts = append(opts, recovery.WithCompressionLevel(config.CompressionLevel))
	}
	if config.RatioThreshold > 0 {
		opts = append(opts, recovery.WithRatioThreshold(config.RatioThreshold))
	}
	if config.MaxOffsetRetries > 0 {
		opts = append(opts, recovery.WithMaxOffsetRetries(config.MaxOffsetRetries))
	}

	return &Processor{
		name:       "recovery-processor",
		subjects:   inputSubjects,
		outputSubj: outputSubject,
		engine:     recovery.New(opts...),
		natsClient: deps.NATSClient,
		metrics:    deps.Metrics,
		logger:     logger,
		shutdown:   make(chan struct{}),
		done:       make(chan struct{}),
		wg:         &sync.WaitGroup{},
	}, nil
}

// Initialize prepares the processor (no-op for recovery)
func (p *Processor) Initialize() error {
	return nil
}

// Start subscribes to the input subjects and begins processing.
func (p *Processor) Start(ctx context.Context) error {
	p.lifecycleMu.Lock()
	defer p.lifecycleMu.Unlock()

	if p.running {
		return errors.WrapFatal(errors.ErrAlreadyStarted, "RecoveryProcessor", "Start", "check running state")
	}

	if p.natsClient == nil {
		return errors.WrapFatal(errors.ErrMissingConfig, "RecoveryProcessor", "Start", "NATS client required")
	}

	for _, subject := range p.subjects {
		p.logger.Debug("Subscribing to NATS subject",
			"component", p.name,
			"subject", subject)

		if err := p.natsClient.Subscribe(ctx, subject, p.handleMessage); err != nil {
			p.logger.Error("Failed to subscribe to NATS subject",
				"component", p.name,
				"subject", subject,
				"error", err)
			return errors.WrapTransient(err, "RecoveryProcessor", "Start", fmt.Sprintf("subscribe to %s", subject))
		}
	}

	p.mu.Lock()
	p.running = true
	p.startTime = time.Now()
	p.mu.Unlock()

	p.logger.Info("Recovery processor started",
		"component", p.name,
		"input_subjects", p.subjects,
		"output_subject", p.outputSubj)

	return nil
}

// Stop gracefully stops the processor.
func (p *Processor) Stop(timeout time.Duration) error {
	p.lifecycleMu.Lock()
	defer p.lifecycleMu.Unlock()

	if !p.running {
		return nil
	}

	close(p.shutdown)

	waitCh := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(waitCh)
	}()

	select {
	case <-waitCh:
		// Clean shutdown
	case <-time.After(timeout):
		return errors.WrapTransient(
			fmt.Errorf("shutdown timeout after %v", timeout),
			"RecoveryProcessor", "Stop", "graceful shutdown")
	}

	p.mu.Lock()
	p.running = false
	close(p.done)
	p.mu.Unlock()

	return nil
}

// IsStarted returns whether the processor is running.
func (p *Processor) IsStarted() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.running
}

// handleMessage runs one payload through the engine and publishes the
// outcome.
func (p *Processor) handleMessage(ctx context.Context, msgData []byte) {
	start := time.Now()
	atomic.AddInt64(&p.messagesProcessed, 1)
	p.mu.Lock()
	p.lastActivity = time.Now()
	p.mu.Unlock()

	if p.metrics != nil {
		p.metrics.MessagesReceived.WithLabelValues(p.name).Inc()
	}

	result, sig, err := p.engine.Process(inputFromBytes(msgData))

	p.mu.Lock()
	p.lastSignal = sig
	p.hasSignal = true
	p.mu.Unlock()

	if err != nil {
		atomic.AddInt64(&p.errors, 1)
		if p.metrics != nil {
			p.metrics.ErrorsTotal.WithLabelValues(p.name, errors.Classify(err).String()).Inc()
			p.metrics.MessagesProcessed.WithLabelValues(p.name, "error").Inc()
		}
		p.logger.Error("Payload processing failed",
			"component", p.name,
			"size_bytes", len(msgData),
			"error", err)
		return
	}
	if result == nil {
		// Empty payload: nothing to publish, signal already explains it.
		if p.metrics != nil {
			p.metrics.MessagesProcessed.WithLabelValues(p.name, "skipped").Inc()
		}
		p.logger.Debug("Skipped empty payload",
			"component", p.name,
			"detail", sig.Message)
		return
	}

	if p.metrics != nil {
		op := string(result.Meta.Operation)
		p.metrics.OperationsTotal.WithLabelValues(op).Inc()
		p.metrics.ProcessingSeconds.WithLabelValues(p.name, op).Observe(time.Since(start).Seconds())
		p.metrics.MessagesProcessed.WithLabelValues(p.name, sig.Severity.String()).Inc()
		if result.Meta.Operation == recovery.OpCompress {
			p.metrics.CompressionRatio.Observe(result.Meta.CompressionRatio)
		}
		if result.Meta.DecodeRetries > 0 {
			p.metrics.DecodeRetries.Add(float64(result.Meta.DecodeRetries))
		}
	}

	p.logger.Debug("Payload processed",
		"component", p.name,
		"operation", result.Meta.Operation,
		"status", sig.Severity.String(),
		"original_size", result.Meta.OriginalSize)

	p.publish(ctx, result, sig)
}

// publish wraps the result in a BaseMessage and sends it downstream.
func (p *Processor) publish(ctx context.Context, result *recovery.Result, sig recovery.Signal) {
	if p.outputSubj == "" {
		return
	}

	msg := message.New(p.name, message.NewRecoveryPayload(*result, sig))
	data, err := json.Marshal(msg)
	if err != nil {
		atomic.AddInt64(&p.errors, 1)
		p.logger.Error("Failed to marshal recovery message",
			"component", p.name,
			"error", err)
		return
	}

	if err := p.natsClient.Publish(ctx, p.outputSubj, data); err != nil {
		atomic.AddInt64(&p.errors, 1)
		p.logger.Error("Failed to publish recovery message",
			"component", p.name,
			"output_subject", p.outputSubj,
			"error", err)
		return
	}

	atomic.AddInt64(&p.messagesPublished, 1)
	if p.metrics != nil {
		p.metrics.MessagesPublished.WithLabelValues(p.name, p.outputSubj).Inc()
	}
}

// inputFromBytes picks the engine input form for a raw NATS message. Data
// carrying the LZ4 frame magic or invalid UTF-8 stays bytes; everything
// else is handed over as text so the corruption and base64 checks apply.
func inputFromBytes(data []byte) recovery.Input {
	if recovery.HasFrameMagic(data) || !utf8.Valid(data) {
		return recovery.BytesInput(data)
	}
	return recovery.TextInput(string(data))
}

// Discoverable interface implementation

// Meta returns metadata describing this processor component.
func (p *Processor) Meta() component.Metadata {
	return component.Metadata{
		Name:        p.name,
		Type:        "processor",
		Description: "Recovers compressed or corrupted payloads and emits core.recovery.v1 messages",
		Version:     "0.1.0",
	}
}

// InputPorts returns the NATS input ports this processor subscribes to.
func (p *Processor) InputPorts() []component.Port {
	ports := make([]component.Port, len(p.subjects))
	for i, subj := range p.subjects {
		ports[i] = component.Port{
			Name:      fmt.Sprintf("input_%d", i),
			Direction: component.DirectionInput,
			Required:  true,
			Config: component.NATSPort{
				Subject: subj,
			},
		}
	}
	return ports
}

// OutputPorts returns the NATS output port for recovery messages.
func (p *Processor) OutputPorts() []component.Port {
	if p.outputSubj == "" {
		return []component.Port{}
	}
	return []component.Port{
		{
			Name:      "output",
			Direction: component.DirectionOutput,
			Required:  false,
			Config: component.NATSPort{
				Subject: p.outputSubj,
				Interface: &component.InterfaceContract{
					Type:    "core.recovery.v1",
					Version: "v1",
				},
			},
		},
	}
}

// Health returns the current health status of this processor. The message
// carries the outcome of the most recently processed payload; a failed
// payload marks the processor unhealthy until a later one succeeds.
func (p *Processor) Health() component.HealthStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()

	status := component.HealthStatus{
		Healthy:    p.running,
		LastCheck:  time.Now(),
		ErrorCount: int(atomic.LoadInt64(&p.errors)),
		Uptime:     time.Since(p.startTime),
	}

	if p.hasSignal {
		last := health.FromSignal(p.name, p.lastSignal)
		status.Message = last.Message
		if last.IsUnhealthy() {
			status.Healthy = false
		}
	}

	return status
}

// DataFlow returns current data flow metrics for this processor.
func (p *Processor) DataFlow() component.FlowMetrics {
	p.mu.RLock()
	defer p.mu.RUnlock()

	processed := atomic.LoadInt64(&p.messagesProcessed)
	errorCount := atomic.LoadInt64(&p.errors)

	var errorRate float64
	if processed > 0 {
		errorRate = float64(errorCount) / float64(processed)
	}

	return component.FlowMetrics{
		ErrorRate:    errorRate,
		LastActivity: p.lastActivity,
	}
}

// Register registers the recovery processor with the given registry.
func Register(registry *component.Registry) error {
	return registry.RegisterWithConfig(component.RegistrationConfig{
		Name:        "processor-recovery",
		Factory:     NewProcessor,
		Type:        "processor",
		Protocol:    "nats",
		Domain:      "processing",
		Description: "Recovers compressed or corrupted payloads and emits core.recovery.v1 messages",
		Version:     "0.1.0",
	})
}
