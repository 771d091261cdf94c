// Package file provides the file output component. It subscribes to
// recovery result subjects and writes messages to disk, either as full
// envelopes or unwrapped down to the recovered payload.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/c360/reclaim/component"
	"github.com/c360/reclaim/errors"
	"github.com/c360/reclaim/message"
	"github.com/c360/reclaim/natsclient"
)

// Config holds configuration for the file output component.
type Config struct {
	Ports      *component.PortConfig `json:"ports"`
	Directory  string                `json:"directory"`
	FilePrefix string                `json:"file_prefix"`
	Format     string                `json:"format"` // json, jsonl, raw
	Append     bool                  `json:"append"`
	BufferSize int                   `json:"buffer_size"`

	// Unwrap writes only the recovery result from core.recovery.v1
	// envelopes instead of the full message.
	Unwrap bool `json:"unwrap"`
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Directory == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate", "directory is required")
	}

	switch c.Format {
	case "json", "jsonl", "raw":
	default:
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"format must be one of: json, jsonl, raw")
	}

	if c.BufferSize < 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"buffer_size cannot be negative")
	}
	return nil
}

// DefaultConfig returns the default configuration for file output.
func DefaultConfig() Config {
	inputDefs := []component.PortDefinition{
		{
			Name:        "nats_input",
			Type:        "nats",
			Subject:     "recovered.>",
			Required:    true,
			Description: "NATS subjects carrying recovery result messages",
		},
	}

	return Config{
		Ports: &component.PortConfig{
			Inputs: inputDefs,
		},
		Directory:  "/tmp/reclaim",
		FilePrefix: "recovered",
		Format:     "jsonl",
		Append:     true,
		BufferSize: 100,
	}
}

// Output writes recovery messages to a file on disk.
type Output struct {
	name       string
	subjects   []string
	directory  string
	filePrefix string
	format     string
	append     bool
	bufferSize int
	unwrap     bool
	natsClient *natsclient.Client
	logger     *slog.Logger

	file   *os.File
	fileMu sync.Mutex

	buffer   [][]byte
	bufferMu sync.Mutex

	// Lifecycle management
	shutdown    chan struct{}
	done        chan struct{}
	closeOnce   sync.Once
	running     bool
	startTime   time.Time
	mu          sync.RWMutex
	lifecycleMu sync.Mutex
	wg          *sync.WaitGroup

	// Metrics
	messagesWritten int64
	bytesWritten    int64
	errors          int64
	lastActivity    time.Time
}

// NewOutput creates a new file output from configuration.
func NewOutput(rawConfig json.RawMessage, deps component.Dependencies) (component.Discoverable, error) {
	config := DefaultConfig()
	if len(rawConfig) > 0 {
		if err := json.Unmarshal(rawConfig, &config); err != nil {
			return nil, errors.WrapInvalid(err, "Output", "NewOutput", "config unmarshal")
		}
	}
	if config.Ports == nil {
		config.Ports = DefaultConfig().Ports
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	var inputSubjects []string
	for _, input := range config.Ports.Inputs {
		if input.Type == "nats" {
			inputSubjects = append(inputSubjects, input.Subject)
		}
	}
	if len(inputSubjects) == 0 {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "Output", "NewOutput", "no input subjects configured")
	}

	return &Output{
		name:       "file-output",
		subjects:   inputSubjects,
		directory:  config.Directory,
		filePrefix: config.FilePrefix,
		format:     config.Format,
		append:     config.Append,
		bufferSize: config.BufferSize,
		unwrap:     config.Unwrap,
		natsClient: deps.NATSClient,
		logger:     deps.GetLogger(),
		buffer:     make([][]byte, 0, config.BufferSize),
		shutdown:   make(chan struct{}),
		done:       make(chan struct{}),
		wg:         &sync.WaitGroup{},
	}, nil
}

// Initialize creates the output directory.
func (f *Output) Initialize() error {
	if err := os.MkdirAll(f.directory, 0o755); err != nil {
		return errors.WrapFatal(err, "Output", "Initialize", "create output directory")
	}
	return nil
}

// Start opens the output file and subscribes to the input subjects.
func (f *Output) Start(ctx context.Context) error {
	f.lifecycleMu.Lock()
	defer f.lifecycleMu.Unlock()

	if f.running {
		return errors.WrapFatal(errors.ErrAlreadyStarted, "Output", "Start", "check running state")
	}
	if f.natsClient == nil {
		return errors.WrapFatal(errors.ErrMissingConfig, "Output", "Start", "NATS client required")
	}

	ext := f.format
	if ext == "raw" {
		ext = "log"
	}
	filename := filepath.Join(f.directory, fmt.Sprintf("%s.%s", f.filePrefix, ext))

	flags := os.O_CREATE | os.O_WRONLY
	if f.append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	var err error
	f.file, err = os.OpenFile(filename, flags, 0o644)
	if err != nil {
		return errors.WrapFatal(err, "Output", "Start", "open output file")
	}

	for _, subject := range f.subjects {
		if err := f.natsClient.Subscribe(ctx, subject, f.handleMessage); err != nil {
			return errors.WrapTransient(err, "Output", "Start", fmt.Sprintf("subscribe to %s", subject))
		}
	}

	f.wg.Add(1)
	go f.flushLoop()

	f.mu.Lock()
	f.running = true
	f.startTime = time.Now()
	f.mu.Unlock()

	f.logger.Info("File output started",
		"component", f.name,
		"input_subjects", f.subjects,
		"output_file", filename,
		"format", f.format,
		"unwrap", f.unwrap)

	return nil
}

// Stop drains the buffer and closes the file.
func (f *Output) Stop(timeout time.Duration) error {
	f.lifecycleMu.Lock()
	defer f.lifecycleMu.Unlock()

	if !f.running {
		return nil
	}

	close(f.shutdown)

	waitCh := make(chan struct{})
	go func() {
		f.wg.Wait()
		close(waitCh)
	}()

	select {
	case <-waitCh:
		// Clean shutdown
	case <-time.After(timeout):
		return errors.WrapTransient(fmt.Errorf("shutdown timeout after %v", timeout), "Output", "Stop", "shutdown")
	}

	f.flush()

	f.fileMu.Lock()
	if f.file != nil {
		if err := f.file.Close(); err != nil {
			f.logger.Warn("failed to close output file", "error", err, "path", f.file.Name())
		}
		f.file = nil
	}
	f.fileMu.Unlock()

	f.mu.Lock()
	f.running = false
	f.mu.Unlock()

	f.closeOnce.Do(func() {
		close(f.done)
	})

	return nil
}

// IsStarted returns whether the output is running.
func (f *Output) IsStarted() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.running
}

// handleMessage buffers one incoming message, unwrapping it first when
// configured.
func (f *Output) handleMessage(ctx context.Context, msgData []byte) {
	data := msgData
	if f.unwrap {
		data = f.unwrapResult(msgData)
	}

	f.bufferMu.Lock()
	f.buffer = append(f.buffer, data)
	shouldFlush := len(f.buffer) >= f.bufferSize
	f.bufferMu.Unlock()

	if shouldFlush {
		select {
		case <-ctx.Done():
			return
		default:
		}
		f.flush()
	}

	f.mu.Lock()
	f.lastActivity = time.Now()
	f.mu.Unlock()
}

// unwrapResult extracts the recovery result from an envelope. Messages
// that are not core.recovery.v1 envelopes pass through unchanged.
func (f *Output) unwrapResult(msgData []byte) []byte {
	var msg message.BaseMessage
	if err := json.Unmarshal(msgData, &msg); err != nil {
		return msgData
	}

	payload, ok := msg.Payload.(*message.RecoveryPayload)
	if !ok {
		return msgData
	}

	unwrapped, err := json.Marshal(payload.Result)
	if err != nil {
		atomic.AddInt64(&f.errors, 1)
		f.logger.Error("Failed to marshal unwrapped result",
			"component", f.name,
			"error", err)
		return msgData
	}
	return unwrapped
}

// flushLoop periodically flushes the buffer.
func (f *Output) flushLoop() {
	defer f.wg.Done()

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-f.shutdown:
			return
		case <-ticker.C:
			f.flush()
		}
	}
}

// flush writes buffered messages to the file.
func (f *Output) flush() {
	f.bufferMu.Lock()
	if len(f.buffer) == 0 {
		f.bufferMu.Unlock()
		return
	}
	messages := f.buffer
	f.buffer = make([][]byte, 0, f.bufferSize)
	f.bufferMu.Unlock()

	f.fileMu.Lock()
	defer f.fileMu.Unlock()

	if f.file == nil {
		atomic.AddInt64(&f.errors, int64(len(messages)))
		f.logger.Error("File handle is nil during flush",
			"component", f.name,
			"messages_lost", len(messages))
		return
	}

	for _, msg := range messages {
		n, err := f.file.Write(f.formatMessage(msg))
		if err != nil {
			atomic.AddInt64(&f.errors, 1)
			f.logger.Error("Failed to write message to file",
				"component", f.name,
				"error", err)
			continue
		}
		atomic.AddInt64(&f.messagesWritten, 1)
		atomic.AddInt64(&f.bytesWritten, int64(n))
	}
}

// formatMessage renders one message according to the configured format.
func (f *Output) formatMessage(msg []byte) []byte {
	switch f.format {
	case "json":
		var obj any
		if err := json.Unmarshal(msg, &obj); err == nil {
			if formatted, err := json.MarshalIndent(obj, "", "  "); err == nil {
				return append(formatted, '\n')
			}
		}
		return append(msg, '\n')
	case "raw":
		return msg
	default: // jsonl
		return append(msg, '\n')
	}
}

// Discoverable interface implementation

// Meta returns component metadata.
func (f *Output) Meta() component.Metadata {
	return component.Metadata{
		Name:        f.name,
		Type:        "output",
		Description: "Writes recovery result messages to disk in JSON, JSONL, or raw format",
		Version:     "0.1.0",
	}
}

// InputPorts returns configured input port definitions.
func (f *Output) InputPorts() []component.Port {
	ports := make([]component.Port, len(f.subjects))
	for i, subj := range f.subjects {
		ports[i] = component.Port{
			Name:      fmt.Sprintf("input_%d", i),
			Direction: component.DirectionInput,
			Required:  true,
			Config:    component.NATSPort{Subject: subj},
		}
	}
	return ports
}

// OutputPorts returns no ports; the file is the sink.
func (f *Output) OutputPorts() []component.Port {
	return []component.Port{}
}

// Health returns the current health status.
func (f *Output) Health() component.HealthStatus {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return component.HealthStatus{
		Healthy:    f.running && f.file != nil,
		LastCheck:  time.Now(),
		ErrorCount: int(atomic.LoadInt64(&f.errors)),
		Uptime:     time.Since(f.startTime),
	}
}

// DataFlow returns current data flow metrics.
func (f *Output) DataFlow() component.FlowMetrics {
	f.mu.RLock()
	defer f.mu.RUnlock()

	written := atomic.LoadInt64(&f.messagesWritten)
	errorCount := atomic.LoadInt64(&f.errors)

	var errorRate float64
	if written > 0 {
		errorRate = float64(errorCount) / float64(written)
	}

	return component.FlowMetrics{
		ErrorRate:    errorRate,
		LastActivity: f.lastActivity,
	}
}

// Register registers the file output component with the given registry.
func Register(registry *component.Registry) error {
	return registry.RegisterWithConfig(component.RegistrationConfig{
		Name:        "output-file",
		Factory:     NewOutput,
		Type:        "output",
		Protocol:    "file",
		Domain:      "storage",
		Description: "Writes recovery result messages to disk in JSON, JSONL, or raw format",
		Version:     "0.1.0",
	})
}
