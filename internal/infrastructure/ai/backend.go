package ai

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/doeshing/nlsh/internal/domain"
	"github.com/doeshing/nlsh/internal/pkg/tracer"
	"github.com/doeshing/nlsh/internal/ports"
)

// maxResponseBody bounds what we read from a provider.
const maxResponseBody = 4 * 1024 * 1024

// httpBackend is the shared request loop; providerAdapter holds everything
// that differs between providers.
type httpBackend struct {
	def        domain.BackendDefinition
	httpClient *http.Client
	adapter    providerAdapter
	timeout    time.Duration
	logger     ports.Logger
}

type providerAdapter struct {
	url           func(domain.BackendDefinition) string
	buildRequest  func(def domain.BackendDefinition, system string, user string) ([]byte, error)
	parseResponse func([]byte) (string, error)
	setHeaders    func(*http.Request, domain.BackendDefinition) error
}

func newHTTPBackend(def domain.BackendDefinition, client *http.Client, adapter providerAdapter, timeout time.Duration, logger ports.Logger) *httpBackend {
	return &httpBackend{
		def:        def,
		httpClient: client,
		adapter:    adapter,
		timeout:    timeout,
		logger:     logger,
	}
}

func (b *httpBackend) Name() string {
	return b.def.Name
}

func (b *httpBackend) Kind() domain.BackendKind {
	return b.def.Kind
}

// Generate implements ports.Backend.
func (b *httpBackend) Generate(ctx context.Context, req ports.GenerateRequest) (string, error) {
	ctx, span := tracer.StartSpan(ctx, "backend.generate",
		trace.WithAttributes(
			tracer.StringAttr("backend.name", b.def.Name),
			tracer.StringAttr("backend.kind", string(b.def.Kind)),
			tracer.StringAttr("backend.model", b.def.ResolvedModel()),
		),
	)
	defer span.End()

	text, err := b.generate(ctx, req)
	if err != nil {
		tracer.RecordError(span, err)
		return "", domain.NewBackendError(b.def.Name, err)
	}
	tracer.SetOK(span)
	return text, nil
}

func (b *httpBackend) generate(parent context.Context, req ports.GenerateRequest) (string, error) {
	system, err := renderSystemInstruction(b.def.Kind, req.Shell)
	if err != nil {
		return "", err
	}
	body, err := b.adapter.buildRequest(b.def, system, req.Prompt)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	ctx := parent
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(parent, b.timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.adapter.url(b.def), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if err := b.adapter.setHeaders(httpReq, b.def); err != nil {
		return "", err
	}

	started := time.Now()
	resp, err := b.httpClient.Do(httpReq)
	if err != nil {
		return "", mapTransportError(parent, b.def.Kind, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return "", mapTransportError(parent, b.def.Kind, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", mapHTTPError(resp.StatusCode, respBody)
	}

	text, err := b.adapter.parseResponse(respBody)
	if err != nil {
		return "", err
	}

	b.logger.Debug("backend responded", map[string]interface{}{
		"backend":     b.def.Name,
		"model":       b.def.ResolvedModel(),
		"duration_ms": time.Since(started).Milliseconds(),
		"bytes":       len(text),
	})
	return text, nil
}

var _ ports.Backend = (*httpBackend)(nil)
