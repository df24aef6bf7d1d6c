// Package liveness consulta periodicamente uma URL como sinal de vida.
// Não tem acoplamento com o ledger nem com o cálculo de descontos.
package liveness

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"gojoyas/internal/pkg/logger"
)

// DefaultInterval é o intervalo entre consultas quando nenhum é configurado.
const DefaultInterval = 5 * time.Minute

// Status é o resultado da última consulta.
type Status struct {
	Up         bool
	StatusCode int
	Err        string
	CheckedAt  time.Time
}

// Poller faz GET em url a cada interval.
type Poller struct {
	url      string
	interval time.Duration
	client   *http.Client
	logger   logger.Logger
	now      func() time.Time

	mu      sync.RWMutex
	last    Status
	checked bool
}

// Option customiza o Poller.
type Option func(*Poller)

// WithHTTPClient substitui o http.Client padrão.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Poller) { p.client = c }
}

// New cria o poller. interval <= 0 usa DefaultInterval.
func New(url string, interval time.Duration, log logger.Logger, opts ...Option) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	p := &Poller{
		url:      url,
		interval: interval,
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run consulta imediatamente e depois a cada intervalo, até ctx ser cancelado.
func (p *Poller) Run(ctx context.Context) {
	p.Check(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			p.logger.Debug("Poller de liveness encerrado.", map[string]interface{}{"url": p.url})
			return
		case <-ticker.C:
			p.Check(ctx)
		}
	}
}

// Check faz uma única consulta, grava e devolve o resultado.
func (p *Poller) Check(ctx context.Context) Status {
	st := p.probe(ctx)

	p.mu.Lock()
	prev, had := p.last, p.checked
	p.last, p.checked = st, true
	p.mu.Unlock()

	fields := map[string]interface{}{"url": p.url, "status_code": st.StatusCode}
	if st.Err != "" {
		fields["error"] = st.Err
	}
	switch {
	case !had && st.Up:
		p.logger.Info("Endpoint de liveness respondendo.", fields)
	case st.Up && !prev.Up:
		p.logger.Info("Endpoint de liveness voltou.", fields)
	case !st.Up && (!had || prev.Up):
		p.logger.Warn("Endpoint de liveness fora do ar.", fields)
	}
	return st
}

// Status devolve o último resultado; ok é false antes da primeira consulta.
func (p *Poller) Status() (Status, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.last, p.checked
}

func (p *Poller) probe(ctx context.Context) Status {
	st := Status{CheckedAt: p.now()}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		st.Err = err.Error()
		return st
	}
	resp, err := p.client.Do(req)
	if err != nil {
		st.Err = err.Error()
		return st
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	st.StatusCode = resp.StatusCode
	st.Up = resp.StatusCode >= 200 && resp.StatusCode < 400
	if !st.Up {
		st.Err = fmt.Sprintf("status %d", resp.StatusCode)
	}
	return st
}
