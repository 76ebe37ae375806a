package faults

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/jcmexdev/foodme/internal/api/core/domain"
)

// Source yields uniform draws in [0,1).
type Source interface {
	Float64() float64
}

type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }

type seededSource struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (s *seededSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64()
}

// NewSource returns a goroutine-safe source. Seed 0 uses the runtime's
// randomly seeded generator; any other seed gives a reproducible sequence.
func NewSource(seed uint64) Source {
	if seed == 0 {
		return globalSource{}
	}
	return &seededSource{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Injector evaluates the checkpoints of a Policy against a Source. Each
// probabilistic checkpoint consumes exactly one draw.
type Injector struct {
	policy Policy
	src    Source
	sleep  func(time.Duration)
	gate   *stallGate
}

type Option func(*Injector)

// WithSleep replaces the function used to wait out a latency checkpoint.
func WithSleep(sleep func(time.Duration)) Option {
	return func(i *Injector) { i.sleep = sleep }
}

func New(policy Policy, src Source, opts ...Option) *Injector {
	if src == nil {
		src = globalSource{}
	}
	i := &Injector{
		policy: policy,
		src:    src,
		sleep:  time.Sleep,
	}
	for _, opt := range opts {
		opt(i)
	}
	if policy.LatencyMode == LatencyGlobal {
		i.gate = &stallGate{}
	}
	return i
}

func (i *Injector) Policy() Policy { return i.policy }

func (i *Injector) draw(rate float64) bool {
	return i.src.Float64() < rate
}

// Inventory fails when the draw triggers and the order exceeds the stock.
func (i *Injector) Inventory(itemCount float64) error {
	if i.draw(i.policy.InventoryFailureRate) && itemCount > float64(i.policy.AvailableStock) {
		return &domain.InventoryError{Available: i.policy.AvailableStock, Requested: itemCount}
	}
	return nil
}

func (i *Injector) Dependency() error {
	if i.draw(i.policy.DependencyFailureRate) {
		return &domain.DependencyTimeoutError{
			Dependency: i.policy.DependencyName,
			Timeout:    i.policy.DependencyTimeout,
		}
	}
	return nil
}

// LatencyTriggered draws the latency checkpoint. Callers that get true must
// call Hold.
func (i *Injector) LatencyTriggered() bool {
	return i.draw(i.policy.LatencyRate)
}

// Hold waits out the latency delay. It is not cancellable. In global mode
// the whole process is stalled: requests reaching Checkpoint block until the
// delay is over.
func (i *Injector) Hold() {
	if i.gate == nil {
		i.sleep(i.policy.LatencyDelay)
		return
	}
	i.gate.stall(func() { i.sleep(i.policy.LatencyDelay) })
}

// Checkpoint blocks while a global stall is in progress.
func (i *Injector) Checkpoint() {
	if i.gate != nil {
		i.gate.pass()
	}
}

func (i *Injector) ItemLimit(itemCount float64) error {
	if itemCount > float64(i.policy.ItemLimit) {
		return &domain.ItemLimitError{Limit: i.policy.ItemLimit, Requested: itemCount}
	}
	return nil
}

func (i *Injector) PaymentGateway() error {
	if i.draw(i.policy.PaymentFailureRate) {
		return &domain.PaymentGatewayError{}
	}
	return nil
}

// stallGate lets one stall at a time exclude every passing request.
type stallGate struct {
	mu sync.RWMutex
}

func (g *stallGate) pass() {
	g.mu.RLock()
	g.mu.RUnlock() //nolint:staticcheck // empty critical section is the wait
}

func (g *stallGate) stall(wait func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	wait()
}
