package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/choreolab/choreo/pkg/role"
	"github.com/choreolab/choreo/pkg/telemetry"
)

// Dispatcher executes one topology over a loaded role set. It never returns
// an error: a failed role invocation becomes that role's output as
// "Error: <message>" text and keeps flowing through the topology.
type Dispatcher struct {
	cfg     *Config
	roles   []*role.Role
	byName  map[string]*role.Role
	metrics *telemetry.OrchestrationMetrics
}

// NewDispatcher builds a dispatcher over roles in their declared order.
// The role list must be non-empty; the loader guarantees that.
func NewDispatcher(cfg *Config, roles []*role.Role, metrics *telemetry.OrchestrationMetrics) *Dispatcher {
	byName := make(map[string]*role.Role, len(roles))
	for _, r := range roles {
		byName[r.Name] = r
	}
	return &Dispatcher{
		cfg:     cfg,
		roles:   roles,
		byName:  byName,
		metrics: metrics,
	}
}

// Roles returns the bound roles in declared order.
func (d *Dispatcher) Roles() []*role.Role {
	return d.roles
}

// Execute runs the configured topology on input and returns the final text.
func (d *Dispatcher) Execute(ctx context.Context, input string) string {
	requestID := uuid.NewString()
	pattern := d.cfg.ExecutionType
	if !pattern.Known() {
		slog.WarnContext(ctx, "unknown execution type, falling back to single",
			"execution_type", string(pattern), "request_id", requestID)
		pattern = ExecSingle
	}
	ctx = telemetry.WithDispatch(ctx, requestID, string(pattern))
	slog.InfoContext(ctx, "dispatching request", "roles", len(d.roles))
	d.metrics.RecordDispatch(ctx, string(pattern))

	switch pattern {
	case ExecSequential:
		return d.runSequential(ctx, input)
	case ExecParallel:
		return d.runParallel(ctx, input)
	case ExecCoordinator:
		return d.runCoordinator(ctx, input)
	case ExecHubSpoke:
		return d.runHubSpoke(ctx, input)
	default:
		return d.runSingle(ctx, input)
	}
}

// invoke runs one role and folds any failure into error text.
func (d *Dispatcher) invoke(ctx context.Context, r *role.Role, input string) string {
	out, err := r.Invoke(ctx, input)
	if err != nil {
		slog.ErrorContext(ctx, "role invocation failed", "role", r.Name, "error", err)
		d.metrics.RecordInvocation(ctx, r.Name, true)
		return "Error: " + err.Error()
	}
	d.metrics.RecordInvocation(ctx, r.Name, false)
	return out
}

func (d *Dispatcher) runSingle(ctx context.Context, input string) string {
	return d.invoke(ctx, d.roles[0], input)
}

func (d *Dispatcher) runSequential(ctx context.Context, input string) string {
	if len(d.roles) == 0 {
		return "No results."
	}
	chain := d.cfg.ChainsOutput()
	current := input
	var last string
	for _, r := range d.roles {
		slog.InfoContext(ctx, "sequential step", "role", r.Name)
		last = d.invoke(ctx, r, current)
		if chain {
			current = last
		}
	}
	return last
}

func (d *Dispatcher) runParallel(ctx context.Context, input string) string {
	participants := d.parallelParticipants()

	results := make([]string, len(participants))
	var wg sync.WaitGroup
	for i, r := range participants {
		wg.Add(1)
		go func(i int, r *role.Role) {
			defer wg.Done()
			results[i] = d.invoke(ctx, r, input)
		}(i, r)
	}
	wg.Wait()

	blocks := make([]string, len(participants))
	for i, r := range participants {
		blocks[i] = fmt.Sprintf("=== %s ===\n%s", r.Name, results[i])
	}
	combined := strings.Join(blocks, "\n\n")

	if d.cfg.AggregatorRole != "" {
		if aggregator, ok := d.matchRole(d.cfg.AggregatorRole); ok {
			slog.InfoContext(ctx, "aggregating parallel results",
				"role", aggregator.Name)
			return d.invoke(ctx, aggregator,
				"Aggregate and synthesize these results:\n\n"+combined)
		}
	}
	return combined
}

// parallelParticipants is the configured parallel role set, or every role
// except the aggregator when none is configured. Declared order is kept.
func (d *Dispatcher) parallelParticipants() []*role.Role {
	if len(d.cfg.ParallelRoles) > 0 {
		var out []*role.Role
		for _, r := range d.roles {
			for _, name := range d.cfg.ParallelRoles {
				if strings.EqualFold(r.Name, name) {
					out = append(out, r)
					break
				}
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	var out []*role.Role
	for _, r := range d.roles {
		if !strings.EqualFold(r.Name, d.cfg.AggregatorRole) || d.cfg.AggregatorRole == "" {
			out = append(out, r)
		}
	}
	return out
}

func (d *Dispatcher) runCoordinator(ctx context.Context, input string) string {
	coordinator := d.roles[0]
	if d.cfg.CoordinatorRole != "" {
		named, ok := d.matchRole(d.cfg.CoordinatorRole)
		if !ok {
			slog.WarnContext(ctx, "coordinator role not found, running single",
				"role", d.cfg.CoordinatorRole)
			return d.runSingle(ctx, input)
		}
		coordinator = named
	}

	workerList := "none defined"
	if len(d.cfg.WorkerRoles) > 0 {
		workerList = strings.Join(d.cfg.WorkerRoles, ", ")
	}
	decisionPrompt := fmt.Sprintf(
		"You are a coordinator. Available workers: [%s]. "+
			"For this task, decide which worker(s) to use. "+
			"Respond with ONLY the worker name(s), comma-separated.\n\nTask: %s",
		workerList, input)

	slog.InfoContext(ctx, "coordinator deciding", "role", coordinator.Name)
	decision := d.invoke(ctx, coordinator, decisionPrompt)

	var blocks []string
	for _, name := range strings.Split(decision, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		worker, ok := d.matchRole(name)
		if !ok {
			continue
		}
		slog.InfoContext(ctx, "coordinator dispatching", "worker", worker.Name)
		blocks = append(blocks, fmt.Sprintf("=== %s ===\n%s",
			worker.Name, d.invoke(ctx, worker, input)))
	}

	if len(blocks) == 0 {
		slog.WarnContext(ctx, "no workers matched, coordinator handles directly")
		return d.invoke(ctx, coordinator, input)
	}

	combined := strings.Join(blocks, "\n\n")
	return d.invoke(ctx, coordinator,
		"Synthesize these worker results into a final response:\n\n"+combined)
}

func (d *Dispatcher) runHubSpoke(ctx context.Context, input string) string {
	hub := d.roles[0]
	if d.cfg.HubRole != "" {
		named, ok := d.matchRole(d.cfg.HubRole)
		if !ok {
			slog.WarnContext(ctx, "hub role not found, running single",
				"role", d.cfg.HubRole)
			return d.runSingle(ctx, input)
		}
		hub = named
	}

	spokeList := "none defined"
	if len(d.cfg.SpokeRoles) > 0 {
		spokeList = strings.Join(d.cfg.SpokeRoles, ", ")
	}
	routingPrompt := fmt.Sprintf(
		"You are a hub router. Available spokes: [%s]. "+
			"Route this request to the best spoke. "+
			"Respond with ONLY the spoke name.\n\nRequest: %s",
		spokeList, input)

	slog.InfoContext(ctx, "hub routing", "role", hub.Name)
	decision := d.invoke(ctx, hub, routingPrompt)
	spokeName := strings.ToLower(strings.TrimSpace(decision))

	if spoke, ok := d.matchRole(spokeName); ok {
		slog.InfoContext(ctx, "routing to spoke", "spoke", spoke.Name)
		return d.invoke(ctx, spoke, input)
	}
	slog.WarnContext(ctx, "spoke not found, hub handles directly", "spoke", spokeName)
	return d.invoke(ctx, hub, input)
}

// matchRole finds a declared role by name, case-insensitively.
func (d *Dispatcher) matchRole(name string) (*role.Role, bool) {
	if name == "" {
		return nil, false
	}
	if r, ok := d.byName[name]; ok {
		return r, true
	}
	for _, r := range d.roles {
		if strings.EqualFold(r.Name, name) {
			return r, true
		}
	}
	return nil, false
}
