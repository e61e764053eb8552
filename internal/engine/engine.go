package engine

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"systrack/console/internal/cache"
	"systrack/console/internal/models"
	"systrack/console/internal/upstream"
)

// Engine drives the part/system/employee assignment lifecycle. It
// never mutates an association locally: every operation is one
// upstream request, and the affected caches are re-fetched afterwards
// because server-side derived fields are not recomputable here. The
// only local write outside a re-fetch is the append-on-create display
// shortcut.
type Engine struct {
	api       *upstream.Client
	parts     *cache.PartsStore
	systems   *cache.SystemsStore
	employees *cache.EmployeesStore
	stats     *cache.StatsStore
	pageSize  int
	log       zerolog.Logger
}

func New(
	api *upstream.Client,
	parts *cache.PartsStore,
	systems *cache.SystemsStore,
	employees *cache.EmployeesStore,
	stats *cache.StatsStore,
	pageSize int,
	log zerolog.Logger,
) *Engine {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &Engine{
		api:       api,
		parts:     parts,
		systems:   systems,
		employees: employees,
		stats:     stats,
		pageSize:  pageSize,
		log:       log,
	}
}

func (e *Engine) defaultPartsQuery() cache.ListQuery {
	return cache.ListQuery{Page: 1, Limit: e.pageSize}
}

// Parts ------------------------------------------------------------------

func (e *Engine) ListParts(ctx context.Context, token string, q cache.ListQuery) (upstream.PartsPage, error) {
	page, err := e.api.Parts(ctx, token, q.Page, q.Limit)
	if err != nil {
		return upstream.PartsPage{}, err
	}
	e.cacheParts(ctx, q, page)
	return page, nil
}

func (e *Engine) FreeParts(ctx context.Context, token string) ([]models.Part, error) {
	return e.api.FreeParts(ctx, token)
}

// CreatePart registers a new part; it starts free. The new record is
// appended to the cached default listing as a display shortcut only.
func (e *Engine) CreatePart(ctx context.Context, token string, input upstream.PartInput) (models.Part, string, error) {
	part, message, err := e.api.CreatePart(ctx, token, input)
	if err != nil {
		return models.Part{}, "", err
	}
	if part.ID != "" {
		if err := e.parts.Append(ctx, e.defaultPartsQuery(), part); err != nil {
			e.log.Warn().Err(err).Msg("append created part to cache failed")
		}
	}
	return part, message, nil
}

// UpdatePart sends the diff of the submitted form against the last
// server snapshot. Returns false without a request when nothing
// changed.
func (e *Engine) UpdatePart(ctx context.Context, token, id string, original, form map[string]string) (bool, string, error) {
	updates := Diff(original, form)
	if len(updates) == 0 {
		return false, "", nil
	}

	message, err := e.api.UpdatePart(ctx, token, id, updates)
	if err != nil {
		return false, "", err
	}
	e.refreshParts(ctx, token)
	return true, message, nil
}

// UnusableParts walks the full parts listing and keeps the unusable
// ones. The backend has no dedicated endpoint for this view.
func (e *Engine) UnusableParts(ctx context.Context, token string) ([]models.Part, error) {
	const pageLimit = 200

	out := make([]models.Part, 0)
	for page := 1; ; page++ {
		res, err := e.api.Parts(ctx, token, page, pageLimit)
		if err != nil {
			return nil, err
		}
		for _, p := range res.Parts {
			if p.Status == models.PartStatusUnusable {
				out = append(out, p)
			}
		}
		if page >= res.TotalPages || len(res.Parts) == 0 {
			break
		}
	}
	return out, nil
}

func (e *Engine) DeletePart(ctx context.Context, token, id string) (string, error) {
	message, err := e.api.DeletePart(ctx, token, id)
	if err != nil {
		return "", err
	}
	e.refreshParts(ctx, token)
	return message, nil
}

// Systems ----------------------------------------------------------------

func (e *Engine) ListSystems(ctx context.Context, token string) ([]models.System, error) {
	systems, err := e.api.Systems(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := e.systems.Put(ctx, cache.SystemsSnapshot{Systems: systems}); err != nil {
		e.log.Warn().Err(err).Msg("cache systems failed")
	}
	return systems, nil
}

func (e *Engine) SystemParts(ctx context.Context, token, systemID string) ([]models.Part, error) {
	return e.api.SystemParts(ctx, token, systemID)
}

// CreateSystem builds a machine from at least one free part and
// optionally hands it to an unassigned employee, in a single upstream
// request. No local state is touched before confirmation.
func (e *Engine) CreateSystem(ctx context.Context, token string, input upstream.SystemInput) (string, error) {
	fieldErrs := make(map[string]string)
	if input.Name == "" {
		fieldErrs["name"] = "System name is required"
	}
	if len(input.Parts) == 0 {
		fieldErrs["parts"] = "Select at least one part"
	}
	if len(fieldErrs) > 0 {
		return "", &upstream.ValidationError{Fields: fieldErrs}
	}

	message, err := e.api.CreateSystem(ctx, token, input)
	if err != nil {
		return "", err
	}

	// The referenced parts left the free pool and the employee (if
	// any) left the unassigned pool; pick up the server's view.
	e.refreshSystems(ctx, token)
	e.refreshParts(ctx, token)
	return message, nil
}

// AttachParts moves free parts onto an existing system.
func (e *Engine) AttachParts(ctx context.Context, token, systemID, name string, partIDs []string) (string, error) {
	message, err := e.api.UpdateSystem(ctx, token, systemID, name, partIDs)
	if err != nil {
		return "", err
	}
	e.refreshSystems(ctx, token)
	e.refreshParts(ctx, token)
	return message, nil
}

// DetachPart returns one part to the free pool.
func (e *Engine) DetachPart(ctx context.Context, token, systemID, partID string) (string, error) {
	message, err := e.api.RemovePart(ctx, token, systemID, partID)
	if err != nil {
		return "", err
	}
	e.refreshSystems(ctx, token)
	e.refreshParts(ctx, token)
	return message, nil
}

// AssignEmployee hands a system to an employee. Conflicts (either
// side already assigned) are the server's call alone.
func (e *Engine) AssignEmployee(ctx context.Context, token, systemID, employeeID string) (string, error) {
	message, err := e.api.AssignSystem(ctx, token, systemID, employeeID)
	if err != nil {
		return "", err
	}
	e.refreshSystems(ctx, token)
	e.refreshEmployees(ctx, token)
	return message, nil
}

// UnassignSystem clears both the system's assignee and the employee's
// allocation; afterwards the employee shows up in the unassigned pool
// again.
func (e *Engine) UnassignSystem(ctx context.Context, token, systemID string) (string, error) {
	message, err := e.api.UnassignSystem(ctx, token, systemID)
	if err != nil {
		return "", err
	}
	e.refreshSystems(ctx, token)
	e.refreshEmployees(ctx, token)
	return message, nil
}

func (e *Engine) Stats(ctx context.Context, token string) (models.Stats, error) {
	stats, err := e.api.Stats(ctx, token)
	if err != nil {
		// A stale snapshot beats an empty dashboard when the backend
		// is briefly unreachable.
		var netErr *upstream.NetworkError
		if errors.As(err, &netErr) {
			if snap, ok, cacheErr := e.stats.Get(ctx); cacheErr == nil && ok {
				e.log.Warn().Err(err).Msg("serving cached stats")
				return snap.Stats, nil
			}
		}
		return models.Stats{}, err
	}
	if err := e.stats.Put(ctx, stats); err != nil {
		e.log.Warn().Err(err).Msg("cache stats failed")
	}
	return stats, nil
}

func (e *Engine) Logs(ctx context.Context, token string) ([]models.AuditEntry, error) {
	return e.api.Logs(ctx, token)
}

// Employees --------------------------------------------------------------

func (e *Engine) ListEmployees(ctx context.Context, token string, q cache.ListQuery) (upstream.EmployeesPage, error) {
	page, err := e.api.Employees(ctx, token, q.Search, q.Page, q.Limit)
	if err != nil {
		return upstream.EmployeesPage{}, err
	}
	snap := cache.EmployeesSnapshot{Employees: page.Employees, TotalPages: page.TotalPages}
	if err := e.employees.Put(ctx, q, snap); err != nil {
		e.log.Warn().Err(err).Msg("cache employees failed")
	}
	return page, nil
}

func (e *Engine) UnassignedEmployees(ctx context.Context, token string) ([]models.Employee, error) {
	return e.api.UnassignedEmployees(ctx, token)
}

func (e *Engine) CreateEmployee(ctx context.Context, token string, input upstream.EmployeeInput) (models.Employee, string, error) {
	return e.api.CreateEmployee(ctx, token, input)
}

// UpdateEmployee sends the diff of the submitted form against the
// last server snapshot; an identical form closes as a no-op.
func (e *Engine) UpdateEmployee(ctx context.Context, token, id string, original, form map[string]string) (bool, string, error) {
	updates := Diff(original, form)
	if len(updates) == 0 {
		return false, "", nil
	}

	message, err := e.api.UpdateEmployee(ctx, token, id, updates)
	if err != nil {
		return false, "", err
	}
	e.refreshEmployees(ctx, token)
	return true, message, nil
}

func (e *Engine) DeleteEmployee(ctx context.Context, token, id string) (string, error) {
	message, err := e.api.DeleteEmployee(ctx, token, id)
	if err != nil {
		return "", err
	}
	e.refreshEmployees(ctx, token)
	return message, nil
}

func (e *Engine) ResetPassword(ctx context.Context, resetToken, password string) (string, error) {
	return e.api.ResetPassword(ctx, resetToken, password)
}

// Refresh ----------------------------------------------------------------

// RefreshAll re-fetches the default list queries and the stats
// snapshot. Used by the background scheduler.
func (e *Engine) RefreshAll(ctx context.Context, token string) {
	e.refreshParts(ctx, token)
	e.refreshSystems(ctx, token)
	e.refreshEmployees(ctx, token)
	if _, err := e.Stats(ctx, token); err != nil {
		e.log.Warn().Err(err).Msg("refresh stats failed")
	}
}

func (e *Engine) cacheParts(ctx context.Context, q cache.ListQuery, page upstream.PartsPage) {
	snap := cache.PartsSnapshot{Parts: page.Parts, TotalPages: page.TotalPages}
	if err := e.parts.Put(ctx, q, snap); err != nil {
		e.log.Warn().Err(err).Msg("cache parts failed")
	}
}

func (e *Engine) refreshParts(ctx context.Context, token string) {
	q := e.defaultPartsQuery()
	page, err := e.api.Parts(ctx, token, q.Page, q.Limit)
	if err != nil {
		e.log.Warn().Err(err).Msg("refresh parts failed")
		return
	}
	e.cacheParts(ctx, q, page)
}

func (e *Engine) refreshSystems(ctx context.Context, token string) {
	systems, err := e.api.Systems(ctx, token)
	if err != nil {
		e.log.Warn().Err(err).Msg("refresh systems failed")
		return
	}
	if err := e.systems.Put(ctx, cache.SystemsSnapshot{Systems: systems}); err != nil {
		e.log.Warn().Err(err).Msg("cache systems failed")
	}
}

func (e *Engine) refreshEmployees(ctx context.Context, token string) {
	q := cache.ListQuery{Page: 1, Limit: e.pageSize}
	page, err := e.api.Employees(ctx, token, "", q.Page, q.Limit)
	if err != nil {
		e.log.Warn().Err(err).Msg("refresh employees failed")
		return
	}
	snap := cache.EmployeesSnapshot{Employees: page.Employees, TotalPages: page.TotalPages}
	if err := e.employees.Put(ctx, q, snap); err != nil {
		e.log.Warn().Err(err).Msg("cache employees failed")
	}
}
