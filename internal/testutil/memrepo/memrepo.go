// Package memrepo implementa en memoria los puertos de repository para tests.
package memrepo

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/cmms-api/internal/domain/entity"
	"github.com/jhoicas/cmms-api/internal/domain/licensing"
	"github.com/jhoicas/cmms-api/internal/domain/repository"
)

// ErrInjected error devuelto por los puntos de fallo configurables.
var ErrInjected = errors.New("memrepo: fallo inyectado")

// Store estado compartido de todos los repositorios en memoria.
type Store struct {
	mu            sync.Mutex
	orgs          map[string]*entity.Organization
	users         map[string]*entity.User
	licenses      map[string]*entity.ModuleLicense
	logs          []*entity.ModuleAccessLog
	archives      []*entity.DataArchive
	rows          map[string][]json.RawMessage
	usage         map[string]*entity.ModuleUsage
	notifications []*entity.Notification
	requests      []*entity.ModuleRequest
	schedules     map[string]*entity.PMSchedule

	// Puntos de fallo.
	FailAppend     bool
	FailInsertRows map[string]bool // por tabla, en InsertBatch de esa tabla
	FailReadRows   map[string]bool // por tabla, en ListByOrganization
}

// New crea un Store vacío.
func New() *Store {
	return &Store{
		orgs:           map[string]*entity.Organization{},
		users:          map[string]*entity.User{},
		licenses:       map[string]*entity.ModuleLicense{},
		rows:           map[string][]json.RawMessage{},
		usage:          map[string]*entity.ModuleUsage{},
		schedules:      map[string]*entity.PMSchedule{},
		FailInsertRows: map[string]bool{},
		FailReadRows:   map[string]bool{},
	}
}

func licenseKey(org string, code licensing.ModuleCode) string { return org + "|" + string(code) }

// AddOrganization siembra una organización.
func (s *Store) AddOrganization(o *entity.Organization) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *o
	s.orgs[o.ID] = &c
}

// AddUser siembra un usuario.
func (s *Store) AddUser(u *entity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *u
	s.users[u.ID] = &c
}

// PutLicense siembra o reemplaza una licencia.
func (s *Store) PutLicense(l *entity.ModuleLicense) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *l
	s.licenses[licenseKey(l.OrganizationID, l.ModuleCode)] = &c
}

// License devuelve una copia de la licencia o nil.
func (s *Store) License(org string, code licensing.ModuleCode) *entity.ModuleLicense {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.licenses[licenseKey(org, code)]
	if !ok {
		return nil
	}
	c := *l
	return &c
}

// Organization devuelve una copia de la organización o nil.
func (s *Store) Organization(id string) *entity.Organization {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orgs[id]
	if !ok {
		return nil
	}
	c := *o
	return &c
}

// AccessLogs copia de la bitácora.
func (s *Store) AccessLogs() []entity.ModuleAccessLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.ModuleAccessLog, 0, len(s.logs))
	for _, l := range s.logs {
		out = append(out, *l)
	}
	return out
}

// Archives copia de las filas de data_archives.
func (s *Store) Archives() []entity.DataArchive {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.DataArchive, 0, len(s.archives))
	for _, a := range s.archives {
		out = append(out, *a)
	}
	return out
}

// Notifications copia de las notificaciones.
func (s *Store) Notifications() []entity.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		out = append(out, *n)
	}
	return out
}

// AddRow siembra una fila JSON en una tabla de dominio. Debe tener id y organization_id.
func (s *Store) AddRow(table string, row map[string]any) {
	b, _ := json.Marshal(row)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[table] = append(s.rows[table], b)
}

// RowCount número de filas de la tabla.
func (s *Store) RowCount(table string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows[table])
}

// DeleteRows vacía una tabla de dominio.
func (s *Store) DeleteRows(table string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, table)
}

func rowField(raw json.RawMessage, field string) string {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return ""
	}
	v, _ := m[field].(string)
	return v
}

// Organizations repositorio de organizaciones.
func (s *Store) Organizations() *OrganizationRepo { return &OrganizationRepo{s} }

// Users repositorio de usuarios.
func (s *Store) Users() *UserRepo { return &UserRepo{s} }

// Licenses repositorio de licencias.
func (s *Store) Licenses() *LicenseRepo { return &LicenseRepo{s} }

// Logs repositorio de la bitácora.
func (s *Store) Logs() *AccessLogRepo { return &AccessLogRepo{s} }

// DataArchives repositorio de copias archivadas.
func (s *Store) DataArchives() *ArchiveRepo { return &ArchiveRepo{s} }

// Rows almacén genérico de filas de dominio.
func (s *Store) Rows() *RowStore { return &RowStore{s} }

// Usage repositorio de contadores diarios.
func (s *Store) Usage() *UsageRepo { return &UsageRepo{s} }

// NotificationsRepo repositorio de notificaciones.
func (s *Store) NotificationsRepo() *NotificationRepo { return &NotificationRepo{s} }

// Requests repositorio de solicitudes.
func (s *Store) Requests() *RequestRepo { return &RequestRepo{s} }

// Schedules repositorio de programas preventivos.
func (s *Store) Schedules() *ScheduleRepo { return &ScheduleRepo{s} }

// TxRunner ejecuta el callback sin transacción real; un error no revierte.
func (s *Store) TxRunner() *TxRunner { return &TxRunner{s} }

var (
	_ repository.OrganizationRepository  = (*OrganizationRepo)(nil)
	_ repository.UserRepository          = (*UserRepo)(nil)
	_ repository.ModuleLicenseRepository = (*LicenseRepo)(nil)
	_ repository.AccessLogRepository     = (*AccessLogRepo)(nil)
	_ repository.DataArchiveRepository   = (*ArchiveRepo)(nil)
	_ repository.RowStore                = (*RowStore)(nil)
	_ repository.ModuleUsageRepository   = (*UsageRepo)(nil)
	_ repository.NotificationRepository  = (*NotificationRepo)(nil)
	_ repository.ModuleRequestRepository = (*RequestRepo)(nil)
	_ repository.PMScheduleRepository    = (*ScheduleRepo)(nil)
)

// ── Organizaciones ─────────────────────────────────────────────────────────

type OrganizationRepo struct{ s *Store }

func (r *OrganizationRepo) Create(_ context.Context, o *entity.Organization) error {
	r.s.AddOrganization(o)
	return nil
}

func (r *OrganizationRepo) GetByID(_ context.Context, id string) (*entity.Organization, error) {
	return r.s.Organization(id), nil
}

func (r *OrganizationRepo) UpdateTier(_ context.Context, id, tier string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if o, ok := r.s.orgs[id]; ok {
		o.Tier = tier
	}
	return nil
}

func (r *OrganizationRepo) List(_ context.Context, limit, offset int) ([]*entity.Organization, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Organization, 0, len(r.s.orgs))
	for _, o := range r.s.orgs {
		c := *o
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ── Usuarios ───────────────────────────────────────────────────────────────

type UserRepo struct{ s *Store }

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	r.s.AddUser(u)
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.users[id]; ok {
		c := *u
		return &c, nil
	}
	return nil, nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

func (r *UserRepo) ListByRole(_ context.Context, organizationID, role string) ([]*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.User
	for _, u := range r.s.users {
		if u.OrganizationID == organizationID && u.Role == role && u.Status == "active" {
			c := *u
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ── Licencias ──────────────────────────────────────────────────────────────

type LicenseRepo struct{ s *Store }

func (r *LicenseRepo) Get(_ context.Context, organizationID string, code licensing.ModuleCode) (*entity.ModuleLicense, error) {
	return r.s.License(organizationID, code), nil
}

func (r *LicenseRepo) ListByOrganization(_ context.Context, organizationID string) ([]*entity.ModuleLicense, error) {
	return r.filter(func(l *entity.ModuleLicense) bool { return l.OrganizationID == organizationID }), nil
}

func (r *LicenseRepo) UpsertActivation(_ context.Context, l *entity.ModuleLicense) (*entity.ModuleLicense, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := licenseKey(l.OrganizationID, l.ModuleCode)
	if cur, ok := r.s.licenses[key]; ok {
		cur.Status = l.Status
		cur.TierLevel = l.TierLevel
		cur.ActivatedAt = l.ActivatedAt
		cur.ExpiresAt = l.ExpiresAt
		cur.MaxUsers = l.MaxUsers
		cur.UsageLimits = l.UsageLimits
		cur.ActivatedByID = l.ActivatedByID
		cur.UpdatedAt = l.UpdatedAt
		c := *cur
		return &c, nil
	}
	c := *l
	r.s.licenses[key] = &c
	out := c
	return &out, nil
}

func (r *LicenseRepo) UpsertTrial(_ context.Context, l *entity.ModuleLicense) (*entity.ModuleLicense, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := licenseKey(l.OrganizationID, l.ModuleCode)
	if cur, ok := r.s.licenses[key]; ok {
		cur.Status = l.Status
		cur.TierLevel = l.TierLevel
		cur.ActivatedAt = l.ActivatedAt
		cur.ExpiresAt = l.ExpiresAt
		cur.UpdatedAt = l.UpdatedAt
		c := *cur
		return &c, nil
	}
	c := *l
	r.s.licenses[key] = &c
	out := c
	return &out, nil
}

func (r *LicenseRepo) UpdateStatus(_ context.Context, organizationID string, code licensing.ModuleCode, status entity.LicenseStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.licenses[licenseKey(organizationID, code)]
	if !ok {
		return nil
	}
	l.Status = status
	return nil
}

func (r *LicenseRepo) ListExpiringBetween(_ context.Context, from, to time.Time) ([]*entity.ModuleLicense, error) {
	return r.filter(func(l *entity.ModuleLicense) bool {
		return (l.Status == entity.LicenseActive || l.Status == entity.LicenseTrial) &&
			l.ExpiresAt != nil && !l.ExpiresAt.Before(from) && !l.ExpiresAt.After(to)
	}), nil
}

func (r *LicenseRepo) ListExpiredBefore(_ context.Context, cutoff time.Time, statuses ...entity.LicenseStatus) ([]*entity.ModuleLicense, error) {
	return r.filter(func(l *entity.ModuleLicense) bool {
		if l.ExpiresAt == nil || !l.ExpiresAt.Before(cutoff) {
			return false
		}
		for _, st := range statuses {
			if l.Status == st {
				return true
			}
		}
		return false
	}), nil
}

func (r *LicenseRepo) ListByStatus(_ context.Context, status entity.LicenseStatus) ([]*entity.ModuleLicense, error) {
	return r.filter(func(l *entity.ModuleLicense) bool { return l.Status == status }), nil
}

func (r *LicenseRepo) filter(keep func(*entity.ModuleLicense) bool) []*entity.ModuleLicense {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.ModuleLicense
	for _, l := range r.s.licenses {
		if keep(l) {
			c := *l
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return licenseKey(out[i].OrganizationID, out[i].ModuleCode) < licenseKey(out[j].OrganizationID, out[j].ModuleCode)
	})
	return out
}

// ── Bitácora ───────────────────────────────────────────────────────────────

type AccessLogRepo struct{ s *Store }

func (r *AccessLogRepo) Append(_ context.Context, e *entity.ModuleAccessLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailAppend {
		return ErrInjected
	}
	c := *e
	r.s.logs = append(r.s.logs, &c)
	return nil
}

func (r *AccessLogRepo) CountDistinctUsers(_ context.Context, organizationID string, code licensing.ModuleCode, since time.Time) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	users := map[string]struct{}{}
	for _, e := range r.s.logs {
		if e.OrganizationID == organizationID && e.ModuleCode == code &&
			e.Action == entity.ActionAccessed && !e.CreatedAt.Before(since) {
			users[e.UserID] = struct{}{}
		}
	}
	return len(users), nil
}

func (r *AccessLogRepo) HasAccessedSince(_ context.Context, organizationID string, code licensing.ModuleCode, userID string, since time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.logs {
		if e.OrganizationID == organizationID && e.ModuleCode == code && e.UserID == userID &&
			e.Action == entity.ActionAccessed && !e.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

// ── Archivos ───────────────────────────────────────────────────────────────

type ArchiveRepo struct{ s *Store }

func (r *ArchiveRepo) InsertBatch(_ context.Context, archives []*entity.DataArchive) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range archives {
		if r.s.FailInsertRows[a.TableName] {
			return ErrInjected
		}
	}
	for _, a := range archives {
		c := *a
		r.s.archives = append(r.s.archives, &c)
	}
	return nil
}

func (r *ArchiveRepo) List(_ context.Context, organizationID string, code licensing.ModuleCode, status entity.ArchiveStatus) ([]*entity.DataArchive, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.DataArchive
	for _, a := range r.s.archives {
		if a.OrganizationID != organizationID {
			continue
		}
		if code != "" && a.ModuleCode != code {
			continue
		}
		if status != "" && a.Status != status {
			continue
		}
		c := *a
		out = append(out, &c)
	}
	return out, nil
}

func (r *ArchiveRepo) HasStatus(ctx context.Context, organizationID string, code licensing.ModuleCode, status entity.ArchiveStatus) (bool, error) {
	list, _ := r.List(ctx, organizationID, code, status)
	return len(list) > 0, nil
}

func (r *ArchiveRepo) UpdateStatus(_ context.Context, id string, status entity.ArchiveStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.archives {
		if a.ID == id {
			a.Status = status
		}
	}
	return nil
}

func (r *ArchiveRepo) TombstoneExpired(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, a := range r.s.archives {
		if a.Status == entity.ArchiveArchived && a.ExpiresAt.Before(now) {
			a.Status = entity.ArchiveDeleted
			n++
		}
	}
	return n, nil
}

func (r *ArchiveRepo) SnapshotBytes(_ context.Context, organizationID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, a := range r.s.archives {
		if a.OrganizationID == organizationID && a.Status == entity.ArchiveArchived {
			n += int64(len(a.Snapshot))
		}
	}
	return n, nil
}

// ── Filas de dominio ───────────────────────────────────────────────────────

type RowStore struct{ s *Store }

func (r *RowStore) ListByOrganization(_ context.Context, table, organizationID string) ([]repository.RowSnapshot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailReadRows[table] {
		return nil, ErrInjected
	}
	var out []repository.RowSnapshot
	for _, raw := range r.s.rows[table] {
		if rowField(raw, "organization_id") == organizationID {
			out = append(out, repository.RowSnapshot{ID: rowField(raw, "id"), Data: raw})
		}
	}
	return out, nil
}

func (r *RowStore) Exists(_ context.Context, table, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, raw := range r.s.rows[table] {
		if rowField(raw, "id") == id {
			return true, nil
		}
	}
	return false, nil
}

func (r *RowStore) Insert(_ context.Context, table string, data json.RawMessage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.rows[table] = append(r.s.rows[table], append(json.RawMessage(nil), data...))
	return nil
}

// ── Uso ────────────────────────────────────────────────────────────────────

type UsageRepo struct{ s *Store }

func (r *UsageRepo) Upsert(_ context.Context, organizationID string, code licensing.ModuleCode, day time.Time, c entity.UsageCounters) (*entity.ModuleUsage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := licenseKey(organizationID, code) + "|" + day.Format("2006-01-02")
	u, ok := r.s.usage[key]
	if !ok {
		u = &entity.ModuleUsage{ID: key, OrganizationID: organizationID, ModuleCode: code, Date: day, CreatedAt: day}
		r.s.usage[key] = u
	}
	set := func(dst *int64, v *int64) {
		if v != nil {
			*dst = *v
		}
	}
	set(&u.ActiveUsers, c.ActiveUsers)
	set(&u.Transactions, c.Transactions)
	set(&u.APICalls, c.APICalls)
	set(&u.StorageUsed, c.StorageUsed)
	u.UpdatedAt = time.Now()
	out := *u
	return &out, nil
}

func (r *UsageRepo) IncrementAPICalls(_ context.Context, organizationID string, code licensing.ModuleCode, day time.Time, delta int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := licenseKey(organizationID, code) + "|" + day.Format("2006-01-02")
	u, ok := r.s.usage[key]
	if !ok {
		u = &entity.ModuleUsage{ID: key, OrganizationID: organizationID, ModuleCode: code, Date: day, CreatedAt: day}
		r.s.usage[key] = u
	}
	u.APICalls += delta
	u.UpdatedAt = time.Now()
	return nil
}

func (r *UsageRepo) ListRecent(_ context.Context, organizationID string, code licensing.ModuleCode, limit int) ([]*entity.ModuleUsage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.ModuleUsage
	for _, u := range r.s.usage {
		if u.OrganizationID == organizationID && (code == "" || u.ModuleCode == code) {
			c := *u
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ── Notificaciones ─────────────────────────────────────────────────────────

type NotificationRepo struct{ s *Store }

func (r *NotificationRepo) Create(_ context.Context, n *entity.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *n
	r.s.notifications = append(r.s.notifications, &c)
	return nil
}

func (r *NotificationRepo) ListByUser(_ context.Context, userID string, unreadOnly bool, limit int) ([]*entity.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Notification
	for i := len(r.s.notifications) - 1; i >= 0 && len(out) < limit; i-- {
		n := r.s.notifications[i]
		if n.UserID == userID && (!unreadOnly || !n.IsRead) {
			c := *n
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *NotificationRepo) MarkRead(_ context.Context, id, userID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, n := range r.s.notifications {
		if n.ID == id && n.UserID == userID {
			n.IsRead = true
			return true, nil
		}
	}
	return false, nil
}

// ── Solicitudes ────────────────────────────────────────────────────────────

type RequestRepo struct{ s *Store }

func (r *RequestRepo) Create(_ context.Context, req *entity.ModuleRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *req
	r.s.requests = append(r.s.requests, &c)
	return nil
}

func (r *RequestRepo) GetByID(_ context.Context, id string) (*entity.ModuleRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, req := range r.s.requests {
		if req.ID == id {
			c := *req
			return &c, nil
		}
	}
	return nil, nil
}

func (r *RequestRepo) ListByOrganization(_ context.Context, organizationID string) ([]*entity.ModuleRequest, error) {
	return r.filter(func(req *entity.ModuleRequest) bool { return req.OrganizationID == organizationID }), nil
}

func (r *RequestRepo) ListPending(_ context.Context) ([]*entity.ModuleRequest, error) {
	return r.filter(func(req *entity.ModuleRequest) bool { return req.Status == entity.RequestPending }), nil
}

func (r *RequestRepo) UpdateReview(_ context.Context, req *entity.ModuleRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, cur := range r.s.requests {
		if cur.ID == req.ID {
			c := *req
			r.s.requests[i] = &c
		}
	}
	return nil
}

func (r *RequestRepo) filter(keep func(*entity.ModuleRequest) bool) []*entity.ModuleRequest {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.ModuleRequest
	for i := len(r.s.requests) - 1; i >= 0; i-- {
		if keep(r.s.requests[i]) {
			c := *r.s.requests[i]
			out = append(out, &c)
		}
	}
	return out
}

// ── Programas preventivos ──────────────────────────────────────────────────

type ScheduleRepo struct{ s *Store }

func (r *ScheduleRepo) Create(_ context.Context, sch *entity.PMSchedule) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *sch
	r.s.schedules[sch.ID] = &c
	return nil
}

func (r *ScheduleRepo) GetByID(_ context.Context, organizationID, id string) (*entity.PMSchedule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if sch, ok := r.s.schedules[id]; ok && sch.OrganizationID == organizationID {
		c := *sch
		return &c, nil
	}
	return nil, nil
}

func (r *ScheduleRepo) Update(_ context.Context, sch *entity.PMSchedule) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *sch
	r.s.schedules[sch.ID] = &c
	return nil
}

func (r *ScheduleRepo) ListByOrganization(_ context.Context, organizationID string, limit, offset int) ([]*entity.PMSchedule, error) {
	all := r.sorted(func(sch *entity.PMSchedule) bool { return sch.OrganizationID == organizationID })
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *ScheduleRepo) ListDueBefore(_ context.Context, organizationID string, until time.Time) ([]*entity.PMSchedule, error) {
	return r.sorted(func(sch *entity.PMSchedule) bool {
		return sch.OrganizationID == organizationID && !sch.NextDueAt.After(until)
	}), nil
}

func (r *ScheduleRepo) sorted(keep func(*entity.PMSchedule) bool) []*entity.PMSchedule {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.PMSchedule
	for _, sch := range r.s.schedules {
		if keep(sch) {
			c := *sch
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NextDueAt.Before(out[j].NextDueAt) })
	return out
}

// ── Transacciones ──────────────────────────────────────────────────────────

type TxRunner struct{ s *Store }

func (t *TxRunner) RunArchive(_ context.Context, fn func(archives repository.DataArchiveRepository) error) error {
	return fn(t.s.DataArchives())
}
