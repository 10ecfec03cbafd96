package project

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"taskhub/internal/domain"
	"taskhub/internal/domain/models"
	"taskhub/internal/domain/repositories"
	"taskhub/internal/domain/services"
	"taskhub/internal/policy"
)

type memberKey struct {
	projectID int64
	userID    string
}

// store is an in-memory projects + memberships store shared by both fakes
type store struct {
	mu       sync.Mutex
	nextID   int64
	projects map[int64]models.Project
	members  map[memberKey]models.Role
	failGet  error
}

func newStore() *store {
	return &store{
		projects: map[int64]models.Project{},
		members:  map[memberKey]models.Role{},
	}
}

type fakeProjectRepo struct{ s *store }

func (r fakeProjectRepo) Create(_ context.Context, p *models.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextID++
	p.ID = r.s.nextID
	r.s.projects[p.ID] = *p
	return nil
}

func (r fakeProjectRepo) GetByID(_ context.Context, id int64) (*models.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.projects[id]
	if !ok {
		return nil, fmt.Errorf("project %d: %w", id, domain.ErrNotFound)
	}
	return &p, nil
}

func (r fakeProjectRepo) ListForUser(_ context.Context, userID string) ([]models.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Project{}
	for k := range r.s.members {
		if k.userID == userID {
			out = append(out, r.s.projects[k.projectID])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r fakeProjectRepo) Update(_ context.Context, p *models.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.projects[p.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.projects[p.ID] = *p
	return nil
}

func (r fakeProjectRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.projects[id]; !ok {
		return fmt.Errorf("project %d: %w", id, domain.ErrNotFound)
	}
	delete(r.s.projects, id)
	return nil
}

type fakeMemberRepo struct{ s *store }

func (r fakeMemberRepo) Upsert(_ context.Context, m *models.ProjectMember) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := memberKey{m.ProjectID, m.UserID}
	_, existed := r.s.members[k]
	r.s.members[k] = m.Role
	return !existed, nil
}

func (r fakeMemberRepo) Get(_ context.Context, projectID int64, userID string) (*models.ProjectMember, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failGet != nil {
		return nil, r.s.failGet
	}
	role, ok := r.s.members[memberKey{projectID, userID}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &models.ProjectMember{ProjectID: projectID, UserID: userID, Role: role}, nil
}

func (r fakeMemberRepo) List(_ context.Context, projectID int64) ([]models.ProjectMember, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.ProjectMember{}
	for k, role := range r.s.members {
		if k.projectID == projectID {
			out = append(out, models.ProjectMember{ProjectID: k.projectID, UserID: k.userID, Role: role})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (r fakeMemberRepo) UpdateRole(_ context.Context, projectID int64, userID string, role models.Role) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := memberKey{projectID, userID}
	if _, ok := r.s.members[k]; !ok {
		return domain.ErrNotFound
	}
	r.s.members[k] = role
	return nil
}

func (r fakeMemberRepo) Remove(_ context.Context, projectID int64, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := memberKey{projectID, userID}
	if _, ok := r.s.members[k]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.members, k)
	return nil
}

func (r fakeMemberRepo) RemoveAll(_ context.Context, projectID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for k := range r.s.members {
		if k.projectID == projectID {
			delete(r.s.members, k)
		}
	}
	return nil
}

// fakeTx snapshots the store and restores it when fn fails
type fakeTx struct{ s *store }

func (t fakeTx) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	t.s.mu.Lock()
	projects := make(map[int64]models.Project, len(t.s.projects))
	for k, v := range t.s.projects {
		projects[k] = v
	}
	members := make(map[memberKey]models.Role, len(t.s.members))
	for k, v := range t.s.members {
		members[k] = v
	}
	t.s.mu.Unlock()

	if err := fn(ctx); err != nil {
		t.s.mu.Lock()
		t.s.projects, t.s.members = projects, members
		t.s.mu.Unlock()
		return err
	}
	return nil
}

type fakeUsers struct {
	names       map[string]string
	unavailable bool
}

func (u fakeUsers) UserExists(_ context.Context, id string) services.Verdict {
	if u.unavailable {
		return services.VerdictUnavailable
	}
	if _, ok := u.names[id]; ok {
		return services.VerdictGranted
	}
	return services.VerdictDenied
}

func (u fakeUsers) Username(_ context.Context, id string) (string, bool) {
	if u.unavailable {
		return "", false
	}
	name, ok := u.names[id]
	return name, ok
}

func (u fakeUsers) UserIDByUsername(_ context.Context, username string) (string, services.Verdict) {
	if u.unavailable {
		return "", services.VerdictUnavailable
	}
	for id, name := range u.names {
		if name == username {
			return id, services.VerdictGranted
		}
	}
	return "", services.VerdictDenied
}

type fixture struct {
	store    *store
	users    *fakeUsers
	authz    *MembershipAuthorizer
	projects services.ProjectService
	members  services.MembershipService
}

func newFixture() *fixture {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := newStore()
	users := &fakeUsers{names: map[string]string{"alice": "alice", "bob": "bob", "carol": "carol"}}
	reg, err := policy.NewRegistry()
	if err != nil {
		panic(err)
	}

	authz := NewMembershipAuthorizer(fakeProjectRepo{s}, fakeMemberRepo{s}, logger)
	return &fixture{
		store:    s,
		users:    users,
		authz:    authz,
		projects: NewProjectService(fakeProjectRepo{s}, fakeMemberRepo{s}, fakeTx{s}, authz, reg, users, logger),
		members:  NewMembershipService(fakeMemberRepo{s}, authz, reg, users, logger),
	}
}
