package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/servicecenter-api/internal/domain"
	"github.com/jhoicas/servicecenter-api/internal/domain/entity"
	"github.com/jhoicas/servicecenter-api/internal/domain/repository"
)

var (
	_ repository.UserRepository            = (*UserRepo)(nil)
	_ repository.CustomerProfileRepository = (*CustomerProfileRepo)(nil)
	_ repository.AdvisorRepository         = (*AdvisorRepo)(nil)
)

// UserRepo usuarios en memoria.
type UserRepo struct{ s *Store }

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	for _, existing := range r.s.data.users {
		if existing.Email == u.Email {
			return domain.ErrEmailAlreadyExists
		}
	}
	r.s.data.users[u.ID] = *u
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.data.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *UserRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.User, error) {
	return r.GetByID(ctx, id)
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.s.data.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *UserRepo) Update(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.users[u.ID]; !ok {
		return domain.ErrNotFound
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	for id, existing := range r.s.data.users {
		if id != u.ID && existing.Email == u.Email {
			return domain.ErrEmailAlreadyExists
		}
	}
	r.s.data.users[u.ID] = *u
	return nil
}

// modify aplica fn sobre la fila guardada bajo el lock de escritura.
func (r *UserRepo) modify(id string, fn func(*entity.User)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.data.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	fn(&u)
	r.s.data.users[id] = u
	return nil
}

func (r *UserRepo) UpdateContact(_ context.Context, in *entity.User) error {
	return r.modify(in.ID, func(u *entity.User) {
		u.Name, u.Phone, u.UpdatedAt = in.Name, in.Phone, in.UpdatedAt
	})
}

func (r *UserRepo) UpdateMembership(_ context.Context, in *entity.User) error {
	return r.modify(in.ID, func(u *entity.User) {
		u.MembershipType, u.MembershipStart, u.MembershipEnd = in.MembershipType, in.MembershipStart, in.MembershipEnd
		u.UpdatedAt = in.UpdatedAt
	})
}

func (r *UserRepo) byRole(role string) []*entity.User {
	var list []*entity.User
	for _, u := range r.s.data.users {
		if role == "" || u.Role == role {
			list = append(list, ptr(u))
		}
	}
	slices.SortFunc(list, func(a, b *entity.User) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return list
}

func (r *UserRepo) ListByRole(_ context.Context, role string, limit, offset int) ([]*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return page(r.byRole(role), limit, offset), nil
}

func (r *UserRepo) CountByRole(_ context.Context, role string, activeOnly bool) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, u := range r.byRole(role) {
		if !activeOnly || u.Active {
			n++
		}
	}
	return n, nil
}

// CustomerProfileRepo perfiles de cliente en memoria.
type CustomerProfileRepo struct{ s *Store }

func (r *CustomerProfileRepo) Create(_ context.Context, p *entity.CustomerProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.data.customers {
		if existing.UserID == p.UserID {
			return domain.ErrDuplicate
		}
	}
	r.s.data.customers[p.ID] = *p
	return nil
}

func (r *CustomerProfileRepo) GetByID(_ context.Context, id string) (*entity.CustomerProfile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.data.customers[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *CustomerProfileRepo) GetByUserID(_ context.Context, userID string) (*entity.CustomerProfile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.data.customers {
		if p.UserID == userID {
			return &p, nil
		}
	}
	return nil, nil
}

func (r *CustomerProfileRepo) UpdateAddress(_ context.Context, in *entity.CustomerProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.data.customers[in.ID]
	if !ok {
		return domain.ErrNotFound
	}
	p.Address, p.City, p.PostalCode, p.UpdatedAt = in.Address, in.City, in.PostalCode, in.UpdatedAt
	r.s.data.customers[in.ID] = p
	return nil
}

func (r *CustomerProfileRepo) AddTotalSpent(_ context.Context, userID string, amount decimal.Decimal, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, p := range r.s.data.customers {
		if p.UserID != userID {
			continue
		}
		p.TotalSpent = p.TotalSpent.Add(amount)
		p.UpdatedAt = at
		r.s.data.customers[id] = p
		return nil
	}
	return nil
}

func (r *CustomerProfileRepo) List(_ context.Context, limit, offset int) ([]*entity.CustomerProfile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := make([]*entity.CustomerProfile, 0, len(r.s.data.customers))
	for _, p := range r.s.data.customers {
		list = append(list, ptr(p))
	}
	slices.SortFunc(list, func(a, b *entity.CustomerProfile) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return page(list, limit, offset), nil
}

// AdvisorRepo perfiles de asesor en memoria.
type AdvisorRepo struct{ s *Store }

func (r *AdvisorRepo) Create(_ context.Context, p *entity.ServiceAdvisorProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.data.advisors {
		if existing.UserID == p.UserID {
			return domain.ErrDuplicate
		}
	}
	r.s.data.advisors[p.ID] = *p
	return nil
}

func (r *AdvisorRepo) GetByID(_ context.Context, id string) (*entity.ServiceAdvisorProfile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.data.advisors[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *AdvisorRepo) GetByUserID(_ context.Context, userID string) (*entity.ServiceAdvisorProfile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.data.advisors {
		if p.UserID == userID {
			return &p, nil
		}
	}
	return nil, nil
}

func (r *AdvisorRepo) Update(_ context.Context, p *entity.ServiceAdvisorProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.advisors[p.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.data.advisors[p.ID] = *p
	return nil
}

func (r *AdvisorRepo) List(_ context.Context, limit, offset int) ([]*entity.ServiceAdvisorProfile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := make([]*entity.ServiceAdvisorProfile, 0, len(r.s.data.advisors))
	for _, p := range r.s.data.advisors {
		list = append(list, ptr(p))
	}
	slices.SortFunc(list, func(a, b *entity.ServiceAdvisorProfile) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return page(list, limit, offset), nil
}
