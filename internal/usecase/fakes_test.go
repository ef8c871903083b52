package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"finscope/internal/data/entity"
	"finscope/internal/data/repository"
	"finscope/pkg/apperror"
	"finscope/pkg/mailer"
	"finscope/pkg/token"
	"finscope/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// In-memory repositories mirroring the SQL semantics the services rely on.

type fakeUserRepo struct {
	mu         sync.Mutex
	users      map[uuid.UUID]*entity.User
	lastLogins int
}

func (r *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return apperror.Conflict("Email already registered")
		}
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindAll(_ context.Context, limit, offset int) ([]*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]*entity.User, 0, len(r.users))
	for _, u := range r.users {
		cp := *u
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Email < all[j].Email })
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *fakeUserRepo) CountAll(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return apperror.NotFound("User not found")
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id uuid.UUID, hash string, temp *string, mustChange bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return apperror.NotFound("User not found")
	}
	u.PasswordHash = hash
	u.TempPasswordHash = temp
	u.MustChangePassword = mustChange
	return nil
}

func (r *fakeUserRepo) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.LastLoginAt = &at
		r.lastLogins++
	}
	return nil
}

func (r *fakeUserRepo) MarkVerified(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.IsVerified = true
	}
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return apperror.NotFound("User not found")
	}
	delete(r.users, id)
	return nil
}

type fakeRoleRepo struct {
	roles map[entity.RoleID]*entity.Role
}

func newFakeRoleRepo() *fakeRoleRepo {
	return &fakeRoleRepo{roles: map[entity.RoleID]*entity.Role{
		entity.RoleUser:  {ID: entity.RoleUser, Name: "user", Description: "Standard account"},
		entity.RoleAdmin: {ID: entity.RoleAdmin, Name: "admin", Description: "Administrator"},
	}}
}

func (r *fakeRoleRepo) FindAll(context.Context) ([]*entity.Role, error) {
	out := make([]*entity.Role, 0, len(r.roles))
	for _, id := range []entity.RoleID{entity.RoleUser, entity.RoleAdmin} {
		if role, ok := r.roles[id]; ok {
			out = append(out, role)
		}
	}
	return out, nil
}

func (r *fakeRoleRepo) FindByID(_ context.Context, id entity.RoleID) (*entity.Role, error) {
	return r.roles[id], nil
}

// fakeOTPRepo keeps one row per user, like the delete-then-insert in SQL.
type fakeOTPRepo struct {
	mu    sync.Mutex
	codes map[uuid.UUID]*entity.VerificationCode
}

func (r *fakeOTPRepo) Replace(_ context.Context, code *entity.VerificationCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *code
	r.codes[code.UserID] = &cp
	return nil
}

func (r *fakeOTPRepo) FindValid(_ context.Context, userID uuid.UUID, code string, now time.Time) (*entity.VerificationCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.codes[userID]
	if !ok || c.Code != code || c.IsUsed || !c.ExpiresAt.After(now) {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *fakeOTPRepo) MarkAsUsed(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.codes {
		if c.ID == id && !c.IsUsed {
			c.IsUsed = true
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeOTPRepo) HasPending(_ context.Context, userID uuid.UUID, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.codes[userID]
	return ok && !c.IsUsed && c.ExpiresAt.After(now), nil
}

func (r *fakeOTPRepo) DeleteExpiredOrUsed(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, c := range r.codes {
		if c.IsUsed || !c.ExpiresAt.After(now) {
			delete(r.codes, id)
			n++
		}
	}
	return n, nil
}

func (r *fakeOTPRepo) current(userID uuid.UUID) *entity.VerificationCode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.codes[userID]
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*entity.Session
}

func (r *fakeSessionRepo) Create(_ context.Context, s *entity.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.sessions[s.ID] = &cp
	return nil
}

func (r *fakeSessionRepo) FindValidSession(_ context.Context, id uuid.UUID, now time.Time) (*entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok || s.RevokedAt != nil || !s.ExpiresAt.After(now) {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSessionRepo) Revoke(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		now := time.Now()
		s.RevokedAt = &now
	}
	return nil
}

func (r *fakeSessionRepo) RevokeAllUserSessions(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for _, s := range r.sessions {
		if s.UserID == userID && s.RevokedAt == nil {
			s.RevokedAt = &now
		}
	}
	return nil
}

func (r *fakeSessionRepo) CleanExpiredSessions(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, s := range r.sessions {
		if s.ExpiresAt.Before(before) {
			delete(r.sessions, id)
			n++
		}
	}
	return n, nil
}

type fakeCategoryRepo struct {
	mu         sync.Mutex
	categories map[uuid.UUID]*entity.Category
	txs        *fakeTransactionRepo
}

func (r *fakeCategoryRepo) FindVisible(_ context.Context, userID uuid.UUID, entryType *entity.EntryType) ([]*entity.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Category
	for _, c := range r.categories {
		if !c.VisibleTo(userID) {
			continue
		}
		if entryType != nil && c.Type != *entryType {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeCategoryRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.categories[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeCategoryRepo) Create(_ context.Context, c *entity.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.categories[c.ID] = &cp
	return nil
}

func (r *fakeCategoryRepo) Update(_ context.Context, c *entity.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.categories[c.ID]
	if !ok || existing.IsDefault || c.UserID == nil || !existing.OwnedBy(*c.UserID) {
		return apperror.NotFound("Category not found")
	}
	cp := *c
	r.categories[c.ID] = &cp
	return nil
}

func (r *fakeCategoryRepo) Delete(ctx context.Context, id, userID uuid.UUID) error {
	if n, _ := r.CountTransactions(ctx, id); n > 0 {
		return apperror.Conflict("Category has transactions and cannot be deleted")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.categories[id]
	if !ok || c.IsDefault || !c.OwnedBy(userID) {
		return apperror.NotFound("Category not found")
	}
	delete(r.categories, id)
	return nil
}

func (r *fakeCategoryRepo) CountTransactions(_ context.Context, id uuid.UUID) (int64, error) {
	r.txs.mu.Lock()
	defer r.txs.mu.Unlock()
	var n int64
	for _, t := range r.txs.items {
		if t.CategoryID == id {
			n++
		}
	}
	return n, nil
}

func (r *fakeCategoryRepo) Usage(_ context.Context, userID uuid.UUID, since time.Time) ([]*entity.CategoryUsage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.txs.mu.Lock()
	defer r.txs.mu.Unlock()
	var out []*entity.CategoryUsage
	for _, c := range r.categories {
		if !c.VisibleTo(userID) {
			continue
		}
		u := &entity.CategoryUsage{CategoryID: c.ID, Name: c.Name, Type: c.Type, Color: c.Color}
		for _, t := range r.txs.items {
			if t.CategoryID == c.ID && t.UserID == userID && !t.TransactionDate.Before(since) {
				u.TransactionCount++
				u.TotalAmount += t.Amount
			}
		}
		out = append(out, u)
	}
	return out, nil
}

type fakeTransactionRepo struct {
	mu         sync.Mutex
	items      map[uuid.UUID]*entity.Transaction
	lastFilter entity.TransactionFilter
}

func (r *fakeTransactionRepo) Create(_ context.Context, t *entity.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *t
	r.items[t.ID] = &cp
	return nil
}

func (r *fakeTransactionRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.items[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeTransactionRepo) FindAll(_ context.Context, userID uuid.UUID, filter entity.TransactionFilter) ([]*entity.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastFilter = filter
	var out []*entity.Transaction
	for _, t := range r.items {
		if t.UserID != userID {
			continue
		}
		if filter.Type != nil && t.Type != *filter.Type {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeTransactionRepo) Update(_ context.Context, t *entity.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.items[t.ID]
	if !ok || existing.UserID != t.UserID {
		return apperror.NotFound("Transaction not found")
	}
	cp := *t
	cp.CreatedAt = existing.CreatedAt
	r.items[t.ID] = &cp
	return nil
}

func (r *fakeTransactionRepo) Delete(_ context.Context, id, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.items[id]
	if !ok || existing.UserID != userID {
		return apperror.NotFound("Transaction not found")
	}
	delete(r.items, id)
	return nil
}

func (r *fakeTransactionRepo) Summary(_ context.Context, userID uuid.UUID, since time.Time) (*entity.TransactionSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var s entity.TransactionSummary
	for _, t := range r.items {
		if t.UserID != userID || t.TransactionDate.Before(since) {
			continue
		}
		s.TransactionCount++
		if t.Type == entity.EntryIncome {
			s.Income += t.Amount
		} else {
			s.Expense += t.Amount
		}
	}
	return &s, nil
}

func (r *fakeTransactionRepo) ExpensesByCategory(_ context.Context, userID uuid.UUID, since time.Time) ([]*entity.CategoryExpense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	byCategory := map[uuid.UUID]*entity.CategoryExpense{}
	for _, t := range r.items {
		if t.UserID != userID || t.Type != entity.EntryExpense || t.TransactionDate.Before(since) {
			continue
		}
		row, ok := byCategory[t.CategoryID]
		if !ok {
			row = &entity.CategoryExpense{CategoryID: t.CategoryID}
			byCategory[t.CategoryID] = row
		}
		row.TotalAmount += t.Amount
		row.TransactionCount++
	}
	out := make([]*entity.CategoryExpense, 0, len(byCategory))
	for _, row := range byCategory {
		out = append(out, row)
	}
	return out, nil
}

type fakeSender struct {
	mu   sync.Mutex
	sent []mailer.CodeMessage
	err  error
}

func (s *fakeSender) SendVerificationCode(_ context.Context, msg mailer.CodeMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func (s *fakeSender) last() mailer.CodeMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sent[len(s.sent)-1]
}

// fakeLimiter answers allow unless max is set, in which case it counts
// attempts per key the way the Redis limiter does.
type fakeLimiter struct {
	allow  bool
	max    int
	counts map[string]int
	resets int
}

func (l *fakeLimiter) Allow(_ context.Context, key string) (bool, error) {
	if l.max == 0 {
		return l.allow, nil
	}
	if l.counts == nil {
		l.counts = map[string]int{}
	}
	l.counts[key]++
	return l.counts[key] <= l.max, nil
}

func (l *fakeLimiter) Reset(_ context.Context, key string) error {
	l.resets++
	delete(l.counts, key)
	return nil
}

// fixture wires every service against the in-memory repositories.
type fixture struct {
	repo     *repository.Repository
	userRepo *fakeUserRepo
	roles    *fakeRoleRepo
	otps     *fakeOTPRepo
	sessions *fakeSessionRepo
	cats     *fakeCategoryRepo
	txs      *fakeTransactionRepo
	sender   *fakeSender
	limiter  *fakeLimiter
	tokens   *token.Manager
	now      time.Time

	authSvc *authService
	userSvc *userService
	txSvc   *transactionService
	catSvc  *categoryService
}

func newFixture() *fixture {
	txs := &fakeTransactionRepo{items: map[uuid.UUID]*entity.Transaction{}}
	f := &fixture{
		userRepo: &fakeUserRepo{users: map[uuid.UUID]*entity.User{}},
		roles:    newFakeRoleRepo(),
		otps:     &fakeOTPRepo{codes: map[uuid.UUID]*entity.VerificationCode{}},
		sessions: &fakeSessionRepo{sessions: map[uuid.UUID]*entity.Session{}},
		cats:     &fakeCategoryRepo{categories: map[uuid.UUID]*entity.Category{}, txs: txs},
		txs:      txs,
		sender:   &fakeSender{},
		limiter:  &fakeLimiter{allow: true},
		tokens:   token.NewManager("test-secret", "finscope", 24*time.Hour),
		now:      time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC),
	}
	f.repo = &repository.Repository{
		User:        f.userRepo,
		Role:        f.roles,
		Session:     f.sessions,
		OTP:         f.otps,
		Category:    f.cats,
		Transaction: f.txs,
	}

	log := zap.NewNop()
	clockFn := func() time.Time { return f.now }
	config := &utils.Config{OTP: utils.OTPConfig{ExpiryMinutes: 10}}

	f.authSvc = NewAuthService(f.repo, f.tokens, f.sender, f.limiter, config, log).(*authService)
	f.authSvc.now = clockFn
	f.userSvc = NewUserService(f.repo, log).(*userService)
	f.userSvc.now = clockFn
	f.txSvc = NewTransactionService(f.repo, log).(*transactionService)
	f.txSvc.now = clockFn
	f.catSvc = NewCategoryService(f.repo, log).(*categoryService)
	f.catSvc.now = clockFn
	return f
}

func (f *fixture) addUser(email, password string, mutate func(u *entity.User)) *entity.User {
	hash, err := utils.HashPassword(password)
	if err != nil {
		panic(err)
	}
	u := &entity.User{
		Base:         entity.Base{ID: uuid.New(), CreatedAt: f.now, UpdatedAt: f.now},
		Email:        email,
		PasswordHash: hash,
		FirstName:    "Test",
		RoleID:       entity.RoleUser,
		IsActive:     true,
	}
	if mutate != nil {
		mutate(u)
	}
	f.userRepo.users[u.ID] = u
	return u
}

func (f *fixture) addCategory(owner *uuid.UUID, name string, t entity.EntryType) *entity.Category {
	c := &entity.Category{
		BaseSimple: entity.BaseSimple{ID: uuid.New(), CreatedAt: f.now},
		UserID:     owner,
		Name:       name,
		Type:       t,
		Color:      "#10B981",
		IsDefault:  owner == nil,
	}
	f.cats.categories[c.ID] = c
	return c
}

func asUser(id uuid.UUID) context.Context {
	return utils.SetAuthUser(context.Background(), utils.AuthUser{ID: id, IsVerified: true, Role: entity.RoleUser})
}
