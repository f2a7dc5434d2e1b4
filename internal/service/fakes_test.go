package service

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"noticeboard/internal/model"
	"noticeboard/internal/repository"
	"noticeboard/pkg/async"
	"noticeboard/pkg/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return rdb, mr
}

func newTestWorker(t *testing.T) *async.Worker {
	t.Helper()
	w := async.NewWorker(16, logger.NewNop())
	w.Start(1)
	t.Cleanup(w.Stop)
	return w
}

// fakeTenantRepo 内存中的楼宇仓库，事务由 sqlmock 提供
type fakeTenantRepo struct {
	mu      sync.Mutex
	tenants map[int64]*model.Tenant
	nextID  int64
	db      *sqlx.DB
	mock    sqlmock.Sqlmock
}

func newFakeTenantRepo(t *testing.T) *fakeTenantRepo {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &fakeTenantRepo{
		tenants: make(map[int64]*model.Tenant),
		db:      sqlx.NewDb(db, "mysql"),
		mock:    mock,
	}
}

func (r *fakeTenantRepo) add(t *model.Tenant) *model.Tenant {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	t.ID = r.nextID
	cp := *t
	r.tenants[t.ID] = &cp
	return t
}

func (r *fakeTenantRepo) find(match func(*model.Tenant) bool) (*model.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tenants {
		if match(t) {
			cp := *t
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeTenantRepo) Create(ctx context.Context, t *model.Tenant) error {
	r.add(t)
	return nil
}

func (r *fakeTenantRepo) GetByID(ctx context.Context, id int64) (*model.Tenant, error) {
	return r.find(func(t *model.Tenant) bool { return t.ID == id })
}

func (r *fakeTenantRepo) GetBySlug(ctx context.Context, slug string) (*model.Tenant, error) {
	return r.find(func(t *model.Tenant) bool { return t.Slug == slug })
}

func (r *fakeTenantRepo) GetByEmail(ctx context.Context, email string) (*model.Tenant, error) {
	return r.find(func(t *model.Tenant) bool { return t.Email == email })
}

func (r *fakeTenantRepo) GetByToken(ctx context.Context, token string) (*model.Tenant, error) {
	return r.find(func(t *model.Tenant) bool { return t.Token == token })
}

func (r *fakeTenantRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	_, err := r.GetBySlug(ctx, slug)
	return err == nil, nil
}

func (r *fakeTenantRepo) Update(ctx context.Context, t *model.Tenant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *t
	r.tenants[t.ID] = &cp
	return nil
}

func (r *fakeTenantRepo) UpdateToken(ctx context.Context, id int64, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tenants[id]
	if !ok {
		return repository.ErrNotFound
	}
	t.Token = token
	return nil
}

func (r *fakeTenantRepo) SetActive(ctx context.Context, id int64, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tenants[id]
	if !ok {
		return repository.ErrNotFound
	}
	t.IsActive = active
	return nil
}

func (r *fakeTenantRepo) List(ctx context.Context, offset, limit int) ([]*model.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Tenant
	for _, t := range r.tenants {
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if offset >= len(out) {
		return []*model.Tenant{}, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

func (r *fakeTenantRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.tenants)), nil
}

func (r *fakeTenantRepo) BeginTx(ctx context.Context) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, nil)
}

func (r *fakeTenantRepo) WithTx(tx *sqlx.Tx) repository.TenantRepository {
	return r
}

// fakeNoticeRepo 内存通知仓库
type fakeNoticeRepo struct {
	notices []model.Notice
	calls   int
}

func (r *fakeNoticeRepo) Create(ctx context.Context, n *model.Notice) error {
	n.ID = int64(len(r.notices) + 1)
	n.CreatedAt = time.Now()
	r.notices = append(r.notices, *n)
	return nil
}

func (r *fakeNoticeRepo) GetByID(ctx context.Context, tenantID, id int64) (*model.Notice, error) {
	for _, n := range r.notices {
		if n.ID == id && n.TenantID == tenantID {
			return &n, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeNoticeRepo) Update(ctx context.Context, n *model.Notice) error {
	for i := range r.notices {
		if r.notices[i].ID == n.ID && r.notices[i].TenantID == n.TenantID {
			r.notices[i] = *n
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeNoticeRepo) Delete(ctx context.Context, tenantID, id int64) error {
	for i, n := range r.notices {
		if n.ID == id && n.TenantID == tenantID {
			r.notices = append(r.notices[:i], r.notices[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeNoticeRepo) List(ctx context.Context, tenantID int64, offset, limit int) ([]model.Notice, error) {
	var out []model.Notice
	for _, n := range r.notices {
		if n.TenantID == tenantID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *fakeNoticeRepo) Count(ctx context.Context, tenantID int64) (int64, error) {
	list, _ := r.List(ctx, tenantID, 0, 0)
	return int64(len(list)), nil
}

func (r *fakeNoticeRepo) ListDisplayable(ctx context.Context, tenantID int64, now time.Time) ([]model.Notice, error) {
	r.calls++
	out := []model.Notice{}
	for _, n := range r.notices {
		if n.TenantID == tenantID && n.Displayable(now) {
			out = append(out, n)
		}
	}
	return out, nil
}

// fakeImageRepo 内存图片仓库
type fakeImageRepo struct {
	images []model.Image
}

func (r *fakeImageRepo) Create(ctx context.Context, img *model.Image) error {
	img.ID = int64(len(r.images) + 1)
	img.CreatedAt = time.Now()
	r.images = append(r.images, *img)
	return nil
}

func (r *fakeImageRepo) GetByID(ctx context.Context, tenantID, id int64) (*model.Image, error) {
	for _, img := range r.images {
		if img.ID == id && img.TenantID == tenantID {
			return &img, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeImageRepo) SetActive(ctx context.Context, tenantID, id int64, active bool) error {
	for i := range r.images {
		if r.images[i].ID == id && r.images[i].TenantID == tenantID {
			r.images[i].IsActive = active
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeImageRepo) Delete(ctx context.Context, tenantID, id int64) error {
	for i, img := range r.images {
		if img.ID == id && img.TenantID == tenantID {
			r.images = append(r.images[:i], r.images[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeImageRepo) List(ctx context.Context, tenantID int64) ([]model.Image, error) {
	out := []model.Image{}
	for _, img := range r.images {
		if img.TenantID == tenantID {
			out = append(out, img)
		}
	}
	return out, nil
}

func (r *fakeImageRepo) ListActive(ctx context.Context, tenantID int64) ([]model.Image, error) {
	out := []model.Image{}
	for _, img := range r.images {
		if img.TenantID == tenantID && img.IsActive {
			out = append(out, img)
		}
	}
	return out, nil
}

// fakeStyleRepo 内存样式仓库
type fakeStyleRepo struct {
	styles map[int64]model.StyleConfig
}

func (r *fakeStyleRepo) Get(ctx context.Context, tenantID int64) (*model.StyleConfig, error) {
	s, ok := r.styles[tenantID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

func (r *fakeStyleRepo) Upsert(ctx context.Context, s *model.StyleConfig) error {
	if r.styles == nil {
		r.styles = make(map[int64]model.StyleConfig)
	}
	r.styles[s.TenantID] = *s
	return nil
}

// fakeSender 记录发送的邮件
type fakeSender struct {
	mu      sync.Mutex
	welcome []string
	resets  []string
}

func (f *fakeSender) SendWelcomeEmail(to, buildingName, displayPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.welcome = append(f.welcome, to)
	return nil
}

func (f *fakeSender) SendTokenResetEmail(to, buildingName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets = append(f.resets, to)
	return nil
}

func (f *fakeSender) welcomeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.welcome)
}

// testEnv 一组共享同一份内存数据的服务
type testEnv struct {
	tenants *fakeTenantRepo
	notices *fakeNoticeRepo
	images  *fakeImageRepo
	styles  *fakeStyleRepo
	redis   *redis.Client
	mr      *miniredis.Miniredis
	display *DisplayService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	rdb, mr := newTestRedis(t)
	env := &testEnv{
		tenants: newFakeTenantRepo(t),
		notices: &fakeNoticeRepo{},
		images:  &fakeImageRepo{},
		styles:  &fakeStyleRepo{},
		redis:   rdb,
		mr:      mr,
	}
	env.display = NewDisplayService(env.tenants, env.notices, env.images, env.styles, rdb, logger.NewNop())
	return env
}
