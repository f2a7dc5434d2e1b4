package service

import (
	"context"
	"testing"
	"time"

	"noticeboard/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBundleUsesCache(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tenant := env.tenants.add(&model.Tenant{Name: "Oak", Slug: "oak", IsActive: true})
	env.notices.notices = []model.Notice{{ID: 1, TenantID: tenant.ID, Title: "Hi", Priority: model.PriorityLow, IsActive: true}}

	first, err := env.display.Bundle(ctx, "oak")
	require.NoError(t, err)
	require.Len(t, first.Notices, 1)
	assert.Equal(t, model.DefaultStyle(tenant.ID), first.Style)

	second, err := env.display.Bundle(ctx, "oak")
	require.NoError(t, err)
	assert.Equal(t, 1, env.notices.calls)
	assert.Equal(t, first.Tenant, second.Tenant)
}

func TestBundleInvalidateNotifiesAndRefetches(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.tenants.add(&model.Tenant{Name: "Oak", Slug: "oak", IsActive: true})

	var reloaded []string
	env.display.OnChange(func(slug string) { reloaded = append(reloaded, slug) })

	_, err := env.display.Bundle(ctx, "oak")
	require.NoError(t, err)
	env.display.Invalidate(ctx, "oak")
	_, err = env.display.Bundle(ctx, "oak")
	require.NoError(t, err)

	assert.Equal(t, []string{"oak"}, reloaded)
	assert.Equal(t, 2, env.notices.calls)
}

func TestBundleUnknownOrDisabledTenant(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.tenants.add(&model.Tenant{Name: "Closed", Slug: "closed", IsActive: false})

	_, err := env.display.Bundle(ctx, "missing")
	assert.ErrorIs(t, err, ErrTenantNotFound)

	_, err = env.display.Bundle(ctx, "closed")
	assert.ErrorIs(t, err, ErrTenantNotFound)
}

func TestBundleStyleDefaultsForBadDuration(t *testing.T) {
	env := newTestEnv(t)
	tenant := env.tenants.add(&model.Tenant{Name: "Oak", Slug: "oak", IsActive: true})
	env.styles.styles = map[int64]model.StyleConfig{
		tenant.ID: {TenantID: tenant.ID, BackgroundColor: "#102030", TextColor: "#ffffff", SlideDuration: 0},
	}

	bundle, err := env.display.Bundle(context.Background(), "oak")
	require.NoError(t, err)
	assert.Equal(t, "#102030", bundle.Style.BackgroundColor)
	assert.Equal(t, model.DefaultSlideDuration, bundle.Style.SlideDuration)
}

func TestBundleCacheExpiresWithNotice(t *testing.T) {
	env := newTestEnv(t)
	tenant := env.tenants.add(&model.Tenant{Name: "Oak", Slug: "oak", IsActive: true})
	expires := time.Now().Add(time.Minute)
	env.notices.notices = []model.Notice{{ID: 1, TenantID: tenant.ID, Title: "Soon gone", Priority: model.PriorityHigh, IsActive: true, ExpiresAt: &expires}}

	_, err := env.display.Bundle(context.Background(), "oak")
	require.NoError(t, err)

	ttl := env.mr.TTL(bundleCacheKey("oak"))
	assert.LessOrEqual(t, ttl, time.Minute)
	assert.Greater(t, ttl, time.Duration(0))
}
