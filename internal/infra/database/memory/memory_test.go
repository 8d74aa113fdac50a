package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogo-imperial/gogo-web/internal/entity"
)

func TestLeadRepository_StatusOnlyLeavesPending(t *testing.T) {
	ctx := context.Background()
	repo := NewLeadRepository()

	lead := &entity.Lead{CompanyName: "Acme", DeliveryStatus: entity.DeliveryPending}
	require.NoError(t, repo.Insert(ctx, lead))
	require.NotEmpty(t, lead.ID)

	require.NoError(t, repo.UpdateDeliveryStatus(ctx, lead.ID, entity.DeliverySent, "", 1))
	assert.ErrorIs(t, repo.UpdateDeliveryStatus(ctx, lead.ID, entity.DeliveryFailed, "x", 3), entity.ErrNotFound)

	got, err := repo.FindByID(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.DeliverySent, got.DeliveryStatus)
	assert.Equal(t, 1, got.NotificationAttempts)
}

func TestLeadRepository_ListFiltersAndPaginates(t *testing.T) {
	ctx := context.Background()
	repo := NewLeadRepository()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		repo.now = func() time.Time { return base.Add(time.Duration(i) * time.Minute) }
		l := &entity.Lead{CompanyName: "c", DeliveryStatus: entity.DeliveryPending}
		require.NoError(t, repo.Insert(ctx, l))
		if i%2 == 0 {
			require.NoError(t, repo.UpdateDeliveryStatus(ctx, l.ID, entity.DeliveryFailed, "boom", 3))
		}
	}

	failed, err := repo.List(ctx, entity.ListLeadsFilter{Status: entity.DeliveryFailed})
	require.NoError(t, err)
	assert.Len(t, failed, 3)

	page, err := repo.List(ctx, entity.ListLeadsFilter{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.True(t, page[0].CreatedAt.After(page[1].CreatedAt))

	empty, err := repo.List(ctx, entity.ListLeadsFilter{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSessionRepository_Expiry(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository()
	now := time.Now()

	require.NoError(t, repo.Create(ctx, &entity.AdminSession{Email: "a@gogo.bj", TokenHash: "live", ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, repo.Create(ctx, &entity.AdminSession{Email: "a@gogo.bj", TokenHash: "old", ExpiresAt: now.Add(-time.Second)}))

	_, err := repo.FindActive(ctx, "live", now)
	assert.NoError(t, err)
	_, err = repo.FindActive(ctx, "old", now)
	assert.ErrorIs(t, err, entity.ErrNotFound)

	n, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestPageRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewPageRepository()

	page := &entity.Page{Slug: "b2b", PageType: "page", FrRequired: true}
	require.NoError(t, repo.Create(ctx, page))
	require.Len(t, page.Translations, 2)
	assert.ErrorIs(t, repo.Create(ctx, &entity.Page{Slug: "b2b"}), entity.ErrConflict)

	en := page.Translation(entity.LocaleEN)
	require.NotNil(t, en)
	en.Title = "Fleet fuel"
	en.Body = map[string]any{"hero": "Diesel delivered"}
	en.Version = 2
	require.NoError(t, repo.UpdateTranslation(ctx, en))

	_, err := repo.FindPublished(ctx, "b2b", entity.LocaleEN)
	assert.ErrorIs(t, err, entity.ErrNotFound)

	at := time.Now().UTC()
	require.NoError(t, repo.SetPublished(ctx, en.ID, true, &at))
	content, err := repo.FindPublished(ctx, "b2b", entity.LocaleEN)
	require.NoError(t, err)
	assert.Equal(t, "Fleet fuel", content.Title)
	assert.True(t, content.FrRequired)

	require.NoError(t, repo.SaveHistory(ctx, &entity.ContentHistory{TranslationID: en.ID, Version: 1}))
	require.NoError(t, repo.SaveHistory(ctx, &entity.ContentHistory{TranslationID: en.ID, Version: 2}))
	hist, err := repo.ListHistory(ctx, en.ID, 1)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, 2, hist[0].Version)

	require.NoError(t, repo.Delete(ctx, page.ID))
	_, err = repo.FindTranslation(ctx, en.ID)
	assert.ErrorIs(t, err, entity.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, page.ID), entity.ErrNotFound)
}

func TestAuditRepository_NewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewAuditRepository()
	require.NoError(t, repo.Append(ctx, &entity.AuditEntry{Action: entity.AuditLogin}))
	require.NoError(t, repo.Append(ctx, &entity.AuditEntry{Action: entity.AuditLogout}))

	entries, err := repo.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, entity.AuditLogout, entries[0].Action)
}
