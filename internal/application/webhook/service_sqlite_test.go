package webhook_test

import (
	"context"
	"testing"
	"time"

	"github.com/erp/omnisync/internal/application/ordersync"
	appwebhook "github.com/erp/omnisync/internal/application/webhook"
	"github.com/erp/omnisync/internal/domain/channel"
	"github.com/erp/omnisync/internal/domain/order"
	"github.com/erp/omnisync/internal/infrastructure/cache"
	"github.com/erp/omnisync/internal/infrastructure/persistence"
	"github.com/erp/omnisync/internal/infrastructure/persistence/models"
	"github.com/erp/omnisync/internal/infrastructure/webhook"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupIntake(t *testing.T) (*appwebhook.Service, *gorm.DB) {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=on"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.All()...))

	store := cache.NewInMemoryReplayStore()
	t.Cleanup(func() { _ = store.Close() })
	verifier, err := webhook.NewVerifier([]string{"s3cret"}, store, 300*time.Second, zap.NewNop())
	require.NoError(t, err)
	normalizer, err := webhook.NewNormalizer()
	require.NoError(t, err)

	syncer := ordersync.NewService(persistence.NewGormOrderRepository(db), nil, nil, nil, zap.NewNop())
	return appwebhook.NewService(verifier, normalizer, syncer, nil, zap.NewNop()), db
}

func TestHandle_DuplicateDeliveryIsReplay(t *testing.T) {
	svc, db := setupIntake(t)
	ctx := context.Background()
	body := []byte(`{"ext_id":"456","channel":"ebay","currency":"USD","total":"9.99",
		"items":[{"sku":"ABC","quantity":1,"unit_price":"9.99"}]}`)
	sig := webhook.Sign("s3cret", body)

	out, err := svc.Handle(ctx, body, sig)
	require.NoError(t, err)
	assert.True(t, out.Inserted)

	_, err = svc.Handle(ctx, body, sig)
	assert.ErrorIs(t, err, webhook.ErrReplayDetected)

	var orders, lines int64
	require.NoError(t, db.Model(&models.OrderModel{}).Count(&orders).Error)
	require.NoError(t, db.Model(&models.OrderLineModel{}).Count(&lines).Error)
	assert.Equal(t, int64(1), orders)
	assert.Equal(t, int64(1), lines)

	rec, err := persistence.NewGormOrderRepository(db).FindByKey(ctx, order.Key{Channel: channel.Ebay, ExtID: "456"})
	require.NoError(t, err)
	assert.Equal(t, "ABC", rec.Lines[0].SKU)
}

func TestHandle_ResignedDuplicateIsIdempotent(t *testing.T) {
	svc, db := setupIntake(t)
	ctx := context.Background()
	first := []byte(`{"ext_id":"456","channel":"ebay","currency":"USD","items":[{"sku":"ABC","quantity":1,"price":1}]}`)
	// same order, different bytes, so a different signature
	second := []byte(`{"channel":"ebay","ext_id":456,"currency":"USD","items":[{"sku":"ABC","quantity":1,"price":1}]}`)

	out, err := svc.Handle(ctx, first, webhook.Sign("s3cret", first))
	require.NoError(t, err)
	assert.True(t, out.Inserted)

	out, err = svc.Handle(ctx, second, webhook.Sign("s3cret", second))
	require.NoError(t, err)
	assert.False(t, out.Inserted)

	var orders int64
	require.NoError(t, db.Model(&models.OrderModel{}).Count(&orders).Error)
	assert.Equal(t, int64(1), orders)
}
