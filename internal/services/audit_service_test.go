package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Wikid82/autosource/backend/internal/models"
)

func TestAuditService_RecordRequiresActorAndKnownAction(t *testing.T) {
	f := newFixture(t)

	_, err := f.audit.Record(f.db, "", models.AuditLogin, "", nil)
	assert.True(t, IsUnauthorized(err))

	_, err = f.audit.Record(f.db, "admin@example.com", models.AuditAction("DROP_TABLES"), "", nil)
	assert.Error(t, err)

	entry, err := f.audit.Record(f.db, "admin@example.com", models.AuditLogin, "", nil)
	require.NoError(t, err)
	assert.Nil(t, entry.SubjectID)
	assert.JSONEq(t, "{}", string(entry.Payload))
}

func TestAuditService_CountsOnlyCommittedEntries(t *testing.T) {
	f := newFixture(t)
	before := auditMetric(t, models.AuditImportListings)

	err := f.db.Transaction(func(tx *gorm.DB) error {
		_, err := f.audit.Record(tx, "admin@example.com", models.AuditImportListings, "", nil)
		require.NoError(t, err)
		return errors.New("abort import")
	})
	require.Error(t, err)
	assert.Zero(t, f.auditCount(t, models.AuditImportListings))
	assert.Equal(t, before, auditMetric(t, models.AuditImportListings))

	require.NoError(t, f.audit.Log(context.Background(), "admin@example.com", models.AuditLogin, "", nil))
	loginBefore := auditMetric(t, models.AuditLogin)
	require.NoError(t, f.audit.Log(context.Background(), "admin@example.com", models.AuditLogin, "", nil))
	assert.Equal(t, loginBefore+1, auditMetric(t, models.AuditLogin))

	f.audit.Committed(nil)
	assert.Equal(t, before, auditMetric(t, models.AuditImportListings))
}

func TestAuditService_EntriesAreImmutable(t *testing.T) {
	f := newFixture(t)
	entry, err := f.audit.Record(f.db, "admin@example.com", models.AuditLogin, "", nil)
	require.NoError(t, err)

	err = f.db.Model(entry).Update("actor", "someone-else").Error
	assert.ErrorIs(t, err, models.ErrAuditImmutable)
	err = f.db.Delete(entry).Error
	assert.ErrorIs(t, err, models.ErrAuditImmutable)
}

func TestAuditService_List(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.audit.Log(ctx, "alice@example.com", models.AuditLogin, "", nil))
	require.NoError(t, f.audit.Log(ctx, "bob@example.com", models.AuditLogin, "", nil))
	require.NoError(t, f.audit.Log(ctx, "alice@example.com", models.AuditLogout, "", nil))

	_, err := f.audit.List(ctx, nil, "")
	assert.True(t, IsUnauthorized(err))

	res, err := f.audit.List(ctx, nil, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Total)

	res, err = f.audit.List(ctx, map[string]string{"actor": "alice@example.com"}, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Total)

	res, err = f.audit.List(ctx, map[string]string{"action": "logout"}, "admin@example.com")
	require.NoError(t, err)
	require.Equal(t, int64(1), res.Total)
	assert.Equal(t, models.AuditLogout, res.Rows[0].Action)

	// unknown actions are ignored rather than rejected
	res, err = f.audit.List(ctx, map[string]string{"action": "nonsense"}, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Total)
}
