package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainmagnet/chainmagnet/internal/discovery"
)

func newMockArchive(t *testing.T) (*Archive, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewArchive(sqlx.NewDb(db, "postgres")), mock
}

func TestArchive_SaveDiscoveryRun(t *testing.T) {
	archive, mock := newMockArchive(t)
	runAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	tokens := []discovery.Token{
		{
			Rank: 1, ID: "chainlink", Symbol: "link", Name: "Chainlink",
			MarketCap: 9e9, Volume24h: 4e8, Change7d: -3.2,
			OriginChains:   []string{"ethereum", "polygon"},
			PresenceStatus: discovery.StatusCandidate,
		},
		{
			Rank: 2, ID: "render", Symbol: "rndr", Name: "Render",
			MarketCap: 2e9, OriginChains: []string{"ethereum"},
			PresenceStatus: discovery.StatusWrappedDetected,
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO discovery_tokens").
		WithArgs(runAt, 1, "chainlink", "link", "Chainlink", 9e9, 4e8, -3.2, "ethereum,polygon", "candidate").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO discovery_tokens").
		WithArgs(runAt, 2, "render", "rndr", "Render", 2e9, 0.0, 0.0, "ethereum", "wrapped_presence_detected").
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	require.NoError(t, archive.SaveDiscoveryRun(context.Background(), runAt, tokens))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArchive_SaveDiscoveryRunEmptyIsNoop(t *testing.T) {
	archive, mock := newMockArchive(t)

	require.NoError(t, archive.SaveDiscoveryRun(context.Background(), time.Now(), nil))
	assert.NoError(t, mock.ExpectationsWereMet(), "no rows means no transaction")
}

func TestArchive_RollbackOnInsertFailure(t *testing.T) {
	archive, mock := newMockArchive(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO discovery_tokens").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := archive.SaveDiscoveryRun(context.Background(), time.Now(), []discovery.Token{
		{Rank: 1, ID: "x", PresenceStatus: discovery.StatusCandidate},
	})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArchive_EnsureSchema(t *testing.T) {
	archive, mock := newMockArchive(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS discovery_tokens").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, archive.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
