package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquaflow/aquaflow-backend/internal/storage"
)

func TestHandleMessagePersistsAnomaly(t *testing.T) {
	store := storage.NewMemStorage()

	body := []byte(`{"requestId": 12, "type": "volume_mismatch", "description": "short by 300L"}`)
	require.NoError(t, handleMessage(body, store))

	anomalies, err := store.GetAnomaliesByRequestID(12)
	require.NoError(t, err)
	require.Len(t, anomalies, 1)
	assert.Equal(t, "volume_mismatch", anomalies[0].Type)
	assert.Equal(t, "short by 300L", anomalies[0].Description)
	assert.False(t, anomalies[0].Resolved)
}

func TestHandleMessageRejectsBadPayloads(t *testing.T) {
	store := storage.NewMemStorage()

	assert.Error(t, handleMessage([]byte(`not json`), store))
	assert.Error(t, handleMessage([]byte(`{"type": "delay"}`), store))
	assert.Error(t, handleMessage([]byte(`{"requestId": 3}`), store))

	all, err := store.GetAllAnomalies()
	require.NoError(t, err)
	assert.Empty(t, all)
}
