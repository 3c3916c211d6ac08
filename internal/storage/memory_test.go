package storage

import "testing"

func TestMemStorage(t *testing.T) {
	runStorageSuite(t, func(t *testing.T) Storage {
		return NewMemStorage()
	})
}
