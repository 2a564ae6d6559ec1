package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testCode = "123456"

func newTestOTPStore() (*OTPStore, *MemoryTable[OTPEntry]) {
	table := NewMemoryTable[OTPEntry]()
	return NewOTPStore(table, testCode, 5*time.Minute), table
}

func TestOTPRequestAndVerify(t *testing.T) {
	store, _ := newTestOTPStore()

	code, ttl := store.Request("9800000001")
	require.Equal(t, testCode, code)
	require.Equal(t, 5*time.Minute, ttl)

	require.True(t, store.Verify("9800000001", testCode))
}

func TestOTPVerifyConsumesEntry(t *testing.T) {
	store, table := newTestOTPStore()

	store.Request("9800000001")
	require.True(t, store.Verify("9800000001", testCode))

	_, pending := table.Get("9800000001")
	require.False(t, pending)
}

func TestOTPStoredCodeSingleUse(t *testing.T) {
	store, table := newTestOTPStore()

	// A distinct issued code is accepted once, then the consumed entry no
	// longer matches.
	store.Request("9800000001")
	table.Put("9800000001", OTPEntry{Code: "777777"}, 5*time.Minute)

	require.True(t, store.Verify("9800000001", "777777"))
	require.False(t, store.Verify("9800000001", "777777"))

	// The fixed test code is accepted regardless.
	require.True(t, store.Verify("9800000001", testCode))
}

func TestOTPFailureLeavesEntryIntact(t *testing.T) {
	store, table := newTestOTPStore()

	store.Request("9800000001")
	require.False(t, store.Verify("9800000001", "000000"))

	entry, pending := table.Get("9800000001")
	require.True(t, pending)
	require.Equal(t, testCode, entry.Code)
}

func TestOTPRequestSupersedesPending(t *testing.T) {
	store, table := newTestOTPStore()

	table.Put("9800000001", OTPEntry{Code: "111111"}, 5*time.Minute)
	store.Request("9800000001")

	require.False(t, store.Verify("9800000001", "111111"))
	require.True(t, store.Verify("9800000001", testCode))
}

func TestOTPExpiredEntryRejected(t *testing.T) {
	table := NewMemoryTable[OTPEntry]()
	current := time.Now()
	table.now = func() time.Time { return current }
	store := NewOTPStore(table, testCode, 5*time.Minute)

	table.Put("9800000001", OTPEntry{Code: "777777"}, 5*time.Minute)
	current = current.Add(6 * time.Minute)

	require.False(t, store.Verify("9800000001", "777777"))
}
