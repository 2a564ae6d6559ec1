package auth

import "time"

// OTPEntry is a pending one-time passcode for a phone number.
type OTPEntry struct {
	Code string
}

// OTPStore keeps at most one pending passcode per phone. Passcode delivery
// is mocked: every request stores the fixed test code, which is also always
// accepted by Verify regardless of what is stored.
type OTPStore struct {
	table    Table[OTPEntry]
	testCode string
	ttl      time.Duration
}

func NewOTPStore(table Table[OTPEntry], testCode string, ttl time.Duration) *OTPStore {
	return &OTPStore{table: table, testCode: testCode, ttl: ttl}
}

// Request issues a passcode for the phone, replacing any pending entry.
func (s *OTPStore) Request(phone string) (code string, ttl time.Duration) {
	s.table.Put(phone, OTPEntry{Code: s.testCode}, s.ttl)
	return s.testCode, s.ttl
}

// Verify accepts the fixed test code, or the stored unexpired code for the
// phone. On success the pending entry is consumed; on failure it is left
// intact so the caller can retry.
func (s *OTPStore) Verify(phone, code string) bool {
	stored, ok := s.table.Get(phone)
	valid := code == s.testCode || (ok && stored.Code == code)
	if valid {
		s.table.Delete(phone)
	}
	return valid
}
