package domain

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

var testStart = time.Unix(1_700_000_000, 0)

func newTestToken(t *testing.T, clock Clock, opts ...TokenOption) *Token {
	t.Helper()
	meta := Metadata{
		Name:      "TestToken",
		Symbol:    "TT",
		BatchID:   1,
		ExpiresAt: clock.Now().Add(time.Hour).Unix(),
	}
	tok, err := NewToken(meta, 100, "creator", clock, opts...)
	if err != nil {
		t.Fatalf("NewToken() error = %v", err)
	}
	return tok
}

func TestGenerateTokenAddress(t *testing.T) {
	seen := make(map[TokenAddress]bool)
	for i := 0; i < 100; i++ {
		addr, err := GenerateTokenAddress(testStart)
		if err != nil {
			t.Fatalf("GenerateTokenAddress() error = %v", err)
		}
		if !strings.HasPrefix(string(addr), TokenAddressPrefix) {
			t.Errorf("address %q missing prefix", addr)
		}
		if len(addr) != 30 {
			t.Errorf("address length = %d, want 30", len(addr))
		}
		if !IsValidTokenAddress(string(addr)) {
			t.Errorf("IsValidTokenAddress(%q) = false", addr)
		}
		if seen[addr] {
			t.Fatalf("duplicate address %q", addr)
		}
		seen[addr] = true
	}
}

func TestIsValidTokenAddress(t *testing.T) {
	tests := []struct {
		addr string
		want bool
	}{
		{"", false},
		{"tkn-", false},
		{"tkn-01arz3ndektsv4rrffq69g5fa", false},
		{"tkn-81arz3ndektsv4rrffq69g5fav", false},
		{"tkn-01arz3ndektsv4rrffq69g5fau", false},
		{"abc-01arz3ndektsv4rrffq69g5fav", false},
		{"tkn-01arz3ndektsv4rrffq69g5fav", true},
	}
	for _, tt := range tests {
		if got := IsValidTokenAddress(tt.addr); got != tt.want {
			t.Errorf("IsValidTokenAddress(%q) = %v, want %v", tt.addr, got, tt.want)
		}
	}
}

func TestNewToken(t *testing.T) {
	clock := NewManualClock(testStart)
	tok := newTestToken(t, clock)

	if got := tok.BalanceOf("creator"); got != 100 {
		t.Errorf("BalanceOf(creator) = %d, want 100", got)
	}
	if got := tok.TotalSupply(); got != 100 {
		t.Errorf("TotalSupply() = %d, want 100", got)
	}
	if tok.Address() == "" {
		t.Error("Address() should be generated")
	}
	if tok.BatchID() != 1 {
		t.Errorf("BatchID() = %d, want 1", tok.BatchID())
	}
	if tok.State() != StateActive {
		t.Errorf("State() = %s, want active", tok.State())
	}
	if tok.Version() != 1 {
		t.Errorf("Version() = %d, want 1", tok.Version())
	}
	meta := tok.Metadata()
	if meta.Name != "TestToken" || meta.Symbol != "TT" {
		t.Errorf("Metadata() = %+v", meta)
	}
}

func TestNewToken_Validation(t *testing.T) {
	clock := NewManualClock(testStart)
	future := testStart.Add(time.Hour).Unix()

	tests := []struct {
		name    string
		meta    Metadata
		supply  uint64
		creator Address
		opts    []TokenOption
		wantErr error
	}{
		{"empty name", Metadata{Symbol: "TT", ExpiresAt: future}, 1, "c", nil, ErrInvalidArgument},
		{"empty symbol", Metadata{Name: "T", ExpiresAt: future}, 1, "c", nil, ErrInvalidArgument},
		{"zero supply", Metadata{Name: "T", Symbol: "TT", ExpiresAt: future}, 0, "c", nil, ErrInvalidAmount},
		{"empty creator", Metadata{Name: "T", Symbol: "TT", ExpiresAt: future}, 1, "", nil, ErrInvalidAddress},
		{"expiry now", Metadata{Name: "T", Symbol: "TT", ExpiresAt: testStart.Unix()}, 1, "c", nil, ErrInvalidExpiry},
		{"allocation exceeds supply", Metadata{Name: "T", Symbol: "TT", ExpiresAt: future}, 10, "c",
			[]TokenOption{WithCreatorAllocation(11, "reserve")}, ErrInvalidAmount},
		{"partial allocation without reserve", Metadata{Name: "T", Symbol: "TT", ExpiresAt: future}, 10, "c",
			[]TokenOption{WithCreatorAllocation(5, "")}, ErrInvalidAddress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewToken(tt.meta, tt.supply, tt.creator, clock, tt.opts...)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewToken() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewToken_CreatorAllocation(t *testing.T) {
	clock := NewManualClock(testStart)
	tok := newTestToken(t, clock, WithCreatorAllocation(60, "factory"))

	if got := tok.BalanceOf("creator"); got != 60 {
		t.Errorf("BalanceOf(creator) = %d, want 60", got)
	}
	if got := tok.BalanceOf("factory"); got != 40 {
		t.Errorf("BalanceOf(factory) = %d, want 40", got)
	}
	if got := tok.TotalSupply(); got != 100 {
		t.Errorf("TotalSupply() = %d, want 100", got)
	}

	zero := newTestToken(t, clock, WithCreatorAllocation(0, "factory"))
	if zero.BalanceOf("creator") != 0 || zero.BalanceOf("factory") != 100 {
		t.Errorf("zero allocation: creator=%d factory=%d", zero.BalanceOf("creator"), zero.BalanceOf("factory"))
	}
}

func TestToken_TransferByBatchLifecycle(t *testing.T) {
	clock := NewManualClock(testStart)
	tok := newTestToken(t, clock)

	if got := tok.BalanceOf("other"); got != 0 {
		t.Errorf("BalanceOf(other) = %d, want 0", got)
	}

	if err := tok.TransferByBatch("creator", "other", 50, 1); err != nil {
		t.Fatalf("TransferByBatch() error = %v", err)
	}
	if tok.BalanceOf("creator") != 50 || tok.BalanceOf("other") != 50 {
		t.Errorf("after transfer creator=%d other=%d, want 50/50",
			tok.BalanceOf("creator"), tok.BalanceOf("other"))
	}

	clock.Advance(time.Hour)

	err := tok.TransferByBatch("other", "creator", 10, 1)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("TransferByBatch() after expiry error = %v, want ErrTokenExpired", err)
	}
	if !strings.Contains(err.Error(), "Token has expired") {
		t.Errorf("error %q should contain %q", err.Error(), "Token has expired")
	}
	if tok.BalanceOf("creator") != 50 || tok.BalanceOf("other") != 50 {
		t.Errorf("expired transfer changed balances: creator=%d other=%d",
			tok.BalanceOf("creator"), tok.BalanceOf("other"))
	}
	if tok.State() != StateExpired {
		t.Errorf("State() = %s, want expired", tok.State())
	}

	// Time moving further forward never revives the token.
	clock.Advance(24 * time.Hour)
	if err := tok.TransferByBatch("other", "creator", 1, 1); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("TransferByBatch() later error = %v, want ErrTokenExpired", err)
	}
}

func TestToken_ExpiryLatchesAgainstClockRollback(t *testing.T) {
	clock := NewManualClock(testStart)
	tok := newTestToken(t, clock)

	clock.Advance(time.Hour)
	if err := tok.TransferByBatch("creator", "other", 10, 1); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("TransferByBatch() after expiry error = %v, want ErrTokenExpired", err)
	}

	clock.Set(testStart)
	if err := tok.TransferByBatch("creator", "other", 10, 1); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("TransferByBatch() after clock rollback error = %v, want ErrTokenExpired", err)
	}
	if tok.BalanceOf("creator") != 100 || tok.BalanceOf("other") != 0 {
		t.Errorf("balances creator=%d other=%d, want 100/0", tok.BalanceOf("creator"), tok.BalanceOf("other"))
	}
	if !tok.IsExpired() || tok.State() != StateExpired {
		t.Errorf("IsExpired() = %v, State() = %s, want expired", tok.IsExpired(), tok.State())
	}
	if tok.Version() != 1 {
		t.Errorf("Version() = %d, want 1", tok.Version())
	}
}

func TestToken_StateObservationLatchesExpiry(t *testing.T) {
	clock := NewManualClock(testStart)
	tok := newTestToken(t, clock)

	clock.Advance(time.Hour)
	if tok.State() != StateExpired {
		t.Fatalf("State() = %s, want expired", tok.State())
	}

	clock.Set(testStart)
	if tok.State() != StateExpired {
		t.Errorf("State() after clock rollback = %s, want expired", tok.State())
	}
	if !tok.Snapshot().Expired {
		t.Error("Snapshot().Expired = false, want true")
	}
}

func TestToken_BatchMismatch(t *testing.T) {
	clock := NewManualClock(testStart)
	tok := newTestToken(t, clock)

	// Fails regardless of balance sufficiency.
	for _, amount := range []uint64{1, 100, 1000} {
		err := tok.TransferByBatch("creator", "other", amount, 2)
		if !errors.Is(err, ErrBatchMismatch) {
			t.Errorf("TransferByBatch(amount=%d, batch=2) error = %v, want ErrBatchMismatch", amount, err)
		}
	}

	// Mismatch is reported even after expiry.
	clock.Advance(2 * time.Hour)
	if err := tok.TransferByBatch("creator", "other", 1, 2); !errors.Is(err, ErrBatchMismatch) {
		t.Errorf("TransferByBatch() expired mismatch error = %v, want ErrBatchMismatch", err)
	}
	if tok.BalanceOf("creator") != 100 {
		t.Errorf("BalanceOf(creator) = %d, want 100", tok.BalanceOf("creator"))
	}
}

func TestToken_InsufficientBalance(t *testing.T) {
	clock := NewManualClock(testStart)
	tok := newTestToken(t, clock)

	err := tok.TransferByBatch("creator", "other", 101, 1)
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("TransferByBatch() error = %v, want ErrInsufficientBalance", err)
	}
	if tok.BalanceOf("creator") != 100 || tok.BalanceOf("other") != 0 {
		t.Error("failed transfer changed balances")
	}
	if tok.Version() != 1 {
		t.Errorf("Version() = %d, want 1", tok.Version())
	}
}

func TestToken_CommitHook(t *testing.T) {
	clock := NewManualClock(testStart)
	tok := newTestToken(t, clock)

	var committed []*TokenState
	tok.SetCommitHook(func(state *TokenState) error {
		committed = append(committed, state)
		return nil
	})

	if err := tok.TransferByBatch("creator", "other", 25, 1); err != nil {
		t.Fatalf("TransferByBatch() error = %v", err)
	}
	if len(committed) != 1 {
		t.Fatalf("hook called %d times, want 1", len(committed))
	}
	if committed[0].Balances["other"] != 25 || committed[0].Version != 2 {
		t.Errorf("committed state = %+v", committed[0])
	}
}

func TestToken_CommitHookFailureRollsBack(t *testing.T) {
	clock := NewManualClock(testStart)
	tok := newTestToken(t, clock)

	cause := fmt.Errorf("disk full")
	tok.SetCommitHook(func(*TokenState) error { return cause })

	err := tok.TransferByBatch("creator", "other", 25, 1)
	if !errors.Is(err, ErrStorageError) || !errors.Is(err, cause) {
		t.Fatalf("TransferByBatch() error = %v, want ErrStorageError wrapping cause", err)
	}
	if tok.BalanceOf("creator") != 100 || tok.BalanceOf("other") != 0 {
		t.Errorf("rolled back transfer left creator=%d other=%d",
			tok.BalanceOf("creator"), tok.BalanceOf("other"))
	}
	if tok.Version() != 1 {
		t.Errorf("Version() = %d, want 1", tok.Version())
	}
	if err := tok.Verify(); err != nil {
		t.Errorf("Verify() = %v", err)
	}
}

func TestToken_SnapshotRestore(t *testing.T) {
	clock := NewManualClock(testStart)
	tok := newTestToken(t, clock)
	_ = tok.TransferByBatch("creator", "other", 30, 1)

	state := tok.Snapshot()
	restored, err := RestoreToken(state, clock)
	if err != nil {
		t.Fatalf("RestoreToken() error = %v", err)
	}
	if restored.Address() != tok.Address() || restored.BatchID() != tok.BatchID() {
		t.Errorf("restored metadata = %+v, want %+v", restored.Metadata(), tok.Metadata())
	}
	if restored.BalanceOf("creator") != 70 || restored.BalanceOf("other") != 30 {
		t.Errorf("restored balances creator=%d other=%d", restored.BalanceOf("creator"), restored.BalanceOf("other"))
	}
	if restored.Version() != 2 {
		t.Errorf("restored Version() = %d, want 2", restored.Version())
	}

	// Expired tokens restore as expired.
	clock.Advance(2 * time.Hour)
	again, err := RestoreToken(state, clock)
	if err != nil {
		t.Fatalf("RestoreToken() expired error = %v", err)
	}
	if again.State() != StateExpired {
		t.Errorf("State() = %s, want expired", again.State())
	}

	// A state captured after expiry stays expired under an earlier clock.
	expired := again.Snapshot()
	if !expired.Expired {
		t.Fatal("Snapshot().Expired = false, want true")
	}
	rewound, err := RestoreToken(expired, NewManualClock(testStart))
	if err != nil {
		t.Fatalf("RestoreToken() rewound error = %v", err)
	}
	if rewound.State() != StateExpired {
		t.Errorf("rewound State() = %s, want expired", rewound.State())
	}
	if err := rewound.TransferByBatch("creator", "other", 1, 1); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("rewound TransferByBatch() error = %v, want ErrTokenExpired", err)
	}
}

func TestRestoreToken_SupplyMismatch(t *testing.T) {
	state := &TokenState{
		Metadata: Metadata{Name: "T", Symbol: "TT", BatchID: 9, ExpiresAt: 1, Address: "tkn-01arz3ndektsv4rrffq69g5fav"},
		Supply:   100,
		Balances: map[Address]uint64{"a": 99},
	}
	if _, err := RestoreToken(state, nil); !errors.Is(err, ErrSupplyViolation) {
		t.Errorf("RestoreToken() error = %v, want ErrSupplyViolation", err)
	}
}

func TestToken_ConcurrentTransfers(t *testing.T) {
	clock := NewManualClock(testStart)
	meta := Metadata{Name: "T", Symbol: "TT", BatchID: 5, ExpiresAt: testStart.Add(time.Hour).Unix()}
	tok, err := NewToken(meta, 10_000, "creator", clock)
	if err != nil {
		t.Fatal(err)
	}

	const workers = 20
	const perWorker = 50

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			owner := Address(fmt.Sprintf("owner-%d", w))
			for i := 0; i < perWorker; i++ {
				if err := tok.TransferByBatch("creator", owner, 1, 5); err != nil {
					t.Errorf("TransferByBatch() error = %v", err)
					return
				}
				_ = tok.BalanceOf(owner)
			}
		}(w)
	}

	// Readers must always observe a conserved snapshot.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			s := tok.Snapshot()
			var sum uint64
			for _, v := range s.Balances {
				sum += v
			}
			if sum != s.Supply {
				t.Errorf("snapshot sum %d != supply %d", sum, s.Supply)
				return
			}
		}
	}()

	wg.Wait()
	<-done

	if got := tok.BalanceOf("creator"); got != 10_000-workers*perWorker {
		t.Errorf("BalanceOf(creator) = %d, want %d", got, 10_000-workers*perWorker)
	}
	if err := tok.Verify(); err != nil {
		t.Errorf("Verify() = %v", err)
	}
}
