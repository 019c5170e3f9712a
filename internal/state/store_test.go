package state

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/five82/oneearth/internal/schema"
)

func TestQuery_Transitions(t *testing.T) {
	var q Query[int]
	if q.Status != StatusLoading {
		t.Fatalf("zero Status = %v, want loading", q.Status)
	}

	at := time.Now()
	q = q.Succeed(7, at)
	if q.Status != StatusSuccess || q.Data != 7 || !q.HasData || !q.FetchedAt.Equal(at) {
		t.Fatalf("after Succeed = %#v", q)
	}

	q = q.Loading()
	if q.Status != StatusLoading || q.Data != 7 || !q.HasData {
		t.Fatalf("Loading should keep data, got %#v", q)
	}

	boom := errors.New("boom")
	q = q.Fail(boom)
	if q.Status != StatusError || q.Err != boom || q.Failures != 1 || q.Data != 7 {
		t.Fatalf("after Fail = %#v", q)
	}

	q = q.Loading().Succeed(8, at)
	if q.Err != nil || q.Failures != 0 || q.Data != 8 {
		t.Fatalf("success after error should clear it, got %#v", q)
	}
}

func TestQuery_IsOffline(t *testing.T) {
	var q Query[string]
	boom := errors.New("boom")

	q = q.Fail(boom)
	if q.IsOffline() {
		t.Fatal("IsOffline() = true, want false with 1 failure")
	}
	q = q.Loading().Fail(boom)
	if !q.IsOffline() {
		t.Fatal("IsOffline() = false, want true with 2 failures")
	}
	q = q.Loading().Succeed("ok", time.Now())
	if q.IsOffline() {
		t.Fatal("IsOffline() = true, want false after success")
	}
}

func TestStatus_String(t *testing.T) {
	if StatusLoading.String() != "loading" || StatusError.String() != "error" || StatusSuccess.String() != "success" {
		t.Fatalf("unexpected status names")
	}
	if Status(42).String() != "unknown" {
		t.Fatalf("Status(42).String() = %q, want unknown", Status(42).String())
	}
}

func TestStore_UpdateAndSnapshotClone(t *testing.T) {
	var s Store

	series := schema.Series{{Value: 1}, {Value: 2}}
	before := time.Now()
	s.UpdateSeries(Query[schema.Series]{}.Succeed(series, before))
	s.UpdateLatest(Query[schema.LatestMetric]{}.Succeed(schema.LatestMetric{Value: 421.3}, before))

	// Mutating the caller's slice must not leak into the store.
	series[0].Value = 500

	snap := s.Snapshot()
	if snap.Latest.Data.Value != 421.3 {
		t.Fatalf("latest = %v, want 421.3", snap.Latest.Data.Value)
	}
	if len(snap.Series.Data) != 2 || snap.Series.Data[0].Value != 1 {
		t.Fatalf("series = %#v, want [1 2]", snap.Series.Data)
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}

	// Returned snapshot should be independent of the stored one.
	snap.Series.Data[0].Value = 999
	if s.Snapshot().Series.Data[0].Value != 1 {
		t.Fatalf("Snapshot should clone series")
	}
}

func TestStore_SnapshotClonesErrors(t *testing.T) {
	var s Store

	origErr := errors.New("boom")
	s.UpdateLatest(Query[schema.LatestMetric]{}.Fail(origErr))

	snap := s.Snapshot()
	if snap.Latest.Err == nil || snap.Latest.Err.Error() != "boom" {
		t.Fatalf("Latest.Err = %v, want boom", snap.Latest.Err)
	}
	if !errors.Is(snap.Latest.Err, origErr) {
		t.Fatalf("cloned error should still wrap the original")
	}
	if reflect.ValueOf(snap.Latest.Err).Pointer() == reflect.ValueOf(origErr).Pointer() {
		t.Fatalf("Snapshot should clone error instance")
	}
}

func TestStore_HelloErrorKeepsPreviousMessage(t *testing.T) {
	var s Store

	s.UpdateHello("hello", nil)
	s.UpdateHello("", errors.New("unreachable"))

	snap := s.Snapshot()
	if snap.Hello != "hello" {
		t.Fatalf("Hello = %q, want hello", snap.Hello)
	}
	if snap.HelloErr == nil {
		t.Fatalf("HelloErr = nil, want error")
	}

	s.UpdateHello("again", nil)
	if snap := s.Snapshot(); snap.HelloErr != nil || snap.Hello != "again" {
		t.Fatalf("snapshot = %#v, want cleared error", snap)
	}
}

func TestSnapshot_PendingAndUnavailable(t *testing.T) {
	var s Store
	if snap := s.Snapshot(); !snap.Pending() || snap.Unavailable() {
		t.Fatalf("empty store should be pending")
	}

	now := time.Now()
	s.UpdateLatest(Query[schema.LatestMetric]{}.Succeed(schema.LatestMetric{Value: 1}, now))
	if !s.Snapshot().Pending() {
		t.Fatalf("store with only latest should still be pending")
	}

	s.UpdateSeries(Query[schema.Series]{}.Fail(errors.New("down")))
	snap := s.Snapshot()
	if snap.Pending() || !snap.Unavailable() {
		t.Fatalf("failed series should make the snapshot unavailable")
	}

	s.UpdateSeries(Query[schema.Series]{}.Succeed(schema.Series{{Value: 1}}, now))
	snap = s.Snapshot()
	if snap.Pending() || snap.Unavailable() {
		t.Fatalf("both queries succeeded, snapshot = %#v", snap)
	}
}
