package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestRedisService_Connect(t *testing.T) {
	mr := miniredis.RunT(t)

	for _, url := range []string{mr.Addr(), "redis://" + mr.Addr() + "/0"} {
		rs, err := NewRedisService(url, discardLogger())
		if err != nil {
			t.Fatalf("NewRedisService(%q) failed: %v", url, err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		if err := rs.WaitForConnection(ctx, 3, 10*time.Millisecond); err != nil {
			t.Errorf("WaitForConnection(%q) failed: %v", url, err)
		}
		cancel()

		if err := rs.GetClient().Set(context.Background(), "k", "v", 0).Err(); err != nil {
			t.Errorf("set via client failed: %v", err)
		}
		if err := rs.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	}

	if got, _ := mr.Get("k"); got != "v" {
		t.Errorf("expected key written through client, got %q", got)
	}
}

func TestRedisService_InvalidURL(t *testing.T) {
	if _, err := NewRedisService("redis://:bad:port:/x", discardLogger()); err == nil {
		t.Error("expected error for malformed url")
	}
}

func TestRedisService_WaitForConnectionGivesUp(t *testing.T) {
	mr := miniredis.RunT(t)
	rs, err := NewRedisService(mr.Addr(), discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = rs.Close() }()
	mr.Close()

	if err := rs.WaitForConnection(context.Background(), 2, time.Millisecond); err == nil {
		t.Error("expected error once redis is gone")
	}
}
