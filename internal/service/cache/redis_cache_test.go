package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
)

func TestRedisCacheMissIsNotAnError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	rc := NewRedisCache(db, "coinboard")

	mock.ExpectGet("coinboard:quotes:usd:bitcoin").RedisNil()

	b, ok, err := rc.GetBytes(context.Background(), "quotes:usd:bitcoin")
	if err != nil || ok || b != nil {
		t.Fatalf("expected clean miss, got %v %v %v", b, ok, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestRedisCacheSetAndGet(t *testing.T) {
	db, mock := redismock.NewClientMock()
	rc := NewRedisCache(db, "coinboard")
	payload := []byte(`{"ttl":300}`)

	mock.ExpectSet("coinboard:history:usd:bitcoin:30", payload, time.Hour).SetVal("OK")
	mock.ExpectGet("coinboard:history:usd:bitcoin:30").SetVal(string(payload))

	if err := rc.SetBytes(context.Background(), "history:usd:bitcoin:30", payload, time.Hour); err != nil {
		t.Fatal(err)
	}
	b, ok, err := rc.GetBytes(context.Background(), "history:usd:bitcoin:30")
	if err != nil || !ok || string(b) != string(payload) {
		t.Fatalf("unexpected get result %q %v %v", b, ok, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestRedisCacheErrorPropagates(t *testing.T) {
	db, mock := redismock.NewClientMock()
	rc := NewRedisCache(db, "")
	boom := errors.New("connection reset")

	mock.ExpectGet("quotes:usd:bitcoin").SetErr(boom)

	if _, _, err := rc.GetBytes(context.Background(), "quotes:usd:bitcoin"); !errors.Is(err, boom) {
		t.Fatalf("expected redis error, got %v", err)
	}
}
