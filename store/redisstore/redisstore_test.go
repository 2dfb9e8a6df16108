package redisstore

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"

	"pocket-ussd/model"
)

func testClient(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379", DB: 15})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis not available: %v", err)
	}
	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})
	return client
}

func TestSessionRoundTrip(t *testing.T) {
	client := testClient(t)
	ctx := context.Background()
	s := NewSessionStore(client, time.Minute)

	session, err := s.GetSession(ctx, "missing")
	if err != nil || session != nil {
		t.Fatalf("expected no session, got %+v, %v", session, err)
	}

	err = s.UpsertSession(ctx, model.USSDSession{Id: "s1", PhoneNumber: "250788", LastInput: "2*n", Language: "2", Page: 1})
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	session, err = s.GetSession(ctx, "s1")
	if err != nil || session == nil {
		t.Fatalf("get failed: %v", err)
	}
	if session.LastInput != "2*n" || session.Page != 1 || session.UpdatedAt.IsZero() {
		t.Fatalf("unexpected session %+v", session)
	}
	if ttl := client.TTL(ctx, keyPrefix+"s1").Val(); ttl <= 0 || ttl > time.Minute {
		t.Fatalf("unexpected ttl %v", ttl)
	}
}

func TestCorruptSession(t *testing.T) {
	client := testClient(t)
	ctx := context.Background()
	client.Set(ctx, keyPrefix+"bad", "not json", time.Minute)

	if _, err := NewSessionStore(client, time.Minute).GetSession(ctx, "bad"); err == nil {
		t.Fatalf("expected decode error")
	}
}
