package app

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestParseWindowReply(t *testing.T) {
	count, retry, err := parseWindowReply([]interface{}{int64(3), int64(1500)}, time.Minute)
	if err != nil || count != 3 || retry != 2 {
		t.Fatalf("expected (3, 2, nil), got (%d, %d, %v)", count, retry, err)
	}

	count, retry, err = parseWindowReply([]interface{}{int64(1), int64(-1)}, time.Minute)
	if err != nil || count != 1 || retry != 60 {
		t.Fatalf("expected negative ttl to fall back to the window, got (%d, %d, %v)", count, retry, err)
	}

	if _, _, err := parseWindowReply("nope", time.Minute); err == nil {
		t.Fatal("expected error for unexpected reply shape")
	}
	if _, _, err := parseWindowReply([]interface{}{"1", int64(1)}, time.Minute); err == nil {
		t.Fatal("expected error for non-integer count")
	}
}

func TestRedisRateLimiter_DisabledReturnsZeros(t *testing.T) {
	var nilLimiter *RedisRateLimiter
	if c, r, err := nilLimiter.ConsumeRateLimit(context.Background(), "payments", "user", 5, time.Minute); c != 0 || r != 0 || err != nil {
		t.Fatalf("expected nil limiter to be disabled, got (%d, %d, %v)", c, r, err)
	}

	limiter := NewRedisRateLimiter(nil, "")
	if limiter.prefix != "griffin:rate_limit" {
		t.Fatalf("expected default prefix, got %q", limiter.prefix)
	}
	if c, _, err := limiter.ConsumeRateLimit(context.Background(), "payments", "user", 5, time.Minute); c != 0 || err != nil {
		t.Fatalf("expected limiter without client to be disabled, got (%d, %v)", c, err)
	}
}

func TestRedisRateLimiter_CountsWithinWindow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis integration test in short mode")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp"),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("redis container unavailable: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("failed to resolve redis endpoint: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = client.Close() })

	limiter := NewRedisRateLimiter(client, "test:rl:")
	for want := 1; want <= 3; want++ {
		count, retry, err := limiter.ConsumeRateLimit(ctx, "payments", "user-1", 2, time.Minute)
		if err != nil {
			t.Fatalf("ConsumeRateLimit returned error: %v", err)
		}
		if count != want {
			t.Fatalf("expected count %d, got %d", want, count)
		}
		if retry < 1 || retry > 60 {
			t.Fatalf("unexpected retry-after %d", retry)
		}
	}

	count, _, err := limiter.ConsumeRateLimit(ctx, "payments", "user-2", 2, time.Minute)
	if err != nil || count != 1 {
		t.Fatalf("expected subjects to be counted separately, got (%d, %v)", count, err)
	}
}
