package publish

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/smokyabdulrahman/masjid-display/internal/prayer"
)

func TestRedisKeys(t *testing.T) {
	if got := BoardChannel("al-huda"); got != "masjid:al-huda:board" {
		t.Errorf("BoardChannel = %q", got)
	}
	if got := LatestKey("al-huda"); got != "masjid:al-huda:board:latest" {
		t.Errorf("LatestKey = %q", got)
	}
}

func TestRedis_PublishAndLatest(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDRESS")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDRESS not set")
	}
	ctx := context.Background()
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()

	id := uuid.NewString()
	sub := rdb.Subscribe(ctx, BoardChannel(id))
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatal(err)
	}

	r := NewRedis(rdb, id)
	b := boardIn(prayer.PrayerInProgress, prayer.Asr)
	b.MosqueID = id
	if err := r.Publish(ctx, b); err != nil {
		t.Fatal(err)
	}
	defer rdb.Del(ctx, LatestKey(id))

	msg, err := sub.ReceiveMessage(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if msg.Channel != BoardChannel(id) {
		t.Errorf("channel = %q", msg.Channel)
	}

	got, err := r.Latest(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got.MosqueID != id || got.Screen.State != prayer.PrayerInProgress {
		t.Errorf("latest = %+v", got.Screen)
	}
}
