package coordinator

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Presence tracks which participants are connected to a room.
type Presence interface {
	Add(ctx context.Context, room, client string) error
	Remove(ctx context.Context, room, client string) error
	Members(ctx context.Context, room string) ([]string, error)
}

type memoryPresence struct {
	mu    sync.Mutex
	rooms map[string]map[string]struct{}
}

func NewMemoryPresence() Presence {
	return &memoryPresence{rooms: make(map[string]map[string]struct{})}
}

func (p *memoryPresence) Add(_ context.Context, room, client string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.rooms[room] == nil {
		p.rooms[room] = make(map[string]struct{})
	}
	p.rooms[room][client] = struct{}{}
	return nil
}

func (p *memoryPresence) Remove(_ context.Context, room, client string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if members, ok := p.rooms[room]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(p.rooms, room)
		}
	}
	return nil
}

func (p *memoryPresence) Members(_ context.Context, room string) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.rooms[room]))
	for c := range p.rooms[room] {
		out = append(out, c)
	}
	sort.Strings(out)
	return out, nil
}

// Keys:
//   - roomKey(room): ZSet<client, expireAt unix seconds>
const keyRoomFmt = "board:presence:{room:%s}"

func roomKey(room string) string { return fmt.Sprintf(keyRoomFmt, room) }

// redisPresence shares presence between coordinators. Members carry a
// logical TTL as their score so crashed coordinators do not leave ghosts.
type redisPresence struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisPresence(rdb *redis.Client, ttl time.Duration) Presence {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &redisPresence{rdb: rdb, ttl: ttl}
}

func (p *redisPresence) Add(ctx context.Context, room, client string) error {
	expireAt := time.Now().Add(p.ttl).Unix()
	tx := p.rdb.TxPipeline()
	tx.ZAdd(ctx, roomKey(room), redis.Z{Score: float64(expireAt), Member: client})
	tx.Expire(ctx, roomKey(room), p.ttl)
	_, err := tx.Exec(ctx)
	return err
}

func (p *redisPresence) Remove(ctx context.Context, room, client string) error {
	return p.rdb.ZRem(ctx, roomKey(room), client).Err()
}

// KEYS[1] = roomKey, ARGV[1] = now (unix seconds)
var pruneExpired = redis.NewScript(`
local n = redis.call("ZREMRANGEBYSCORE", KEYS[1], "-inf", ARGV[1])
return n
`)

func (p *redisPresence) Members(ctx context.Context, room string) ([]string, error) {
	now := time.Now().Unix()
	if err := pruneExpired.Run(ctx, p.rdb, []string{roomKey(room)}, now).Err(); err != nil && err != redis.Nil {
		return nil, err
	}
	members, err := p.rdb.ZRangeByScore(ctx, roomKey(room), &redis.ZRangeBy{
		Min: "(" + strconv.FormatInt(now, 10),
		Max: "+inf",
	}).Result()
	if err != nil && err != redis.Nil {
		return nil, err
	}
	sort.Strings(members)
	return members, nil
}
