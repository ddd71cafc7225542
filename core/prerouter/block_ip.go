package prerouter

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/caasmo/daybook/cache"
	"github.com/caasmo/daybook/core"
	"github.com/caasmo/daybook/topk"
)

const (
	blockingDuration = 3 * time.Minute
	defaultBlockCost = 1

	// 1 hour buckets
	bucketDurationSec = 3600
)

// getTimeBucket returns the bucket number for a given time (periods since Unix epoch)
func getTimeBucket(t time.Time) int64 {
	return t.Unix() / bucketDurationSec
}

// formatBlockKey creates a consistent cache key for blocked IPs
func formatBlockKey(ip string, bucket int64) string {
	return fmt.Sprintf("%s|%d", ip, bucket)
}

func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	return ip
}

// BlockIp is a simple circuit breaker against a single address
// flooding the server. It is not a nuanced rate-limiting system with
// quotas, the goal is to prevent collapse.
type BlockIp struct {
	app    *core.App
	sketch *topk.TopKSketch
	blocks cache.Cache[string, bool]
}

// sketch parameters, roughly 120 KB of memory, balanced for the
// traffic a personal service sees.
var sketchParams = topk.SketchParams{
	K:          3,
	WindowSize: 10,
	Width:      1024,
	Depth:      3,
}

func NewBlockIp(app *core.App, blocks cache.Cache[string, bool]) *BlockIp {
	params := sketchParams
	params.TickSize = app.Config().BlockIp.TickSize

	return &BlockIp{
		app:    app,
		sketch: topk.New(params),
		blocks: blocks,
	}
}

func (b *BlockIp) Execute(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if b.app.Config().BlockIp.Activated {
			ip := clientIP(r)
			if b.IsBlocked(ip) {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			b.Process(ip)
		}

		next.ServeHTTP(w, r)
	})
}

// IsBlocked checks whether the address is blocked in the current bucket.
func (b *BlockIp) IsBlocked(ip string) bool {
	key := formatBlockKey(ip, getTimeBucket(time.Now()))
	_, found := b.blocks.Get(key)
	return found
}

// Block adds the address to the block list, in the current bucket and,
// when the blocking window crosses the boundary, in the next one.
func (b *BlockIp) Block(ip string) error {
	now := time.Now()
	currentBucket := getTimeBucket(now)
	nextBucket := currentBucket + 1

	currentKey := formatBlockKey(ip, currentBucket)
	if !b.blocks.SetWithTTL(currentKey, true, defaultBlockCost, blockingDuration) {
		return fmt.Errorf("failed to block IP %s in bucket %d", ip, currentBucket)
	}
	b.app.Logger().Info("IP blocked", "ip", ip, "bucket", currentBucket, "duration", blockingDuration)

	timeUntilNextBucket := (nextBucket * bucketDurationSec) - now.Unix()
	ttlNext := blockingDuration - time.Duration(timeUntilNextBucket)*time.Second
	if ttlNext > 0 {
		nextKey := formatBlockKey(ip, nextBucket)
		if !b.blocks.SetWithTTL(nextKey, true, defaultBlockCost, ttlNext) {
			return fmt.Errorf("failed to block IP %s in bucket %d", ip, nextBucket)
		}
	}

	return nil
}

// Process feeds the address to the sketch and blocks asynchronously
// whatever the sketch reports as over threshold. Ristretto batches
// writes, repeated blocking of the same key is harmless.
func (b *BlockIp) Process(ip string) {
	over := b.sketch.ProcessTick(ip)
	if len(over) == 0 {
		return
	}

	b.app.Logger().Info("IPs to be blocked", "ips", over)
	go func(ips []string) {
		for _, ip := range ips {
			if err := b.Block(ip); err != nil {
				b.app.Logger().Error("failed to block IP", "ip", ip, "error", err)
			}
		}
	}(over)
}
