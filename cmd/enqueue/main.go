// Command enqueue pushes one turn onto the worker's Redis intake list and
// waits for its result on the owner's event channel.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/jwebster45206/turn-engine/internal/services"
	"github.com/jwebster45206/turn-engine/internal/services/events"
	svcqueue "github.com/jwebster45206/turn-engine/internal/services/queue"
	"github.com/jwebster45206/turn-engine/pkg/queue"
)

func main() {
	redisURL := flag.String("redis", getEnv("REDIS_URL", "redis://localhost:6379"), "Redis URL")
	owner := flag.String("owner", "00000000-0000-0000-0000-000000000001", "owner id")
	kind := flag.String("kind", string(queue.TurnKindChat), "turn kind: chat, story_event or combat")
	wait := flag.Duration("wait", 2*time.Minute, "how long to wait for the result; 0 to skip")
	flag.Parse()

	input := "I look around."
	if flag.NArg() > 0 {
		input = flag.Arg(0)
	}

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	rs, err := services.NewRedisService(*redisURL, quiet)
	if err != nil {
		log.Fatal("Failed to create Redis client: ", err)
	}
	defer func() {
		_ = rs.Close()
	}()

	ctx := context.Background()
	if err := rs.Ping(ctx); err != nil {
		log.Fatal("Failed to connect to Redis: ", err)
	}
	rdb := rs.GetClient()

	// Subscribe before enqueueing so the result cannot be missed.
	sub := rdb.Subscribe(ctx, events.Channel(*owner))
	defer func() {
		_ = sub.Close()
	}()
	if _, err := sub.Receive(ctx); err != nil {
		log.Fatal("Failed to subscribe: ", err)
	}

	req := queue.NewTurnRequest(*owner, input, queue.TurnKind(*kind))
	rq := svcqueue.NewRequestQueue(svcqueue.NewClient(rdb, quiet))
	if err := rq.EnqueueRequest(ctx, &req); err != nil {
		log.Fatal("Failed to enqueue request: ", err)
	}
	fmt.Printf("Enqueued %s turn %s for %s\n", req.TurnKind, req.RequestID, req.OwnerID)

	if depth, err := rq.Depth(ctx); err == nil {
		fmt.Printf("Queue depth: %d requests\n", depth)
	}
	if *wait == 0 {
		return
	}

	waitCtx, cancel := context.WithTimeout(ctx, *wait)
	defer cancel()
	ch := sub.Channel()
	for {
		select {
		case <-waitCtx.Done():
			fmt.Fprintln(os.Stderr, "Timed out waiting for the worker. Is it running?")
			os.Exit(1)
		case msg := <-ch:
			var ev events.Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				continue
			}
			if ev.RequestID != "" && ev.RequestID != req.RequestID {
				continue
			}
			switch ev.Type {
			case events.EventTypeRequestProcessing:
				fmt.Println("Processing...")
			case events.EventTypeRequestFailed:
				fmt.Fprintf(os.Stderr, "Turn failed (%v): %v\n", ev.Data["error_kind"], ev.Data["error"])
				os.Exit(1)
			case events.EventTypeRequestCompleted:
				printResult(ev.Data["result"])
				return
			}
		}
	}
}

func printResult(raw any) {
	data, err := json.Marshal(raw)
	if err != nil {
		return
	}
	var res queue.TurnResult
	if err := json.Unmarshal(data, &res); err != nil {
		return
	}
	fmt.Printf("\n%s\n\n", res.NarrativeText)
	if res.CombatPending {
		fmt.Println("(combat in progress)")
	}
	for _, id := range res.FiredEvents {
		fmt.Printf("(event fired: %s)\n", id)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
