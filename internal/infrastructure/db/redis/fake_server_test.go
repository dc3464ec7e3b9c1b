package redis

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/redis/go-redis/v9"
)

// memoryHook answers SETNX, GET and PING from a map so repository tests run
// the real client without a server. Any other command fails.
type memoryHook struct {
	mu   sync.Mutex
	data map[string]string
	fail error
}

func newHookedClient() (*redis.Client, *memoryHook) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	hook := &memoryHook{data: make(map[string]string)}
	client.AddHook(hook)
	return client, hook
}

func (h *memoryHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return nil, fmt.Errorf("memoryHook: dial %s not allowed", addr)
	}
}

func (h *memoryHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		return fmt.Errorf("memoryHook: pipelines not supported")
	}
}

func (h *memoryHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		h.mu.Lock()
		defer h.mu.Unlock()

		if h.fail != nil {
			return h.fail
		}

		args := cmd.Args()
		switch c := cmd.(type) {
		case *redis.BoolCmd:
			if cmd.Name() != "setnx" {
				break
			}
			key := fmt.Sprint(args[1])
			if _, exists := h.data[key]; exists {
				c.SetVal(false)
				return nil
			}
			h.data[key] = toString(args[2])
			c.SetVal(true)
			return nil
		case *redis.StringCmd:
			if cmd.Name() != "get" {
				break
			}
			v, ok := h.data[fmt.Sprint(args[1])]
			if !ok {
				return redis.Nil
			}
			c.SetVal(v)
			return nil
		case *redis.StatusCmd:
			if cmd.Name() == "ping" {
				c.SetVal("PONG")
				return nil
			}
		}
		return fmt.Errorf("memoryHook: unsupported command %s", cmd.Name())
	}
}

func toString(v any) string {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return fmt.Sprint(v)
}
