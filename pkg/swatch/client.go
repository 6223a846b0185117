package swatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Client is a Redis-backed swatch store.
// All keys and channels are namespaced. The client is safe for concurrent use.
type Client struct {
	rdb       *redis.Client
	namespace string
}

// NewClient creates a store for the given namespace.
// Returns an error if namespace is empty.
func NewClient(redisOpts *redis.Options, namespace string) (*Client, error) {
	if namespace == "" {
		return nil, fmt.Errorf("namespace cannot be empty")
	}

	return &Client{
		rdb:       redis.NewClient(redisOpts),
		namespace: namespace,
	}, nil
}

// NewClientFromURL parses a redis:// URL and creates a store.
func NewClientFromURL(redisURL, namespace string) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return NewClient(opts, namespace)
}

// Close closes the Redis connection. Implements io.Closer.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping verifies Redis connectivity.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Get returns the stored collection for a saturation/lightness pair.
// Returns ErrNotFound if no entry exists. Read failures and undecodable
// entries are reported as *StorageError.
func (c *Client) Get(ctx context.Context, saturation, lightness int) (Collection, error) {
	key := EntryKey(c.namespace, saturation, lightness)

	data, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &StorageError{Op: "get", Key: key, Err: err}
	}

	collection, err := DecodeCollection(data)
	if err != nil {
		return nil, &StorageError{Op: "get", Key: key, Err: err}
	}

	return collection, nil
}

// Set replaces the entry for a saturation/lightness pair.
// The value is written with a single SET so readers see either the old or the
// new collection, never a mix.
func (c *Client) Set(ctx context.Context, saturation, lightness int, collection Collection) error {
	key := EntryKey(c.namespace, saturation, lightness)

	data, err := EncodeCollection(collection)
	if err != nil {
		return &StorageError{Op: "set", Key: key, Err: err}
	}

	pipe := c.rdb.TxPipeline()
	pipe.Set(ctx, key, data, 0)
	pipe.SAdd(ctx, IndexKey(c.namespace), key)
	if _, err := pipe.Exec(ctx); err != nil {
		return &StorageError{Op: "set", Key: key, Err: err}
	}

	return nil
}

// Remove deletes the entry for a saturation/lightness pair.
// Removing a missing entry is not an error.
func (c *Client) Remove(ctx context.Context, saturation, lightness int) error {
	key := EntryKey(c.namespace, saturation, lightness)

	pipe := c.rdb.TxPipeline()
	pipe.Del(ctx, key)
	pipe.SRem(ctx, IndexKey(c.namespace), key)
	if _, err := pipe.Exec(ctx); err != nil {
		return &StorageError{Op: "remove", Key: key, Err: err}
	}

	return nil
}

// Clear deletes every entry in the namespace and returns how many were removed.
func (c *Client) Clear(ctx context.Context) (int, error) {
	index := IndexKey(c.namespace)

	keys, err := c.rdb.SMembers(ctx, index).Result()
	if err != nil {
		return 0, &StorageError{Op: "clear", Key: index, Err: err}
	}
	if len(keys) == 0 {
		return 0, nil
	}

	removed, err := c.rdb.Del(ctx, keys...).Result()
	if err != nil {
		return 0, &StorageError{Op: "clear", Key: index, Err: err}
	}
	if err := c.rdb.Del(ctx, index).Err(); err != nil {
		return int(removed), &StorageError{Op: "clear", Key: index, Err: err}
	}

	return int(removed), nil
}

// PublishEvent publishes a discovered color on the namespace events channel.
// Delivery is at-most-once (Redis Pub/Sub).
func (c *Client) PublishEvent(ctx context.Context, event *Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal swatch event: %w", err)
	}

	if err := c.rdb.Publish(ctx, EventsChannel(c.namespace), data).Err(); err != nil {
		return fmt.Errorf("failed to publish swatch event: %w", err)
	}

	return nil
}

// Subscription represents an active Pub/Sub subscription to swatch events.
// Caller must call Close() when done.
type Subscription struct {
	events <-chan *Event
	errors <-chan error
	cancel func()
	once   sync.Once
}

// Events returns the channel of swatch events.
// The channel is closed when the subscription is closed or the context is cancelled.
func (s *Subscription) Events() <-chan *Event {
	return s.events
}

// Errors returns the channel of non-fatal subscription errors.
func (s *Subscription) Errors() <-chan error {
	return s.errors
}

// Close stops the subscription. Safe to call multiple times.
func (s *Subscription) Close() error {
	s.once.Do(s.cancel)
	return nil
}

// SubscribeEvents subscribes to swatch events for this namespace.
// The subscription is confirmed with Redis before returning, so events
// published after SubscribeEvents returns are delivered.
func (c *Client) SubscribeEvents(ctx context.Context) (*Subscription, error) {
	pubsub := c.rdb.Subscribe(ctx, EventsChannel(c.namespace))
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to swatch events: %w", err)
	}

	eventsChan := make(chan *Event, 10)
	errorsChan := make(chan error, 10)

	subCtx, cancelFunc := context.WithCancel(ctx)

	go func() {
		defer close(eventsChan)
		defer close(errorsChan)
		defer pubsub.Close()

		ch := pubsub.Channel()

		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				var event Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					select {
					case errorsChan <- fmt.Errorf("failed to unmarshal swatch event: %w", err):
					case <-subCtx.Done():
						return
					}
					continue
				}

				select {
				case eventsChan <- &event:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()

	return &Subscription{
		events: eventsChan,
		errors: errorsChan,
		cancel: cancelFunc,
	}, nil
}
