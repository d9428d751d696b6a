// Package redis stores state machine documents in Redis.
//
// Connect opens a client with retries and Healthcheck wraps PING for
// readiness checks. Store implements statemachine.Store by keeping the JSON
// encoding of each document under "<prefix>:<id>", optionally with a TTL.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	store := redis.NewStoreWithConfig[Article](client, cfg)
//	m := statemachine.MustNew(store, states, transitions)
//
// A missing key is reported as statemachine.ErrNotFound.
package redis
