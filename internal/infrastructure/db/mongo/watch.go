package mongo

import (
	"context"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/orderdesk/order-management/internal/core/ports"
)

// watchCollection opens a change stream on coll and re-materializes the full
// result set through reload on every change notification. The first snapshot
// is delivered immediately so observers never start empty. Stream errors are
// delivered as error snapshots; consumers keep their previous data.
//
// Change streams require the server to run as a replica set.
func watchCollection[T any](
	ctx context.Context,
	coll *mongo.Collection,
	reload func(ctx context.Context) ([]T, error),
	log zerolog.Logger,
) (*ports.FeedHandle[T], error) {
	stream, err := coll.Watch(ctx, mongo.Pipeline{})
	if err != nil {
		return nil, err
	}

	watchCtx, cancel := context.WithCancel(ctx)
	updates := make(chan ports.Snapshot[T], 1)

	go func() {
		defer close(updates)
		defer func() {
			closeCtx, closeCancel := context.WithTimeout(context.Background(), defaultTimeout)
			defer closeCancel()
			_ = stream.Close(closeCtx)
		}()

		emit := func() {
			items, err := reload(watchCtx)
			if err != nil {
				if watchCtx.Err() != nil {
					return
				}
				send(watchCtx, updates, ports.Snapshot[T]{Err: err})
				return
			}
			send(watchCtx, updates, ports.Snapshot[T]{Items: items})
		}

		emit()
		for stream.Next(watchCtx) {
			emit()
		}
		if err := stream.Err(); err != nil && watchCtx.Err() == nil {
			log.Warn().Err(err).Str("collection", coll.Name()).Msg("change stream ended with error")
			send(watchCtx, updates, ports.Snapshot[T]{Err: err})
		}
	}()

	return &ports.FeedHandle[T]{Updates: updates, Cancel: cancel}, nil
}

func send[T any](ctx context.Context, ch chan<- ports.Snapshot[T], snap ports.Snapshot[T]) {
	select {
	case ch <- snap:
	case <-ctx.Done():
	}
}

// decodeAll drains a cursor, skipping individual documents that fail to
// decode. A malformed record drops out of the snapshot without poisoning the
// rest of it.
func decodeAll[T any](ctx context.Context, cur *mongo.Cursor, log zerolog.Logger) ([]T, error) {
	defer cur.Close(ctx)

	var out []T
	for cur.Next(ctx) {
		var v T
		if err := cur.Decode(&v); err != nil {
			log.Debug().Err(err).Msg("skipping undecodable document")
			continue
		}
		out = append(out, v)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}
