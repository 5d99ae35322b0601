package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"time"

	"effectjack/server/engine"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"
)

// Redis stores each game as one hash, hands included, and commits under
// WATCH so a concurrent writer turns into a conflict.
type Redis struct {
	rdb *redis.Client
}

func OpenRedis(ctx context.Context, opts *redis.Options) (*Redis, error) {
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}
	return &Redis{rdb: rdb}, nil
}

func (r *Redis) Close() error                   { return r.rdb.Close() }
func (r *Redis) Ping(ctx context.Context) error { return r.rdb.Ping(ctx).Err() }

func gameKey(id uuid.UUID) string { return "game:" + id.String() }

type gameRecord struct {
	ID                 string          `mapstructure:"id"`
	Target             decimal.Decimal `mapstructure:"target"`
	OverdrawLimit      int             `mapstructure:"overdraw_limit"`
	OverdrawsRemaining int             `mapstructure:"overdraws_remaining"`
	Money              decimal.Decimal `mapstructure:"money"`
	Round              int             `mapstructure:"round"`
	Bet                decimal.Decimal `mapstructure:"bet"`
	Status             string          `mapstructure:"status"`
	Hands              string          `mapstructure:"hands"`
	Version            int64           `mapstructure:"version"`
	CreatedAt          time.Time       `mapstructure:"created_at"`
	UpdatedAt          time.Time       `mapstructure:"updated_at"`
}

func encodeGame(g *engine.Game, version int64) (map[string]interface{}, error) {
	hands := make([]engine.HandCard, 0, len(g.PlayerHand)+len(g.DealerHand))
	hands = append(hands, g.PlayerHand...)
	hands = append(hands, g.DealerHand...)
	hb, err := json.Marshal(hands)
	if err != nil {
		return nil, fmt.Errorf("encode hands: %w", err)
	}
	return map[string]interface{}{
		"id":                  g.ID.String(),
		"target":              g.Target.String(),
		"overdraw_limit":      strconv.Itoa(g.OverdrawLimit),
		"overdraws_remaining": strconv.Itoa(g.OverdrawsRemaining),
		"money":               g.Money.String(),
		"round":               strconv.Itoa(g.Round),
		"bet":                 g.Bet.String(),
		"status":              string(g.Status),
		"hands":               string(hb),
		"version":             strconv.FormatInt(version, 10),
		"created_at":          g.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updated_at":          g.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}, nil
}

var decimalType = reflect.TypeOf(decimal.Decimal{})

func stringToDecimalHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if f.Kind() != reflect.String || t != decimalType {
			return data, nil
		}
		return decimal.NewFromString(data.(string))
	}
}

func decodeGame(fields map[string]string) (*engine.Game, error) {
	var rec gameRecord
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &rec,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			stringToDecimalHookFunc(),
			mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
		),
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(fields); err != nil {
		return nil, fmt.Errorf("decode game: %w", err)
	}

	id, err := uuid.Parse(rec.ID)
	if err != nil {
		return nil, fmt.Errorf("decode game id: %w", err)
	}
	g := &engine.Game{
		ID:                 id,
		Target:             rec.Target,
		OverdrawLimit:      rec.OverdrawLimit,
		OverdrawsRemaining: rec.OverdrawsRemaining,
		Money:              rec.Money,
		Round:              rec.Round,
		Bet:                rec.Bet,
		Status:             engine.Status(rec.Status),
		Version:            rec.Version,
		CreatedAt:          rec.CreatedAt,
		UpdatedAt:          rec.UpdatedAt,
	}
	var hands []engine.HandCard
	if rec.Hands != "" {
		if err := json.Unmarshal([]byte(rec.Hands), &hands); err != nil {
			return nil, fmt.Errorf("decode hands: %w", err)
		}
	}
	for _, hc := range hands {
		if hc.Owner == engine.Dealer {
			g.DealerHand = append(g.DealerHand, hc)
		} else {
			g.PlayerHand = append(g.PlayerHand, hc)
		}
	}
	return g, nil
}

// Create writes the full record in one MULTI/EXEC, so a reader never sees
// a partially written game.
func (r *Redis) Create(ctx context.Context, g *engine.Game) error {
	fields, err := encodeGame(g, g.Version)
	if err != nil {
		return err
	}
	key := gameKey(g.ID)
	exists := engine.Errorf(engine.CodeConflict, "game %s already exists", g.ID)
	err = r.rdb.Watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if n > 0 {
			return exists
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.HSet(ctx, key, fields)
			return nil
		})
		return err
	}, key)
	switch {
	case errors.Is(err, redis.TxFailedErr):
		return exists
	case err != nil && engine.CodeOf(err) != "":
		return err
	case err != nil:
		return fmt.Errorf("create game: %w", err)
	}
	return nil
}

func (r *Redis) Load(ctx context.Context, id uuid.UUID) (*engine.Game, error) {
	fields, err := r.rdb.HGetAll(ctx, gameKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("load game: %w", err)
	}
	if len(fields) == 0 {
		return nil, notFound(id)
	}
	return decodeGame(fields)
}

func (r *Redis) Commit(ctx context.Context, g *engine.Game) error {
	key := gameKey(g.ID)
	fields, err := encodeGame(g, g.Version+1)
	if err != nil {
		return err
	}
	err = r.rdb.Watch(ctx, func(tx *redis.Tx) error {
		v, err := tx.HGet(ctx, key, "version").Int64()
		if errors.Is(err, redis.Nil) {
			return notFound(g.ID)
		}
		if err != nil {
			return err
		}
		if v != g.Version {
			return conflict(g)
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.HSet(ctx, key, fields)
			return nil
		})
		return err
	}, key)
	switch {
	case errors.Is(err, redis.TxFailedErr):
		return conflict(g)
	case err != nil && engine.CodeOf(err) != "":
		return err
	case err != nil:
		return fmt.Errorf("commit game %s: %w", g.ID, err)
	}
	g.Version++
	return nil
}
