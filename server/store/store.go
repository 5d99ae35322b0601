package store

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"

	"effectjack/server/engine"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

//go:embed schema.sql
var schema embed.FS

// DB is the Postgres game store and card supply.
type DB struct{ *pgxpool.Pool }

func Open(ctx context.Context, dsn string) (*DB, error) {
	p, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &DB{p}, nil
}

func (db *DB) Close()                         { db.Pool.Close() }
func (db *DB) Ping(ctx context.Context) error { return db.Pool.Ping(ctx) }

func Migrate(ctx context.Context, db *DB) error {
	sqlBytes, err := schema.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	_, err = db.Exec(ctx, string(sqlBytes))
	return err
}

/* -----------------------------
   Catalog
------------------------------*/

// SeedCatalog upserts suits and inserts cards that are not there yet.
func (db *DB) SeedCatalog(ctx context.Context, suits []engine.Suit, cards []engine.Card) error {
	b := &pgx.Batch{}
	for _, s := range suits {
		b.Queue(`
			INSERT INTO suits(id, name, symbol, color_rgb)
			VALUES ($1,$2,$3,$4)
			ON CONFLICT (id) DO UPDATE
			  SET name = EXCLUDED.name,
			      symbol = EXCLUDED.symbol,
			      color_rgb = EXCLUDED.color_rgb
		`, s.ID, s.Name, s.Symbol, s.ColorRGB)
	}
	for _, c := range cards {
		effects, err := json.Marshal(nonNilEffects(c.Effects))
		if err != nil {
			return fmt.Errorf("encode effects of card %d: %w", c.ID, err)
		}
		b.Queue(`
			INSERT INTO cards(id, rank, suit_id, effects)
			VALUES ($1,$2,$3,$4::jsonb)
			ON CONFLICT DO NOTHING
		`, c.ID, c.Rank, c.Suit.ID, string(effects))
	}
	return db.SendBatch(ctx, b).Close()
}

// Draw picks a random catalog card that neither hand of g holds.
func (db *DB) Draw(ctx context.Context, g *engine.Game) (engine.Card, error) {
	held := make([]int32, 0, len(g.PlayerHand)+len(g.DealerHand))
	for _, id := range g.HeldCardIDs() {
		held = append(held, int32(id))
	}
	row := db.QueryRow(ctx, `
		SELECT c.id, c.rank, c.effects::text, c.created_at, c.updated_at,
		       s.id, s.name, s.symbol, s.color_rgb
		  FROM cards c
		  JOIN suits s ON s.id = c.suit_id
		 WHERE NOT (c.id = ANY($1::int[]))
		 ORDER BY random()
		 LIMIT 1
	`, held)
	c, err := scanCard(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return engine.Card{}, engine.ErrDeckExhausted
	}
	if err != nil {
		return engine.Card{}, fmt.Errorf("draw card: %w", err)
	}
	return c, nil
}

func scanCard(row pgx.Row) (engine.Card, error) {
	var (
		c       engine.Card
		effects string
	)
	if err := row.Scan(&c.ID, &c.Rank, &effects, &c.CreatedAt, &c.UpdatedAt,
		&c.Suit.ID, &c.Suit.Name, &c.Suit.Symbol, &c.Suit.ColorRGB); err != nil {
		return engine.Card{}, err
	}
	if err := json.Unmarshal([]byte(effects), &c.Effects); err != nil {
		return engine.Card{}, fmt.Errorf("decode effects of card %d: %w", c.ID, err)
	}
	return c, nil
}

/* -----------------------------
   Games
------------------------------*/

func (db *DB) Create(ctx context.Context, g *engine.Game) error {
	_, err := db.Exec(ctx, `
		INSERT INTO games(id, target, overdraw_limit, overdraws_remaining, money, round, bet,
		                  status, version, created_at, updated_at)
		VALUES ($1::uuid, $2::numeric, $3, $4, $5::numeric, $6, $7::numeric, $8, $9, $10, $11)
	`, g.ID.String(), g.Target.String(), g.OverdrawLimit, g.OverdrawsRemaining, g.Money.String(),
		g.Round, g.Bet.String(), string(g.Status), g.Version, g.CreatedAt, g.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create game: %w", err)
	}
	return nil
}

// Load reads the game row and both hands in draw order.
func (db *DB) Load(ctx context.Context, id uuid.UUID) (*engine.Game, error) {
	var (
		g                       engine.Game
		gid, target, money, bet string
		status                  string
	)
	err := db.QueryRow(ctx, `
		SELECT id::text, target::text, overdraw_limit, overdraws_remaining, money::text,
		       round, bet::text, status, version, created_at, updated_at
		  FROM games WHERE id = $1::uuid
	`, id.String()).Scan(&gid, &target, &g.OverdrawLimit, &g.OverdrawsRemaining, &money,
		&g.Round, &bet, &status, &g.Version, &g.CreatedAt, &g.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("load game: %w", err)
	}
	g.Status = engine.Status(status)
	if g.ID, err = uuid.Parse(gid); err != nil {
		return nil, fmt.Errorf("load game: %w", err)
	}
	for _, f := range []struct {
		dst *decimal.Decimal
		src string
	}{{&g.Target, target}, {&g.Money, money}, {&g.Bet, bet}} {
		if *f.dst, err = decimal.NewFromString(f.src); err != nil {
			return nil, fmt.Errorf("load game %s: %w", id, err)
		}
	}

	rows, err := db.Query(ctx, `
		SELECT gc.owner, gc.seq,
		       c.id, c.rank, c.effects::text, c.created_at, c.updated_at,
		       s.id, s.name, s.symbol, s.color_rgb
		  FROM game_cards gc
		  JOIN cards c ON c.id = gc.card_id
		  JOIN suits s ON s.id = c.suit_id
		 WHERE gc.game_id = $1::uuid
		 ORDER BY gc.seq
	`, id.String())
	if err != nil {
		return nil, fmt.Errorf("load hands: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			hc      engine.HandCard
			owner   string
			effects string
		)
		c := &hc.Card
		if err := rows.Scan(&owner, &hc.Seq, &c.ID, &c.Rank, &effects, &c.CreatedAt, &c.UpdatedAt,
			&c.Suit.ID, &c.Suit.Name, &c.Suit.Symbol, &c.Suit.ColorRGB); err != nil {
			return nil, fmt.Errorf("load hands: %w", err)
		}
		if err := json.Unmarshal([]byte(effects), &c.Effects); err != nil {
			return nil, fmt.Errorf("decode effects of card %d: %w", c.ID, err)
		}
		hc.Owner = engine.Owner(owner)
		if hc.Owner == engine.Dealer {
			g.DealerHand = append(g.DealerHand, hc)
		} else {
			g.PlayerHand = append(g.PlayerHand, hc)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load hands: %w", err)
	}
	return &g, nil
}

// Commit writes the whole aggregate in one transaction, guarded by the
// version g was loaded with.
func (db *DB) Commit(ctx context.Context, g *engine.Game) error {
	err := pgx.BeginFunc(ctx, db.Pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE games
			   SET target = $3::numeric,
			       overdraw_limit = $4,
			       overdraws_remaining = $5,
			       money = $6::numeric,
			       round = $7,
			       bet = $8::numeric,
			       status = $9,
			       updated_at = $10,
			       version = version + 1
			 WHERE id = $1::uuid AND version = $2
		`, g.ID.String(), g.Version, g.Target.String(), g.OverdrawLimit, g.OverdrawsRemaining,
			g.Money.String(), g.Round, g.Bet.String(), string(g.Status), g.UpdatedAt)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM games WHERE id = $1::uuid)`,
				g.ID.String()).Scan(&exists); err != nil {
				return err
			}
			if !exists {
				return notFound(g.ID)
			}
			return conflict(g)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM game_cards WHERE game_id = $1::uuid`, g.ID.String()); err != nil {
			return err
		}
		b := &pgx.Batch{}
		for _, h := range [][]engine.HandCard{g.PlayerHand, g.DealerHand} {
			for _, hc := range h {
				b.Queue(`
					INSERT INTO game_cards(game_id, card_id, owner, seq)
					VALUES ($1::uuid, $2, $3, $4)
				`, g.ID.String(), hc.Card.ID, string(hc.Owner), hc.Seq)
			}
		}
		if b.Len() == 0 {
			return nil
		}
		return tx.SendBatch(ctx, b).Close()
	})
	if err != nil {
		if engine.CodeOf(err) != "" {
			return err
		}
		return fmt.Errorf("commit game %s: %w", g.ID, err)
	}
	g.Version++
	return nil
}

/* -----------------------------
   helpers
------------------------------*/

func notFound(id uuid.UUID) error {
	return engine.Errorf(engine.CodeNotFound, "game with ID %s not found", id)
}

func conflict(g *engine.Game) error {
	return engine.Errorf(engine.CodeConflict, "game %s changed since version %d was loaded", g.ID, g.Version)
}

func nonNilEffects(e []engine.Effect) []engine.Effect {
	if e == nil {
		return []engine.Effect{}
	}
	return e
}
