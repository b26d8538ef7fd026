package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	pingTimeout   = 1 * time.Second
	queryTimeout  = 3 * time.Second
	importTimeout = 30 * time.Second

	pgUndefinedTable = "42P01"
)

const schema = `
CREATE TABLE IF NOT EXISTS products (
	id               TEXT PRIMARY KEY,
	position         INTEGER NOT NULL,
	name             TEXT NOT NULL,
	description      TEXT NOT NULL,
	full_description TEXT,
	price            NUMERIC(12,2) NOT NULL CHECK (price >= 0),
	sale_price       NUMERIC(12,2),
	on_sale          BOOLEAN NOT NULL DEFAULT FALSE,
	category         TEXT NOT NULL,
	images           JSONB NOT NULL,
	rating           DOUBLE PRECISION NOT NULL DEFAULT 0,
	review_count     INTEGER NOT NULL DEFAULT 0,
	in_stock         BOOLEAN NOT NULL DEFAULT TRUE,
	featured         BOOLEAN NOT NULL DEFAULT FALSE,
	is_new           BOOLEAN NOT NULL DEFAULT FALSE,
	is_bestseller    BOOLEAN NOT NULL DEFAULT FALSE,
	specifications   JSONB NOT NULL DEFAULT '[]',
	reviews          JSONB NOT NULL DEFAULT '[]'
)`

const selectProducts = `
	SELECT id, name, description, full_description, price, sale_price, on_sale,
	       category, images, rating, review_count, in_stock, featured, is_new,
	       is_bestseller, specifications, reviews
	FROM products`

// PostgresStore reads the catalog from a products table. The *sql.DB is
// expected to use the pgx stdlib driver. Rows that fail Product.Validate are
// not served.
type PostgresStore struct {
	db  *sql.DB
	log *zap.Logger
}

func NewPostgresStore(db *sql.DB, log *zap.Logger) *PostgresStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &PostgresStore{db: db, log: log}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return s.db.PingContext(ctx)
	})
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		if _, err := s.db.ExecContext(ctx, schema); err != nil {
			return errors.Wrap(err, "create products table")
		}
		return nil
	})
}

// Import upserts products, keeping their slice order as display order.
func (s *PostgresStore) Import(ctx context.Context, products []Product) error {
	for _, p := range products {
		if err := p.Validate(); err != nil {
			return err
		}
	}

	return withTimeout(ctx, importTimeout, func(ctx context.Context) error {
		tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
		if err != nil {
			return errors.Wrap(err, "begin")
		}
		defer func() { _ = tx.Rollback() }()

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO products (id, position, name, description, full_description, price,
				sale_price, on_sale, category, images, rating, review_count, in_stock,
				featured, is_new, is_bestseller, specifications, reviews)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
			ON CONFLICT (id) DO UPDATE SET
				position = EXCLUDED.position, name = EXCLUDED.name,
				description = EXCLUDED.description, full_description = EXCLUDED.full_description,
				price = EXCLUDED.price, sale_price = EXCLUDED.sale_price, on_sale = EXCLUDED.on_sale,
				category = EXCLUDED.category, images = EXCLUDED.images, rating = EXCLUDED.rating,
				review_count = EXCLUDED.review_count, in_stock = EXCLUDED.in_stock,
				featured = EXCLUDED.featured, is_new = EXCLUDED.is_new,
				is_bestseller = EXCLUDED.is_bestseller, specifications = EXCLUDED.specifications,
				reviews = EXCLUDED.reviews
		`)
		if err != nil {
			return errors.Wrap(err, "prepare upsert")
		}
		defer stmt.Close()

		for i, p := range products {
			args, err := productArgs(p)
			if err != nil {
				return err
			}
			if _, err := stmt.ExecContext(ctx, append([]any{p.ID, i}, args...)...); err != nil {
				return errors.Wrapf(err, "upsert %s", p.ID)
			}
		}

		return tx.Commit()
	})
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return s.db.QueryRowContext(ctx, `SELECT count(*) FROM products`).Scan(&n)
	})
	return n, err
}

func (s *PostgresStore) List(ctx context.Context) ([]Product, error) {
	var out []Product

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		rows, err := s.db.QueryContext(ctx, selectProducts+` ORDER BY position ASC, id ASC`)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]Product, 0, 32)
		for rows.Next() {
			p, err := scanProduct(rows)
			if errors.Is(err, ErrInvalidProduct) {
				s.log.Warn("skipping invalid product row", zap.Error(err))
				continue
			}
			if err != nil {
				return err
			}
			out = append(out, p)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, wrapQueryErr(err, "list products")
	}
	return out, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Product, bool, error) {
	var (
		p   Product
		err error
	)

	err = withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		p, err = scanProduct(s.db.QueryRowContext(ctx, selectProducts+` WHERE id = $1`, id))
		return err
	})

	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, false, nil
	}
	if errors.Is(err, ErrInvalidProduct) {
		s.log.Warn("invalid product row", zap.Error(err))
		return Product{}, false, nil
	}
	if err != nil {
		return Product{}, false, wrapQueryErr(err, "get product")
	}
	return p, true, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (Product, error) {
	var (
		p                      Product
		fullDesc               sql.NullString
		salePrice              decimal.NullDecimal
		images, specs, reviews []byte
	)

	err := row.Scan(&p.ID, &p.Name, &p.Description, &fullDesc, &p.Price, &salePrice, &p.OnSale,
		&p.Category, &images, &p.Rating, &p.ReviewCount, &p.InStock, &p.Featured, &p.IsNew,
		&p.IsBestseller, &specs, &reviews)
	if err != nil {
		return Product{}, err
	}

	p.FullDescription = fullDesc.String
	if salePrice.Valid {
		sp := salePrice.Decimal
		p.SalePrice = &sp
	}
	if err := json.Unmarshal(images, &p.Images); err != nil {
		return Product{}, errors.Wrapf(err, "%s: images", p.ID)
	}
	if err := json.Unmarshal(specs, &p.Specifications); err != nil {
		return Product{}, errors.Wrapf(err, "%s: specifications", p.ID)
	}
	if err := json.Unmarshal(reviews, &p.Reviews); err != nil {
		return Product{}, errors.Wrapf(err, "%s: reviews", p.ID)
	}
	if err := p.Validate(); err != nil {
		return Product{}, err
	}
	return p, nil
}

func productArgs(p Product) ([]any, error) {
	images, err := json.Marshal(p.Images)
	if err != nil {
		return nil, err
	}
	specs, err := json.Marshal(nonNil(p.Specifications))
	if err != nil {
		return nil, err
	}
	reviews, err := json.Marshal(nonNil(p.Reviews))
	if err != nil {
		return nil, err
	}

	var salePrice decimal.NullDecimal
	if p.SalePrice != nil {
		salePrice = decimal.NullDecimal{Decimal: *p.SalePrice, Valid: true}
	}
	fullDesc := sql.NullString{String: p.FullDescription, Valid: p.FullDescription != ""}

	return []any{p.Name, p.Description, fullDesc, p.Price, salePrice, p.OnSale, p.Category,
		images, p.Rating, p.ReviewCount, p.InStock, p.Featured, p.IsNew, p.IsBestseller,
		specs, reviews}, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func wrapQueryErr(err error, op string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUndefinedTable {
		return errors.Wrap(err, op+": products table missing, run migrations")
	}
	return errors.Wrap(err, op)
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}
