package main

import (
	"context"
	"flag"
	"os"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/app"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xenking/food-ordering/internal/auth"
	"github.com/xenking/food-ordering/internal/cache"
	"github.com/xenking/food-ordering/internal/domain/user"
	"github.com/xenking/food-ordering/internal/repository"
)

type seedCategory struct {
	Name        string
	Description string
}

type seedItem struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Category    string
	ImageURL    string
	Unavailable bool
}

type seedFile struct {
	Categories []seedCategory
	Items      []seedItem
}

type options struct {
	databaseURL  string
	redisAddr    string
	menuFile     string
	demoEmail    string
	demoPassword string
}

func main() {
	var opts options
	flag.StringVar(&opts.databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&opts.redisAddr, "redis-addr", "", "Redis address whose menu cache is invalidated (or FOOD_REDIS_ADDR env)")
	flag.StringVar(&opts.menuFile, "menu-file", "db/seed/menu.json", "path to menu JSON file")
	flag.StringVar(&opts.demoEmail, "demo-email", "demo@example.com", "email of the demo customer; empty skips it")
	flag.StringVar(&opts.demoPassword, "demo-password", "", "password of the demo customer (or FOOD_SEED_PASSWORD env)")
	flag.Parse()

	app.Run(func(ctx context.Context, lg *zap.Logger, _ *app.Telemetry) error {
		if opts.fromEnv() && opts.demoEmail != "" {
			lg.Warn("Demo password not set, using the built-in default",
				zap.String("email", opts.demoEmail),
				zap.String("hint", "set --demo-password or FOOD_SEED_PASSWORD"),
			)
		}
		if opts.databaseURL == "" {
			return errors.New("database URL is required: set --database-url or DATABASE_URL")
		}
		if err := run(ctx, lg, opts); err != nil {
			return errors.Wrap(err, "seed")
		}
		lg.Info("Seed completed")
		return nil
	})
}

const defaultDemoPassword = "password123"

// fromEnv fills unset options from the environment. It reports whether the
// demo password fell back to defaultDemoPassword.
func (o *options) fromEnv() (defaultPassword bool) {
	if o.databaseURL == "" {
		o.databaseURL = os.Getenv("DATABASE_URL")
	}
	if o.redisAddr == "" {
		o.redisAddr = os.Getenv("FOOD_REDIS_ADDR")
	}
	if o.demoPassword == "" {
		o.demoPassword = os.Getenv("FOOD_SEED_PASSWORD")
	}
	if o.demoPassword == "" {
		o.demoPassword = defaultDemoPassword
		return true
	}
	return false
}

func run(ctx context.Context, lg *zap.Logger, opts options) error {
	lg.Info("Running migrations")
	if err := repository.Migrate(opts.databaseURL); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	pool, err := repository.NewPool(ctx, opts.databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	data, err := os.ReadFile(opts.menuFile)
	if err != nil {
		return errors.Wrap(err, "read menu file")
	}
	seed, err := decodeSeed(data)
	if err != nil {
		return errors.Wrap(err, "parse menu file")
	}

	if err := pgx.BeginTxFunc(ctx, pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		return seedMenu(ctx, lg, tx, seed)
	}); err != nil {
		return errors.Wrap(err, "seed menu")
	}

	if opts.demoEmail != "" {
		if err := seedDemoUser(ctx, lg, repository.NewUserRepository(pool), opts.demoEmail, opts.demoPassword); err != nil {
			return errors.Wrap(err, "seed demo user")
		}
	}

	if opts.redisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: opts.redisAddr})
		defer func() { _ = rdb.Close() }()

		if err := cache.NewMenu(nil, rdb, 0).Invalidate(ctx); err != nil {
			return errors.Wrap(err, "invalidate menu cache")
		}
		lg.Info("Menu cache invalidated", zap.String("redis", opts.redisAddr))
	}

	return nil
}

const (
	upsertCategorySQL = `
INSERT INTO categories (name, description) VALUES ($1, $2)
ON CONFLICT (name) DO UPDATE SET description = EXCLUDED.description
RETURNING id`

	upsertMenuItemSQL = `
INSERT INTO menu_items (name, description, price, image_url, is_available, category_id)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (name) DO UPDATE SET
    description  = EXCLUDED.description,
    price        = EXCLUDED.price,
    image_url    = EXCLUDED.image_url,
    is_available = EXCLUDED.is_available,
    category_id  = EXCLUDED.category_id`
)

func seedMenu(ctx context.Context, lg *zap.Logger, tx pgx.Tx, seed *seedFile) error {
	categoryIDs := make(map[string]int64, len(seed.Categories))
	for _, c := range seed.Categories {
		var id int64
		if err := tx.QueryRow(ctx, upsertCategorySQL, c.Name, c.Description).Scan(&id); err != nil {
			return errors.Wrapf(err, "upsert category %q", c.Name)
		}
		categoryIDs[c.Name] = id
	}
	lg.Info("Upserted categories", zap.Int("count", len(categoryIDs)))

	batch := &pgx.Batch{}
	for _, it := range seed.Items {
		var categoryID *int64
		if it.Category != "" {
			id, ok := categoryIDs[it.Category]
			if !ok {
				return errors.Errorf("item %q references unknown category %q", it.Name, it.Category)
			}
			categoryID = &id
		}
		batch.Queue(upsertMenuItemSQL, it.Name, it.Description, it.Price, it.ImageURL, !it.Unavailable, categoryID)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return errors.Wrap(err, "upsert menu items")
	}
	lg.Info("Upserted menu items", zap.Int("count", len(seed.Items)))

	return nil
}

func seedDemoUser(ctx context.Context, lg *zap.Logger, users user.Repository, email, password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	u, err := users.Create(ctx, user.NewUser{
		Email:        auth.NormalizeEmail(email),
		PasswordHash: hash,
		FullName:     "Demo Customer",
	})
	switch {
	case errors.Is(err, user.ErrEmailTaken):
		lg.Info("Demo user already exists", zap.String("email", email))
		return nil
	case err != nil:
		return err
	}

	lg.Info("Created demo user", zap.Int64("id", u.ID), zap.String("email", u.Email))
	return nil
}

func decodeSeed(data []byte) (*seedFile, error) {
	var s seedFile
	d := jx.DecodeBytes(data)
	if err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "categories":
			return d.Arr(func(d *jx.Decoder) error {
				var c seedCategory
				if err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
					switch string(key) {
					case "name":
						return decodeString(d, &c.Name)
					case "description":
						return decodeString(d, &c.Description)
					default:
						return d.Skip()
					}
				}); err != nil {
					return err
				}
				s.Categories = append(s.Categories, c)
				return nil
			})
		case "items":
			return d.Arr(func(d *jx.Decoder) error {
				it, err := decodeItem(d)
				if err != nil {
					return err
				}
				s.Items = append(s.Items, it)
				return nil
			})
		default:
			return d.Skip()
		}
	}); err != nil {
		return nil, err
	}

	for _, it := range s.Items {
		if strings.TrimSpace(it.Name) == "" {
			return nil, errors.New("menu item without name")
		}
		if it.Price.IsNegative() {
			return nil, errors.Errorf("item %q has negative price", it.Name)
		}
	}
	return &s, nil
}

func decodeItem(d *jx.Decoder) (seedItem, error) {
	var it seedItem
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "name":
			return decodeString(d, &it.Name)
		case "description":
			return decodeString(d, &it.Description)
		case "category":
			return decodeString(d, &it.Category)
		case "image_url":
			return decodeString(d, &it.ImageURL)
		case "price":
			if d.Next() != jx.Number {
				return errors.New("price must be a number")
			}
			n, err := d.Num()
			if err != nil {
				return errors.Wrap(err, "price")
			}
			p, err := decimal.NewFromString(string(n))
			if err != nil {
				return errors.Wrap(err, "price")
			}
			it.Price = p.Round(2)
			return nil
		case "unavailable":
			v, err := d.Bool()
			it.Unavailable = v
			return err
		default:
			return d.Skip()
		}
	})
	return it, err
}

func decodeString(d *jx.Decoder, dst *string) error {
	v, err := d.Str()
	*dst = v
	return err
}
