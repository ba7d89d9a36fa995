// Package main provides the ops CLI: schema migrations and initial data.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"laluna/internal/config"
	"laluna/internal/core/types"
	"laluna/internal/domain/auth"
	"laluna/internal/domain/customer"
	"laluna/internal/domain/inventory"
	"laluna/internal/domain/notify"
	"laluna/internal/domain/order"
	"laluna/internal/infrastructure/storage/postgres"
	"laluna/internal/infrastructure/storage/postgres/auth_repo"
	"laluna/internal/infrastructure/storage/postgres/customer_repo"
	"laluna/internal/infrastructure/storage/postgres/inventory_repo"
	"laluna/internal/infrastructure/storage/postgres/order_repo"
	"laluna/pkg/logger"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "seed",
		Short:         "La Luna database tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(
		migrateCommand(),
		adminsCommand(),
		catalogCommand(),
		demoCommand(),
	)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// env holds what every data command needs.
type env struct {
	cfg  *config.Config
	log  *logger.Logger
	pool *postgres.Pool
	txm  *postgres.TxManager
}

func openEnv(ctx context.Context) (*env, context.Context, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, ctx, err
	}
	if cfg.Storage != config.StoragePostgres {
		return nil, ctx, fmt.Errorf("seed requires STORAGE=%s", config.StoragePostgres)
	}

	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Development: true})
	if err != nil {
		return nil, ctx, fmt.Errorf("create logger: %w", err)
	}
	ctx = logger.WithLogger(ctx, log)

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		return nil, ctx, err
	}
	log.Info("connected to database")

	return &env{cfg: cfg, log: log, pool: pool, txm: postgres.NewTxManager(pool)}, ctx, nil
}

func (e *env) Close() {
	e.pool.Close()
	_ = e.log.Sync()
}

func migrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "apply or roll back the embedded SQL migrations",
	}

	withMigrator := func(fn func(m *postgres.Migrator) error) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		m, err := postgres.NewMigrator(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer m.Close()
		return fn(m)
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "migrate all the way up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(m *postgres.Migrator) error {
				if err := m.Up(); err != nil {
					return err
				}
				return printVersion(cmd, m)
			})
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "roll back migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if steps <= 0 {
				return fmt.Errorf("--steps must be positive")
			}
			return withMigrator(func(m *postgres.Migrator) error {
				if err := m.Down(steps); err != nil {
					return err
				}
				return printVersion(cmd, m)
			})
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	version := &cobra.Command{
		Use:   "version",
		Short: "print the applied schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(m *postgres.Migrator) error {
				return printVersion(cmd, m)
			})
		},
	}

	cmd.AddCommand(up, down, version)
	return cmd
}

func printVersion(cmd *cobra.Command, m *postgres.Migrator) error {
	v, dirty, err := m.Version()
	if err != nil {
		return err
	}
	cmd.Printf("schema version %d (dirty=%t)\n", v, dirty)
	return nil
}

func adminsCommand() *cobra.Command {
	var in auth.SeedUser
	var role string

	cmd := &cobra.Command{
		Use:   "admins",
		Short: "create or reset a back office account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, ctx, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			in.Role = auth.Role(role)
			svc := auth.NewService(auth_repo.NewUserRepo(e.txm), e.txm, auth.NewJWTService(auth.DefaultJWTConfig(e.cfg.JWTSecret)))
			n, err := svc.SeedAdmins(ctx, []auth.SeedUser{in})
			if err != nil {
				return err
			}
			e.log.Infow("accounts upserted", "count", n, "username", in.Username, "role", in.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Username, "username", "admin", "login name")
	cmd.Flags().StringVar(&in.Password, "password", "admin123", "password (min 6 characters)")
	cmd.Flags().StringVar(&in.Name, "name", "Administrador", "display name")
	cmd.Flags().StringVar(&role, "role", string(auth.RoleAdmin), "admin or salesperson")
	return cmd
}

func catalogCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "insert the starter product catalog if no product exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, ctx, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			svc := inventory.NewService(inventory_repo.NewInventoryRepo(e.txm), e.txm, postgres.NewOutboxPublisher(e.txm), nil)
			result, err := svc.SeedCatalog(ctx)
			if err != nil {
				return err
			}
			cmd.Println(result.Message)
			return nil
		},
	}
}

type demoCustomer struct {
	in          customer.CreateInput
	description string
	price       string
	paid        string
}

var demoCustomers = []demoCustomer{
	{
		in:          customer.CreateInput{Name: "Maria Gonzalez", Address: "Av. Pellegrini 1234, Rosario", Phone: "0341-456-9846"},
		description: "2 kg papa, 1 kg cebolla, 1 atado de acelga",
		price:       "15000.50",
		paid:        "5000",
	},
	{
		in:          customer.CreateInput{Name: "Juan Perez", Address: "Bv. Orono 550, Rosario", Phone: "+54 9 341 555 1234"},
		description: "Cajon de naranjas",
		price:       "22000",
		paid:        "22000",
	},
	{
		in:          customer.CreateInput{Name: "Lucia Fernandez", Address: "San Martin 980, Funes", Phone: "341 666 7788"},
		description: "1 kg tomate perita, 500 g morron rojo",
		price:       "8400",
		paid:        "0",
	},
}

func demoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "register sample customers with one order each",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, ctx, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			customers := customer.NewService(customer_repo.NewCustomerRepo(e.txm))
			orders := order.NewService(
				order_repo.NewOrderRepo(e.txm),
				customers,
				e.txm,
				postgres.NewOutboxPublisher(e.txm),
				notify.NewFormatter(notify.Config{
					BusinessName:  e.cfg.BusinessName,
					BusinessTitle: e.cfg.BusinessTitle,
					Website:       e.cfg.BusinessWebsite,
					BaseURL:       e.cfg.WhatsAppBaseURL,
				}),
			)

			for _, d := range demoCustomers {
				c, err := customers.Register(ctx, d.in)
				if err != nil {
					return fmt.Errorf("register %s: %w", d.in.Name, err)
				}
				placed, err := orders.PlaceOrder(ctx, order.PlaceInput{
					CustomerID:  c.ID,
					Description: d.description,
					Price:       types.MustMoney(d.price),
					AmountPaid:  types.MustMoney(d.paid),
				})
				if err != nil {
					return fmt.Errorf("place order for %s: %w", d.in.Name, err)
				}
				e.log.Infow("demo order placed",
					"customer", c.Name,
					"order_id", placed.Order.ID,
					"payment_state", placed.Order.PaymentState,
				)
			}
			cmd.Printf("%d demo customers created\n", len(demoCustomers))
			return nil
		},
	}
}
