// Package pg stores state machine documents in PostgreSQL using pgx/v5.
//
// Documents live in a single documents table keyed by (collection, id). The
// full document is kept as JSONB; state and state_value are copied into
// plain columns and indexed. The table is created by Migrate, which runs the
// goose migrations embedded in this package.
//
// # Usage
//
//	var cfg pg.Config
//	if err := env.Parse(&cfg); err != nil {
//		return err
//	}
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, slog.Default()); err != nil {
//		return err
//	}
//
//	store, err := pg.NewStore[Article](pool, "articles")
//	if err != nil {
//		return err
//	}
//	m := statemachine.MustNew(store, states, transitions)
//
// Documents are encoded with their json tags, so embed statemachine.Fields
// to get the state and stateValue keys.
//
// # Error Handling
//
// FindByID reports statemachine.ErrNotFound for a missing row. IsNotFoundError,
// IsCheckViolationError and IsUndefinedTableError classify raw pgx errors.
package pg
