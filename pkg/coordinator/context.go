package coordinator

import "context"

type databaseKey struct{}

// WithDatabase records the caller's current database on ctx.
func WithDatabase(ctx context.Context, database string) context.Context {
	return context.WithValue(ctx, databaseKey{}, database)
}

// DatabaseFromContext returns the caller's current database, or "" when none
// was set.
func DatabaseFromContext(ctx context.Context) string {
	db, _ := ctx.Value(databaseKey{}).(string)
	return db
}
