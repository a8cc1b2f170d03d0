package dbctx

import (
	"context"

	"gorm.io/gorm"
)

// Context bundles a request context with an optional GORM transaction.
// Repos run against Tx when it is set and fall back to their own handle
// otherwise, so services decide the transaction boundary.
type Context struct {
	Ctx context.Context
	Tx  *gorm.DB
}
