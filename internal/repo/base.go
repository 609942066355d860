package repo

import (
	"context"

	"gorm.io/gorm"
)

// Base is embedded by the gorm-backed repositories (orders today).
type Base struct {
	conn *gorm.DB
}

// NewBase binds a Base to a connection or an open transaction.
func NewBase(conn *gorm.DB) Base {
	return Base{conn: conn}
}

// DB returns the connection scoped to ctx so cancellation reaches the driver.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.conn
	}
	return b.conn.WithContext(ctx)
}
