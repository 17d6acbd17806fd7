package api

import (
	"context"
)

type keyType string

const adminEmailKey keyType = "adminEmail"

// ctxWithAdminEmail adds the authenticated admin's email to the context
func ctxWithAdminEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, adminEmailKey, email)
}

// adminEmailFromCtx retrieves the authenticated admin's email, if any
func adminEmailFromCtx(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(adminEmailKey).(string)
	return email, ok && email != ""
}
