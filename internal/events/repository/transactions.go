package repository

import (
	"context"

	mongotx "playverse/pkg/db/mongo"
)

func (r *mongoEventRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
