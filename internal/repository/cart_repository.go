package repository

import (
	"context"

	"fusion/internal/domain/model"
)

// カートは明細ごと1つの単位で保存する
type CartRepository interface {
	//明細は追加順
	FindByUserID(ctx context.Context, userID string) (model.Cart, error)

	//Version==0なら新規作成、それ以外は読んだVersionと一致したときだけ保存。
	//一致しなければErrConflict。成功するとcart.Versionが+1される
	Save(ctx context.Context, cart *model.Cart) error

	//明細を空にする。カートが無くてもエラーにしない
	ClearByUserID(ctx context.Context, userID string) error
}
