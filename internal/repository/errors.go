package repository

import "errors"

var (
	//該当なし
	ErrNotFound = errors.New("not found")
	//versionが合わない（他のリクエストが先に保存した）
	ErrConflict = errors.New("version conflict")
	//ユニーク制約違反
	ErrDuplicate = errors.New("duplicate")
)
