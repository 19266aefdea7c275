package model

import "time"

// 在庫更新、注文ステータス更新など。
type AuditAction string

const (
	//在庫を更新した操作。
	AuditActionUpdateStock AuditAction = "UPDATE_STOCK"
	//注文ステータスを更新した操作。
	AuditActionUpdateOrderStatus AuditAction = "UPDATE_ORDER_STATUS"
	//注文を削除した操作。
	AuditActionDeleteOrder AuditAction = "DELETE_ORDER"
	//強制ログアウト。
	AuditActionForceLogout AuditAction = "FORCE_LOGOUT"
)

func (a AuditAction) Valid() bool {
	switch a {
	case AuditActionUpdateStock, AuditActionUpdateOrderStatus, AuditActionDeleteOrder, AuditActionForceLogout:
		return true
	}
	return false
}

// 何に対する操作か
type AuditResourceType string

const (
	AuditResourceProduct AuditResourceType = "product"
	AuditResourceOrder   AuditResourceType = "order"
	AuditResourceUser    AuditResourceType = "user"
)

func (t AuditResourceType) Valid() bool {
	switch t {
	case AuditResourceProduct, AuditResourceOrder, AuditResourceUser:
		return true
	}
	return false
}

// 「誰が」「何を」「どの対象に」「どう変えたか」を残す。
type AuditLog struct {
	ID string `gorm:"primaryKey;type:varchar(36)" bson:"_id" json:"id"`

	ActorUserID string `gorm:"type:varchar(36);not null;index" bson:"actorUserId" json:"actorUserId"`

	Action AuditAction `gorm:"type:varchar(50);not null;index" bson:"action" json:"action"`

	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" bson:"resourceType" json:"resourceType"`

	ResourceID string `gorm:"type:varchar(36);not null;index" bson:"resourceId" json:"resourceId"`

	//JSON文字列で保存する。
	BeforeJSON string `gorm:"type:text" bson:"before" json:"before"`
	AfterJSON  string `gorm:"type:text" bson:"after" json:"after"`

	CreatedAt time.Time `gorm:"not null;index" bson:"createdAt" json:"createdAt"`
}
