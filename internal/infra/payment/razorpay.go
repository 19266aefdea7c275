package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"fusion/internal/domain/model"

	"github.com/razorpay/razorpay-go"
)

// Razorpayの注文作成と署名検証
type Razorpay struct {
	client    *razorpay.Client
	keySecret string
}

func NewRazorpay(keyID, keySecret string) *Razorpay {
	return &Razorpay{
		client:    razorpay.NewClient(keyID, keySecret),
		keySecret: keySecret,
	}
}

// razorpay-goはctxを受け取らない
func (r *Razorpay) CreateOrder(ctx context.Context, amount int64, currency string, receipt string) (model.PaymentOrder, error) {
	if err := ctx.Err(); err != nil {
		return model.PaymentOrder{}, err
	}

	body, err := r.client.Order.Create(map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
	}, nil)
	if err != nil {
		return model.PaymentOrder{}, fmt.Errorf("razorpay: create order: %w", err)
	}

	return parseOrder(body)
}

func parseOrder(body map[string]interface{}) (model.PaymentOrder, error) {
	id, _ := body["id"].(string)
	if id == "" {
		return model.PaymentOrder{}, fmt.Errorf("razorpay: response has no order id")
	}

	out := model.PaymentOrder{ID: id}
	out.Currency, _ = body["currency"].(string)
	out.Receipt, _ = body["receipt"].(string)
	out.Status, _ = body["status"].(string)

	//JSONの数値はfloat64で来る
	switch v := body["amount"].(type) {
	case float64:
		out.Amount = int64(v)
	case int64:
		out.Amount = v
	case int:
		out.Amount = int64(v)
	}
	return out, nil
}

func (r *Razorpay) VerifySignature(orderID, paymentID, signature string) bool {
	expected := Signature(r.keySecret, orderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// HMAC-SHA256(orderId|paymentId) のhex
func Signature(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}
