package auth

import "golang.org/x/crypto/bcrypt"

// bcrypt（会員登録：Hash / ログイン：Verify）
type BcryptHasher struct {
	cost  int
	dummy []byte
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	//存在しないemailでも同じだけ時間をかけるためのhash
	dummy, _ := bcrypt.GenerateFromPassword([]byte("fusion-dummy-password"), cost)
	return &BcryptHasher{cost: cost, dummy: dummy}
}

func (h *BcryptHasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// hashedが空ならダミーと比較して必ずfalse
func (h *BcryptHasher) Verify(plain string, hashed string) bool {
	if hashed == "" {
		_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(plain))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}
