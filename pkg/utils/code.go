package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// ShortCode генерирует короткий 4-значный код комнаты.
// Код нужен только для ручного ввода, уникальность обеспечивает стор
// (при коллизии комната просто не найдется по коду - создатель увидит id).
func ShortCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		panic("failed to generate room code: " + err.Error())
	}
	return fmt.Sprintf("%04d", n.Int64())
}

// SeedFromString детерминированно превращает строку в сид генератора.
// Используется, чтобы сид трассы зависел только от id комнаты.
func SeedFromString(s string) int64 {
	var h int64
	for _, r := range s {
		h = h*31 + int64(r)
	}
	return h
}
