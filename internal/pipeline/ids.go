package pipeline

import (
	"encoding/binary"

	"github.com/google/uuid"
)

// FetchedIDBase 未満はシード記事用に予約されている
const FetchedIDBase = 1000

const fetchedIDSpan = 1_000_000_000

// newsNamespace は取得記事GUIDの UUIDv5 名前空間
var newsNamespace = uuid.MustParse("5b0f6c1e-8a47-4d2b-9c3e-7e1a2f4d6b90")

// ItemGUID はタイトルとソースから決まる記事の識別子を返す
//
// 同じ記事は実行をまたいでも同じ値になる。
func ItemGUID(title, source string) uuid.UUID {
	return uuid.NewSHA1(newsNamespace, []byte(title+"|"+source))
}

// idAllocator は1回の実行内で数値IDを払い出す
//
// IDはGUIDの先頭4バイトから決まるので実行をまたいで安定する。
// 実行内で衝突した場合だけ次の空き番号にずらす。
type idAllocator struct {
	used map[int]bool
}

func newIDAllocator() *idAllocator {
	return &idAllocator{used: make(map[int]bool)}
}

func (a *idAllocator) reserve(id int) {
	a.used[id] = true
}

func (a *idAllocator) allocate(guid uuid.UUID) int {
	id := FetchedIDBase + int(binary.BigEndian.Uint32(guid[:4])%fetchedIDSpan)
	for a.used[id] {
		id++
	}
	a.used[id] = true
	return id
}
