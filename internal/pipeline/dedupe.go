package pipeline

// dedupeKeyRunes はタイトル先頭の何文字で同一記事とみなすか
const dedupeKeyRunes = 50

// Deduper は1回の実行内で既出のタイトルを記録する
//
// キーはタイトルの先頭50文字そのもの。大文字小文字や空白の違いは別物として扱う。
// 実行をまたいだ記憶は持たない。
type Deduper struct {
	seen map[string]struct{}
}

// NewDeduper は空の Deduper を返す
func NewDeduper() *Deduper {
	return &Deduper{seen: make(map[string]struct{})}
}

// IsSeen はタイトルが既出かどうかを返す。記録はしない。
func (d *Deduper) IsSeen(title string) bool {
	_, ok := d.seen[prefixRunes(title, dedupeKeyRunes)]
	return ok
}

// MarkSeen はタイトルを既出として記録する
func (d *Deduper) MarkSeen(title string) {
	d.seen[prefixRunes(title, dedupeKeyRunes)] = struct{}{}
}

// Admit は未出なら記録して true、既出なら false を返す
func (d *Deduper) Admit(title string) bool {
	if d.IsSeen(title) {
		return false
	}
	d.MarkSeen(title)
	return true
}

// Len は記録済みのキー数
func (d *Deduper) Len() int {
	return len(d.seen)
}
