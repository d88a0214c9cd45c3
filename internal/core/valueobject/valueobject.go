// Package valueobject は値オブジェクト生成のための汎用検証ラッパーを提供します。
package valueobject

// Rule は生値に対する検証規則です。
type Rule[T any] func(T) error

// Validate は規則を順に適用し、最初の失敗を返します。すべて通れば raw をそのまま返します。
func Validate[T any](raw T, rules ...Rule[T]) (T, error) {
	for _, rule := range rules {
		if rule == nil {
			continue
		}
		if err := rule(raw); err != nil {
			var zero T
			return zero, err
		}
	}
	return raw, nil
}

// Normalize は正規化してから検証します。
func Normalize[T any](raw T, normalize func(T) T, rules ...Rule[T]) (T, error) {
	if normalize != nil {
		raw = normalize(raw)
	}
	return Validate(raw, rules...)
}

// Must は生成に失敗した場合に panic します。固定値の初期化専用です。
func Must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
