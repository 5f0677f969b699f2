package model

import "github.com/YuminosukeSato/scigo-neighbors/core/vector"

// Transformer はベクトル集合から学習し、ベクトルを変換するコンポーネントのインターフェース
type Transformer interface {
	// Fit はベクトル集合でパラメータを学習する。再学習は以前の状態を置き換える。
	Fit(vecs []vector.Vec) error
	// IsFitted は学習済みかどうかを返す
	IsFitted() bool

	// Transform はベクトルを変換した新しいベクトルを返す
	Transform(v vector.Vec) (vector.Vec, error)
}
