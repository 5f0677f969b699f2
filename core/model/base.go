// Package model は学習が必要なコンポーネント（学習可能な距離関数やスケーラー）が
// 共有する学習状態と能力インターフェースを提供します。
package model

// EstimatorState はモデルの学習状態を表す
type EstimatorState int

const (
	// NotFitted はモデルが未学習の状態
	NotFitted EstimatorState = iota
	// Fitted はモデルが学習済みの状態
	Fitted
)

func (s EstimatorState) String() string {
	if s == Fitted {
		return "fitted"
	}
	return "not_fitted"
}

// BaseEstimator は全ての学習可能なコンポーネントの基底となる構造体。
// 値としてコピーできるため、Clone では埋め込み先ごと複製すればよい。
type BaseEstimator struct {
	state     EstimatorState
	nFeatures int
}

// IsFitted はモデルが学習済みかどうかを返す
func (e *BaseEstimator) IsFitted() bool {
	return e.state == Fitted
}

// SetFitted はモデルを学習済み状態に設定し、学習時の次元数を記録する
func (e *BaseEstimator) SetFitted(nFeatures int) {
	e.state = Fitted
	e.nFeatures = nFeatures
}

// NFeatures は学習時の次元数を返す。未学習なら0。
func (e *BaseEstimator) NFeatures() int {
	return e.nFeatures
}

// State は現在の学習状態を返す
func (e *BaseEstimator) State() EstimatorState {
	return e.state
}

// Reset はモデルを初期状態にリセットする
func (e *BaseEstimator) Reset() {
	e.state = NotFitted
	e.nFeatures = 0
}
