// Package errors はtreeport全体のエラーハンドリングと警告の型を提供します。
// ダンプの解析で発生する問題を、レコード単位の警告とツリー/モデル単位の致命的エラーに分けて表現します。
package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ModelLevel はツリーに属さないモデル全体のエラーを示すツリー番号です。
const ModelLevel = -1

// ConversionError の種別
const (
	KindEmptyTree  = "empty tree"
	KindRoot       = "invalid root"
	KindStrict     = "warnings are fatal"
	KindEmptyModel = "empty model"
	KindPanic      = "panic"
)

// ===========================================================================
//
//	レコード単位の警告型
//
// ===========================================================================

// MalformedRecordError は1行のダンプがノードの文法に一致しない場合のエラーです。
// ツリーの変換は継続され、警告として収集されます。
type MalformedRecordError struct {
	Tree   int    // ツリー番号（不明な場合は ModelLevel）
	Line   int    // 1始まりの行番号（不明な場合は0）
	Text   string // 問題の行
	Reason string
}

func (e *MalformedRecordError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("treeport: tree %d line %d: malformed record %q: %s", e.Tree, e.Line, e.Text, e.Reason)
	}
	return fmt.Sprintf("treeport: malformed record %q: %s", e.Text, e.Reason)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (e *MalformedRecordError) MarshalZerologObject(event *zerolog.Event) {
	event.Int("tree", e.Tree).
		Int("line", e.Line).
		Str("text", e.Text).
		Str("reason", e.Reason).
		Str("type", "MalformedRecord")
}

// NewMalformedRecordError は新しいMalformedRecordErrorを作成し、スタックトレースを付与します。
// ツリー番号と行番号はツリーの組み立て時に埋められます。
func NewMalformedRecordError(text, reason string) error {
	err := &MalformedRecordError{Tree: ModelLevel, Text: text, Reason: reason}
	return errors.WithStack(err)
}

// DanglingReferenceWarning は分岐ノードの子IDが同じツリーに存在しない場合の警告です。
type DanglingReferenceWarning struct {
	Tree   int
	Node   int
	Branch string // "yes", "no", "missing"
	Child  int
}

func (w *DanglingReferenceWarning) Error() string {
	return fmt.Sprintf("tree %d: node %d references missing %s child %d", w.Tree, w.Node, w.Branch, w.Child)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *DanglingReferenceWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Int("tree", w.Tree).
		Int("node", w.Node).
		Str("branch", w.Branch).
		Int("child", w.Child).
		Str("type", "DanglingReference")
}

// DuplicateNodeWarning は同じノードIDが複数回現れ、後の定義で上書きされた場合の警告です。
type DuplicateNodeWarning struct {
	Tree int
	Node int
	Line int
}

func (w *DuplicateNodeWarning) Error() string {
	return fmt.Sprintf("tree %d line %d: node %d redefined, earlier definition overwritten", w.Tree, w.Line, w.Node)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *DuplicateNodeWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Int("tree", w.Tree).
		Int("node", w.Node).
		Int("line", w.Line).
		Str("type", "DuplicateNode")
}

// FeatureOutOfRangeWarning は特徴量インデックスが宣言された特徴量数を超える場合の警告です。
type FeatureOutOfRangeWarning struct {
	Tree       int
	Node       int
	Feature    int
	NumFeature int
}

func (w *FeatureOutOfRangeWarning) Error() string {
	return fmt.Sprintf("tree %d: node %d splits on feature %d but the model declares %d features", w.Tree, w.Node, w.Feature, w.NumFeature)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *FeatureOutOfRangeWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Int("tree", w.Tree).
		Int("node", w.Node).
		Int("feature", w.Feature).
		Int("num_feature", w.NumFeature).
		Str("type", "FeatureOutOfRange")
}

// TreeCountMismatchWarning はメタデータのツリー数とダンプの数が一致しない場合の警告です。
type TreeCountMismatchWarning struct {
	Declared int
	Dumped   int
}

func (w *TreeCountMismatchWarning) Error() string {
	return fmt.Sprintf("model declares %d trees but %d tree dumps were supplied", w.Declared, w.Dumped)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *TreeCountMismatchWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Int("declared", w.Declared).
		Int("dumped", w.Dumped).
		Str("type", "TreeCountMismatch")
}

// ===========================================================================
//
//	構造化されたエラー型
//
// ===========================================================================

// EmptyTreeError はツリーのダンプから有効なノードが1つも得られなかった場合のエラーです。
// ルートのないツリーは推論できないため致命的です。
type EmptyTreeError struct {
	Tree      int
	Malformed int // 解析に失敗した行の数
}

func (e *EmptyTreeError) Error() string {
	return fmt.Sprintf("treeport: tree %d has no valid nodes (%d malformed records)", e.Tree, e.Malformed)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *EmptyTreeError) MarshalZerologObject(event *zerolog.Event) {
	event.Int("tree", e.Tree).
		Int("malformed", e.Malformed).
		Str("type", "EmptyTree")
}

// NewEmptyTreeError は新しいEmptyTreeErrorを作成し、スタックトレースを付与します。
func NewEmptyTreeError(tree, malformed int) error {
	err := &EmptyTreeError{Tree: tree, Malformed: malformed}
	return errors.WithStack(err)
}

// UnsupportedSourceFormatError はどの読み込み方式でもモデルを読めない場合のエラーです。
type UnsupportedSourceFormatError struct {
	Path   string
	Format string
	Reason string
}

func (e *UnsupportedSourceFormatError) Error() string {
	if e.Format != "" {
		return fmt.Sprintf("treeport: %s: unsupported source format %q: %s", e.Path, e.Format, e.Reason)
	}
	return fmt.Sprintf("treeport: %s: unsupported source format: %s", e.Path, e.Reason)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *UnsupportedSourceFormatError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("path", e.Path).
		Str("format", e.Format).
		Str("reason", e.Reason).
		Str("type", "UnsupportedSourceFormat")
}

// NewUnsupportedSourceFormatError は新しいUnsupportedSourceFormatErrorを作成し、スタックトレースを付与します。
func NewUnsupportedSourceFormatError(path, format, reason string) error {
	err := &UnsupportedSourceFormatError{Path: path, Format: format, Reason: reason}
	return errors.WithStack(err)
}

// ConversionError はツリーまたはモデルの変換を中断する致命的なエラーです。
// 部分的に構築された文書の代わりに返されます。
type ConversionError struct {
	Op   string
	Tree int // ModelLevel はモデル全体
	Kind string
	Err  error
}

func (e *ConversionError) Error() string {
	where := "model"
	if e.Tree != ModelLevel {
		where = fmt.Sprintf("tree %d", e.Tree)
	}
	if e.Err != nil {
		return fmt.Sprintf("treeport: %s: %s: %s: %v", e.Op, where, e.Kind, e.Err)
	}
	return fmt.Sprintf("treeport: %s: %s: %s", e.Op, where, e.Kind)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ConversionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("tree", e.Tree).
		Str("kind", e.Kind).
		Str("type", "ConversionFailure")
	if e.Err != nil {
		event.Str("cause", e.Err.Error())
	}
}

// NewConversionError は新しいConversionErrorを作成し、スタックトレースを付与します。
func NewConversionError(op string, tree int, kind string, err error) error {
	convErr := &ConversionError{Op: op, Tree: tree, Kind: kind, Err: err}
	return errors.WithStack(convErr)
}

// ValidationError は設定値の検証に失敗した場合のエラーです。
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("treeport: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError は新しいValidationErrorを作成し、スタックトレースを付与します。
func NewValidationError(param, reason string, value interface{}) error {
	err := &ValidationError{ParamName: param, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// IsEmptyTree はエラーチェーンにEmptyTreeErrorが含まれるかを判定します。
func IsEmptyTree(err error) bool {
	var target *EmptyTreeError
	return errors.As(err, &target)
}

// IsUnsupportedSourceFormat はエラーチェーンにUnsupportedSourceFormatErrorが含まれるかを判定します。
func IsUnsupportedSourceFormat(err error) bool {
	var target *UnsupportedSourceFormatError
	return errors.As(err, &target)
}

// ===========================================================================
//
//	cockroachdb/errors ラッパー関数
//
// ===========================================================================

// Is はエラーが特定のターゲットエラーかどうかを判定します。
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As はエラーが特定の型にキャスト可能かどうかを判定します。
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap は既存のエラーをメッセージ付きでラップします。
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf は既存のエラーをフォーマット文字列でラップします。
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New は新しいエラーを作成します。
func New(message string) error {
	return errors.New(message)
}

// Newf は新しいフォーマット済みエラーを作成します。
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack はエラーにスタックトレースを付与します。
func WithStack(err error) error {
	return errors.WithStack(err)
}
