// Package httpapi 诊断服务 HTTP 接口
package httpapi

// Result 统一响应信封
// - code: 2000 成功, -1 失败
// - type: 'success' | 'error'
// - message: string
// - result: any
type Result[T any] struct {
	Code    int    `json:"code"`
	Type    string `json:"type"`
	Message string `json:"message"`
	Result  T      `json:"result"`
}

const (
	ResultSuccess = 2000
	ResultError   = -1
)

func Ok[T any](result T) Result[T] {
	return Result[T]{Code: ResultSuccess, Type: "success", Message: "ok", Result: result}
}

func Fail(message string) Result[any] {
	return Result[any]{Code: ResultError, Type: "error", Message: message, Result: nil}
}

// FailDetail 失败时附带出错组件等信息
func FailDetail(message string, detail any) Result[any] {
	return Result[any]{Code: ResultError, Type: "error", Message: message, Result: detail}
}
