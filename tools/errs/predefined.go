package errs

// 错误码分段：1xxx 通用 / 2xxx 读路径 / 3xxx 写路径 / 4xxx 通道
const (
	ServerInternalError = 1000
	ArgsError           = 1001
	RecordNotFound      = 1002
	AuthRequiredError   = 1101

	FetchFailedError = 2001
	DecodeErrorCode  = 2002

	MutationFailedError   = 3001
	ValidationFailedError = 3002

	ChannelDisconnectedError = 4001
)

var (
	ErrInternal       = NewCodeError(ServerInternalError, "internal error")
	ErrArgs           = NewCodeError(ArgsError, "bad argument")
	ErrRecordNotFound = NewCodeError(RecordNotFound, "record not found")

	// ErrAuthRequired 未解析出身份：阻断订阅与一切写操作
	ErrAuthRequired = NewCodeError(AuthRequiredError, "Authentication required")

	// ErrFetchFailed 读失败，可由用户重试
	ErrFetchFailed = NewCodeError(FetchFailedError, "Failed to fetch")
	// ErrDecode 响应形状不合法，不可重试
	ErrDecode = NewCodeError(DecodeErrorCode, "malformed response")

	// ErrMutationFailed 写失败：回滚乐观状态并提示一次
	ErrMutationFailed = NewCodeError(MutationFailedError, "mutation failed")
	// ErrValidationFailed 客户端校验失败，不落库
	ErrValidationFailed = NewCodeError(ValidationFailedError, "Validation failed")

	// ErrChannelDisconnected 通道断开：降级为 Connecting… 状态
	ErrChannelDisconnected = NewCodeError(ChannelDisconnectedError, "channel disconnected")
)
