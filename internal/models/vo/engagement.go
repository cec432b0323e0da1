package vo

// ToggleState 封装一次互动开关调用后的最终状态。
// Active 表示调用结束后互动处于激活态（已点赞/已订阅）。
type ToggleState struct {
	Active bool `json:"active"`
}
