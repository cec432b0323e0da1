package intake

import "github.com/google/wire"

// ProviderSet 暴露暂存器构造器供 Wire 依赖注入使用。
var ProviderSet = wire.NewSet(NewStager)
