package objectstore

import "github.com/google/wire"

// ProviderSet 暴露对象存储客户端、网关与签名器构造器。
var ProviderSet = wire.NewSet(
	NewGCSClient,
	NewGateway,
	ProvidePlaybackSigner,
)
