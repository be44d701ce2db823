package xclickhouse

// DefaultName 未命名连接使用的名称。
const DefaultName = "default"

const (
	// defaultToken 是默认连接的注册表键。
	defaultToken = "xclickhouse.connection"

	// tokenPrefix 非默认连接的键前缀，键为 tokenPrefix + name。
	tokenPrefix = defaultToken + ":"
)

// NormalizeName 返回规范化后的连接名，空字符串视为 DefaultName。
func NormalizeName(name string) string {
	if name == "" {
		return DefaultName
	}
	return name
}

// Token 返回连接名对应的注册表键。
//
// "" 与 DefaultName 映射到同一个键；其他名称确定性地映射为带前缀的键，
// 因此不同名称的键互不相同，也不会与默认键冲突。
func Token(name string) string {
	if name == "" || name == DefaultName {
		return defaultToken
	}
	return tokenPrefix + name
}
