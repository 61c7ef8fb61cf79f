package version

import "fmt"

// Version/Commit/BuildDate 可在构建时通过 -ldflags 注入，默认使用开发占位符。
var (
	Version   = "0.1.0"
	Commit    = "dev"
	BuildDate = ""
)

// Full 返回便于 CLI 打印的完整版本信息，注入构建日期时一并输出。
func Full() string {
	if BuildDate == "" {
		return fmt.Sprintf("filecache %s (%s)", Version, Commit)
	}
	return fmt.Sprintf("filecache %s (%s, %s)", Version, Commit, BuildDate)
}
