package logger

import (
	log "log/slog"
	"os"
)

// InitLogger 初始化全局 slog，统一输出 JSON 并自动附带 trace_id
func InitLogger() {
	h := log.NewJSONHandler(os.Stdout, &log.HandlerOptions{Level: log.LevelInfo})
	log.SetDefault(log.New(&ContextHandler{h}))
}
