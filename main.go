package main

import (
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"lanerunner/server"
)

// LaneRunner 入口：启动 HTTP + WebSocket 服务，组装房间存储与广播器
func main() {
	cfg := server.LoadConfig()

	var addr string
	flag.StringVar(&addr, "addr", cfg.Addr, "server listen address, e.g. :8080")
	flag.Parse()

	// 使用第三方 zap 日志库写入文件（带滚动）
	if err := server.InitLogger(cfg.LogFile, cfg.LogLevel); err != nil {
		panic(err)
	}
	defer server.SyncLogger()

	bc := server.NewBroadcaster()
	store := server.NewRoomStore(bc)
	reg := server.NewRegistry()
	gw := server.NewGateway(store, reg, bc)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", gw.HandleWS)
	// 前后端分离：将 / 映射到 web 目录的静态资源
	mux.Handle("/", http.FileServer(http.Dir("web")))
	// 管理与监控接口
	admin := server.NewAdminHandler(store)
	mux.HandleFunc("/admin/config", admin.HandleConfig)
	mux.HandleFunc("/metrics", admin.HandleMetrics)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		server.Log.Infof("LaneRunner listening on %s; open http://localhost%v/", addr, addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			server.Log.Fatalf("listen: %v", err)
		}
	}()

	// 优雅退出（Ctrl+C）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	server.Log.Info("Shutting down...")
}
