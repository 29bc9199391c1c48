package main

import (
	"flag"
	"log/slog"
	"net/http"
	"os"
	"time"

	"idz2_newton/internal/server"

	"github.com/lmittmann/tint"
)

func main() {
	addr := flag.String("addr", ":8080", "адрес http-сервера")
	staticDir := flag.String("static", "static", "каталог со статикой")
	flag.Parse()

	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      slog.LevelInfo,
			TimeFormat: time.Kitchen,
		}),
	))

	router := server.NewRouter(*staticDir)

	slog.Info("сервер запущен", "addr", *addr, "static", *staticDir)
	if err := http.ListenAndServe(*addr, router); err != nil {
		slog.Error("сервер остановлен", "err", err)
		os.Exit(1)
	}
}
