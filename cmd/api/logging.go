package main

import (
	"io"
	"log"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"gopkg.in/natefinch/lumberjack.v2"
)

// setupLogging tees the standard logger and gin's request log into a
// size-rotated file when LOG_FILE is set.
func setupLogging() func() {
	path := os.Getenv("LOG_FILE")
	if path == "" {
		return func() {}
	}

	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    envInt("LOG_MAX_SIZE_MB", 10),
		MaxBackups: envInt("LOG_MAX_BACKUPS", 3),
		MaxAge:     envInt("LOG_MAX_AGE_DAYS", 7),
		Compress:   true,
	}
	w := io.MultiWriter(os.Stderr, rotator)
	log.SetOutput(w)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	gin.DefaultWriter = io.MultiWriter(os.Stdout, rotator)
	gin.DefaultErrorWriter = w

	log.Printf("[server] logging to file path=%s", path)
	return func() {
		log.SetOutput(os.Stderr)
		_ = rotator.Close()
	}
}

func envInt(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return def
}
