package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], stdio{
		Out:      os.Stdout,
		Err:      os.Stderr,
		OutIsTTY: isTTY(os.Stdout),
		ErrIsTTY: isTTY(os.Stderr),
		Getwd:    os.Getwd,
	})
	stop()
	if code != 0 {
		os.Exit(code)
	}
}

func isTTY(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
