// Command csvxform rewrites every CSV file in a directory into
// <dir>/output/<name>, normalising dates, empty fields and booleans on the
// way. Files are processed concurrently, largest first.
//
// Usage:
//
//	csvxform [flags] <input-dir>
//
// Exit status is 0 when every file was rewritten, 1 on usage, configuration
// or discovery errors and 2 when at least one file failed.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Getenv, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
