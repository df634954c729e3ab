package main

import (
	"context"
	"os"
	"syscall"

	"github.com/charmbracelet/fang"

	"photo-catalog/cmd"
	"photo-catalog/internal/startup"
)

func main() {
	root := cmd.NewRootCmd()

	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(startup.Version),
		fang.WithCommit(startup.Commit),
		fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM),
	); err != nil {
		os.Exit(1)
	}
}
