package main

import (
	"context"
	"fmt"
	"os"

	"k8s.io/klog/v2"

	"github.com/yuanqijing/singleton/internal/cli"
)

func main() {
	os.Exit(actualMain())
}

func actualMain() int {
	defer klog.Flush()

	ctx := context.Background()
	rootCmd := cli.NewRootCmd(ctx)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		return 1
	}

	return 0
}
