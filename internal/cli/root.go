package cli

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/efficientgo/core/merrors"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/yuanqijing/singleton/pkg/greeter"
	"github.com/yuanqijing/singleton/pkg/singleton"
	"github.com/yuanqijing/singleton/pkg/trace"
)

const banner = `---------------------------------------
The Singleton Design Pattern in Go.
---------------------------------------
`

// Source is the holder the demo reads its instance from.
type Source interface {
	Get() (*greeter.Greeter, error)
	Observe(fn func(singleton.Event)) func(singleton.Event)
	Close() error
}

type rootCmdOptions struct {
	source Source
}

type Option func(*rootCmdOptions)

// Only tests swap the source; the binary always uses the process-wide holder.
func withSource(src Source) Option {
	return func(opts *rootCmdOptions) {
		opts.source = src
	}
}

func NewRootCmd(ctx context.Context, opts ...Option) *cobra.Command {
	rootCmdOpts := &rootCmdOptions{
		source: greeter.Default(),
	}
	for _, opt := range opts {
		opt(rootCmdOpts)
	}

	var traceEvents bool
	rootCmd := &cobra.Command{
		Use:           "singleton",
		Short:         "Demonstrates a lazily built, process-wide single instance",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var tracer *trace.Writer
			if traceEvents {
				tracer = trace.NewWriter(cmd.ErrOrStderr())
			}
			return run(cmd.OutOrStdout(), rootCmdOpts.source, tracer)
		},
	}
	rootCmd.SetContext(ctx)

	rootCmd.Flags().BoolVar(&traceEvents, "trace", false, "Print holder events to stderr")

	klogFlags := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(klogFlags)
	rootCmd.PersistentFlags().AddGoFlagSet(klogFlags)

	return rootCmd
}

func run(out io.Writer, src Source, tracer *trace.Writer) (err error) {
	prevOutput := greeter.SetOutput(out)
	defer greeter.SetOutput(prevOutput)

	if tracer != nil {
		prevObserver := src.Observe(func(ev singleton.Event) {
			switch ev {
			case singleton.EventConstructed:
				_ = tracer.Infof("Creating the Singleton instance...")
			case singleton.EventExisting:
				_ = tracer.Infof("The Singleton instance already exists!")
			case singleton.EventFailed:
				_ = tracer.Errorf("Creating the Singleton instance failed")
			}
		})
		defer src.Observe(prevObserver)
	}
	defer func() {
		errs := merrors.New(err)
		if tracer != nil {
			errs.Add(tracer.Flush())
		}
		errs.Add(src.Close())
		err = errs.Err()
	}()

	if _, err := fmt.Fprint(out, banner+"\n"); err != nil {
		return err
	}

	s1, err := src.Get()
	if err != nil {
		return err
	}
	s1.ShowMessage()

	s2, err := src.Get()
	if err != nil {
		return err
	}
	s2.ShowMessage()

	klog.V(1).InfoS("Compared instances", "same", s1 == s2)
	if _, err := fmt.Fprintf(out, "Are s1 and s2 the same? %t\n", s1 == s2); err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, "\nDone.")
	return err
}
