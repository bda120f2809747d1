package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sandeepkv93/taskremind/internal/model"
	"github.com/sandeepkv93/taskremind/internal/views"
)

func main() {
	if err := run(os.Args, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, views.RenderError(model.Kind(err), model.Field(err), err.Error()))
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	app := newApp(stdout, stderr)
	return app.Run(args)
}
