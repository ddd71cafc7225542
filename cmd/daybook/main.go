package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/caasmo/daybook"
)

func main() {
	configPath := flag.String("config", "daybook.toml", "path to the TOML config file")
	flag.Parse()

	app, srv, err := daybook.New(*configPath,
		daybook.WithPhusLogger(nil),
		daybook.WithRouterHttprouter(),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "daybook: %v\n", err)
		os.Exit(1)
	}
	defer app.DbLocal().Close()

	srv.Run()
}
