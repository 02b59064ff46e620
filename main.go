package main

import (
	"flag"
	"fmt"
	"os"

	"oauth-gateway/server"

	_ "github.com/mattn/go-sqlite3"
)

func main() {
	commandFlag := flag.String("command", "start", "Command to run")
	configFlag := flag.String("config", "", "Path to YAML config file (optional)")
	flag.Parse()

	switch *commandFlag {
	case "start":
		if err := server.StartServer(*configFlag); err != nil {
			fmt.Fprintln(os.Stderr, "oauth-gateway:", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", *commandFlag)
		fmt.Fprintln(os.Stderr, "Usage: oauth-gateway --command start [--config path]")
		os.Exit(1)
	}
}
