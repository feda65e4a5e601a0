package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/joho/godotenv"

	"github.com/GregMSThompson/transaction-tracker/cmd/tracker/internal/commands"
	"github.com/GregMSThompson/transaction-tracker/internal/config"
)

func main() {
	_ = godotenv.Load()

	env, closeLog, err := commands.NewEnv(config.NewClient())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	commands.Register(commander, env)

	flag.Parse()
	status := commander.Execute(context.Background())
	closeLog()
	os.Exit(int(status))
}
