/*
Copyright 2026 The doorman Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package main is the doorman CLI: a door-admission engine for games
// with per-attribute minimum quotas.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	doormancmd "github.com/velvetlabs/doorman/internal/cmd/doorman"
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: doorman <command> [flags]

Commands:
  play      play one game against the configured live server
  simulate  play offline games against the scenario generator

Run "doorman <command> --help" for the command's flags.
`)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	command := os.Args[1]

	fs := pflag.NewFlagSet(command, pflag.ExitOnError)
	opts, err := doormancmd.ParseFlags(fs, os.Args[2:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch command {
	case "play":
		err = doormancmd.Play(ctx, opts, os.Stdout)
	case "simulate":
		err = doormancmd.Simulate(ctx, opts, os.Stdout)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
