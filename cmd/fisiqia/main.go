// Command fisiqia is a terminal client for the FisiQIA backend.
//
//	fisiqia projeto [nome]            show or set the current project
//	fisiqia novo                      start a new project label
//	fisiqia secao <secao> [pergunta]  load a section or ask a question
//	fisiqia relatorio [-o arquivo]    download the technical report
//	fisiqia eventos                   follow backend events on NATS
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"fisiqia-be/pkg/client"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

const (
	defaultServer  = "http://localhost:3000"
	defaultNatsURL = "nats://localhost:4222"
)

var errUsage = errors.New("uso: fisiqia [-servidor url] <projeto|novo|secao|relatorio|eventos> [args]")

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "✖ %v\n", err)
		os.Exit(1)
	}
}

type cli struct {
	out       io.Writer
	workspace *client.Workspace
	api       *client.API
	natsURL   string
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("fisiqia", flag.ContinueOnError)
	fs.SetOutput(out)
	server := fs.String("servidor", getEnv("FISIQIA_URL", defaultServer), "endereço do backend")
	statePath := fs.String("estado", getEnv("FISIQIA_STATE", ""), "arquivo de estado (padrão: diretório de configuração do usuário)")
	retry := fs.Bool("repetir", true, "repetir uma vez perguntas que falharem por erro de rede")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errUsage
	}

	if *statePath == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return fmt.Errorf("diretório de configuração: %w", err)
		}
		*statePath = filepath.Join(dir, "fisiqia", "estado.json")
	}
	store, err := client.OpenFileStore(*statePath)
	if err != nil {
		return err
	}
	workspace, err := client.NewWorkspace(store)
	if err != nil {
		return err
	}

	var opts []client.APIOption
	if *retry {
		opts = append(opts, client.WithRetry(time.Second))
	}

	c := &cli{
		out:       out,
		workspace: workspace,
		api:       client.NewAPI(*server, opts...),
		natsURL:   getEnv("NATS_URL", defaultNatsURL),
	}

	rest := fs.Args()[1:]
	switch fs.Arg(0) {
	case "projeto":
		return c.project(rest)
	case "novo":
		return c.newProject()
	case "secao", "seção":
		return c.section(ctx, rest)
	case "relatorio", "relatório":
		return c.report(ctx, rest)
	case "eventos":
		return c.events(ctx)
	default:
		return errUsage
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
