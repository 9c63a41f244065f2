package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"fisiqia-be/pkg/client"
	"fisiqia-be/pkg/events"
	pktNats "fisiqia-be/pkg/nats"
	"fisiqia-be/pkg/section"

	"github.com/fatih/color"
)

var (
	titleColor = color.New(color.FgCyan, color.Bold)
	okColor    = color.New(color.FgGreen)
	warnColor  = color.New(color.FgYellow)
	faintColor = color.New(color.Faint)
)

func (c *cli) project(args []string) error {
	if len(args) > 0 {
		if err := c.workspace.SetProject(strings.Join(args, " ")); err != nil {
			return err
		}
		okColor.Fprintf(c.out, "✔ Projeto definido: %s\n", c.workspace.Project())
		return nil
	}
	fmt.Fprintf(c.out, "Projeto: %s\n", c.workspace.Project())
	faintColor.Fprintf(c.out, "Sessão: %s\n", c.workspace.SessionID())
	return nil
}

func (c *cli) newProject() error {
	label, err := c.workspace.NewProject()
	if err != nil {
		return err
	}
	okColor.Fprintf(c.out, "✔ Novo projeto: %s\n", label)
	return nil
}

func (c *cli) section(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("uso: fisiqia secao <%s> [pergunta]", strings.Join(askableNames(), "|"))
	}
	sec, found := section.Parse(args[0])
	if !found || !sec.Askable() {
		return fmt.Errorf("seção desconhecida: %s", args[0])
	}

	view := client.NewView(sec, c.workspace, c.api)
	question := strings.Join(args[1:], " ")

	titleColor.Fprintf(c.out, "%s · %s\n", sec.Title(), c.workspace.Project())
	faintColor.Fprintln(c.out, "Consultando o assistente...")

	var err error
	if question == "" && sec.AutoLoad() {
		err = view.Enter(ctx)
	} else {
		err = view.Submit(ctx, question)
	}
	if err != nil {
		return describe(err)
	}

	printAnswer(c, view.Snapshot().Answer)
	return nil
}

func (c *cli) report(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("relatorio", flag.ContinueOnError)
	fs.SetOutput(c.out)
	output := fs.String("o", "relatorio.pdf", "arquivo de saída")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var buf bytes.Buffer
	view := client.NewView(section.Report, c.workspace, c.api)
	faintColor.Fprintln(c.out, "Gerando relatório...")
	if err := view.Download(ctx, &buf); err != nil {
		return describe(err)
	}

	if err := os.WriteFile(*output, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("salvar relatório: %w", err)
	}
	okColor.Fprintf(c.out, "✔ Relatório salvo em %s (%d bytes)\n", *output, buf.Len())
	return nil
}

func (c *cli) events(ctx context.Context) error {
	sub, err := pktNats.NewSubscriber(c.natsURL)
	if err != nil {
		return err
	}
	defer sub.Close()

	err = sub.Subscribe(ctx, pktNats.SubjectPrefix+">", "", func(_ context.Context, e events.Event) error {
		warnColor.Fprintf(c.out, "%s ", e.Timestamp().Local().Format(time.TimeOnly))
		titleColor.Fprintf(c.out, "%s", e.EventType())
		for _, k := range []string{"projeto", "secao", "session_id", "motivo"} {
			if v, ok := e.Payload()[k]; ok {
				fmt.Fprintf(c.out, " %s=%v", k, v)
			}
		}
		fmt.Fprintln(c.out)
		return nil
	})
	if err != nil {
		return err
	}

	faintColor.Fprintf(c.out, "Acompanhando eventos em %s (Ctrl+C para sair)\n", c.natsURL)
	<-ctx.Done()
	return nil
}

func printAnswer(c *cli, ans *client.Answer) {
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, strings.TrimSpace(ans.Resposta))

	if len(ans.Referencias) > 0 {
		fmt.Fprintln(c.out)
		titleColor.Fprintln(c.out, "Referências")
		for _, ref := range ans.Referencias {
			fmt.Fprintf(c.out, "  • %s\n", ref)
		}
	}
	if ans.Notas != "" {
		fmt.Fprintln(c.out)
		warnColor.Fprintf(c.out, "Notas: %s\n", ans.Notas)
	}
}

// describe adds the list of missing sections to report errors.
func describe(err error) error {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && len(apiErr.Missing) > 0 {
		return fmt.Errorf("%s (faltando: %s)", apiErr.Message, strings.Join(apiErr.Missing, ", "))
	}
	return err
}

func askableNames() []string {
	var names []string
	for _, s := range section.All {
		if s.Askable() {
			names = append(names, strings.TrimPrefix(s.Route(), "/"))
		}
	}
	return names
}
