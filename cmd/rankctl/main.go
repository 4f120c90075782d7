// Command rankctl is the operator CLI for the ranking service. It talks to
// Postgres and Redis directly, acting on behalf of the given recruiter.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "rankctl:", err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	jobFlag := &cli.StringFlag{Name: "job", Aliases: []string{"j"}, Usage: "job id", Required: true}
	recruiterFlag := &cli.StringFlag{Name: "recruiter", Aliases: []string{"r"}, Usage: "recruiter who owns the job", Required: true}

	return &cli.Command{
		Name:  "rankctl",
		Usage: "inspect and drive candidate ranking runs",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "path to YAML config file", Value: "config.yaml"},
			&cli.BoolFlag{Name: "dev", Usage: "console logging"},
		},
		Commands: []*cli.Command{
			{
				Name:   "status",
				Usage:  "show the ranking status of a job",
				Flags:  []cli.Flag{jobFlag, recruiterFlag, &cli.StringFlag{Name: "task", Usage: "expected task id"}},
				Action: statusAction,
			},
			{
				Name:   "results",
				Usage:  "list ranked candidates of a job",
				Flags:  []cli.Flag{jobFlag, recruiterFlag, &cli.BoolFlag{Name: "json", Usage: "print raw JSON"}},
				Action: resultsAction,
			},
			{
				Name:  "export",
				Usage: "write ranked candidates to an xlsx workbook",
				Flags: []cli.Flag{jobFlag, recruiterFlag,
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file (default ranking-<job>-<time>.xlsx)"}},
				Action: exportAction,
			},
			{
				Name:  "rank",
				Usage: "run a ranking in this process and wait for the outcome",
				Flags: []cli.Flag{jobFlag, recruiterFlag,
					&cli.BoolFlag{Name: "force", Usage: "ignore recent results"},
					&cli.DurationFlag{Name: "poll", Usage: "status poll interval", Value: 2 * time.Second},
				},
				Action: rankAction,
			},
			{
				Name:   "reap",
				Usage:  "fail ranking runs abandoned by a dead instance",
				Action: reapAction,
			},
			{
				Name:  "resume-status",
				Usage: "show the processing status of a resume",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "resume", Usage: "resume id", Required: true},
					&cli.StringFlag{Name: "user", Usage: "requesting user id", Value: "rankctl"},
				},
				Action: resumeStatusAction,
			},
			{
				Name:  "token",
				Usage: "mint an API session token",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "subject", Usage: "user id", Required: true},
					&cli.StringFlag{Name: "role", Usage: "recruiter|candidate", Value: "recruiter"},
				},
				Action: tokenAction,
			},
		},
	}
}
