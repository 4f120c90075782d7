package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"

	"hirehub-ranking/internal/application"
	"hirehub-ranking/internal/config"
	"hirehub-ranking/internal/domain/model"
	"hirehub-ranking/internal/infra/api/auth"
	"hirehub-ranking/internal/infra/export"
	"hirehub-ranking/internal/infra/logging"
	"hirehub-ranking/internal/usecase"
)

func loadConfig(cmd *cli.Command) (*config.Config, error) {
	return config.LoadConfig(cmd.String("config"), cmd.Bool("dev"))
}

func openApp(ctx context.Context, cmd *cli.Command) (*application.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger := logging.NewWithWriter(os.Stderr, cfg.Log, cfg.Runtime.Dev)
	return application.New(ctx, cfg, logger)
}

func statusAction(ctx context.Context, cmd *cli.Command) error {
	app, err := openApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	task, err := app.Status.GetRankingStatus(ctx, cmd.String("recruiter"), cmd.String("job"), cmd.String("task"))
	if err != nil {
		return err
	}
	return printJSON(os.Stdout, task)
}

func resultsAction(ctx context.Context, cmd *cli.Command) error {
	app, err := openApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	res, err := app.Status.GetResults(ctx, cmd.String("recruiter"), cmd.String("job"))
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return printJSON(os.Stdout, res)
	}
	return renderResults(os.Stdout, res)
}

func exportAction(ctx context.Context, cmd *cli.Command) error {
	app, err := openApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	res, err := app.Status.GetResults(ctx, cmd.String("recruiter"), cmd.String("job"))
	if err != nil {
		return err
	}
	out := cmd.String("out")
	if out == "" {
		out = export.FileName(res)
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := export.WriteResults(f, res); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("wrote %d candidates to %s\n", len(res.Entries), out)
	return nil
}

func rankAction(ctx context.Context, cmd *cli.Command) error {
	app, err := openApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	// the run executes on this process's workers
	app.Start(ctx)
	recruiter, job := cmd.String("recruiter"), cmd.String("job")
	res, err := app.Ranking.StartRanking(ctx, recruiter, job, usecase.RankingOptions{Force: cmd.Bool("force")})
	if err != nil {
		return err
	}
	switch {
	case res.CacheHit:
		fmt.Printf("recent results reused (task %s)\n", res.TaskID)
		return nil
	case res.Completed:
		fmt.Printf("ranking completed (task %s)\n", res.TaskID)
		return nil
	}
	fmt.Printf("ranking started: task %s, priority %d\n", res.TaskID, res.Priority)
	task, err := waitForRun(ctx, app.Status, recruiter, job, res.TaskID, cmd.Duration("poll"), os.Stdout)
	if err != nil {
		return err
	}
	if task.Status == model.RankingStatusFailed {
		return fmt.Errorf("ranking failed: %s", task.Error)
	}
	return nil
}

// waitForRun polls the status until the run reaches a terminal status.
func waitForRun(ctx context.Context, status usecase.StatusUseCase, recruiterID, jobID, taskID string,
	every time.Duration, w io.Writer) (*model.RankingTask, error) {
	if every <= 0 {
		every = 2 * time.Second
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	last := -1
	for {
		task, err := status.GetRankingStatus(ctx, recruiterID, jobID, taskID)
		if err != nil {
			return nil, err
		}
		if task.Progress != last {
			fmt.Fprintf(w, "%s %3d%% (%d/%d scored, %d failed)\n", task.Status, task.Progress, task.Processed, task.Total, task.Failed)
			last = task.Progress
		}
		if task.Status.Terminal() {
			return task, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func reapAction(ctx context.Context, cmd *cli.Command) error {
	app, err := openApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	n, err := app.Ranking.ReapStale(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("failed %d abandoned runs\n", n)
	return nil
}

func resumeStatusAction(ctx context.Context, cmd *cli.Command) error {
	app, err := openApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	st, err := app.Status.GetResumeStatus(ctx, cmd.String("user"), cmd.String("resume"))
	if err != nil {
		return err
	}
	return printJSON(os.Stdout, st)
}

func tokenAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	role := cmd.String("role")
	if role != auth.RoleRecruiter && role != auth.RoleCandidate {
		return errors.New("role must be recruiter or candidate")
	}
	am := auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.CookieName, cfg.Auth.TokenTTL, true)
	tok, err := am.Mint(cmd.String("subject"), role)
	if err != nil {
		return err
	}
	fmt.Println(tok)
	return nil
}

func renderResults(w io.Writer, res *model.RankingResults) error {
	title := res.JobTitle
	if title == "" {
		title = res.JobID
	}
	fmt.Fprintf(w, "%s: %d of %d applicants ranked", title, len(res.Entries), res.Total)
	if !res.RankedAt.IsZero() {
		fmt.Fprintf(w, " at %s", res.RankedAt.UTC().Format("2006-01-02 15:04"))
	}
	fmt.Fprintln(w)

	table := tablewriter.NewWriter(w)
	table.Header("#", "Candidate", "Candidate ID", "Score", "Summary")
	for i, e := range res.Entries {
		summary := ""
		if e.Analysis != nil {
			if r := []rune(e.Analysis.Summary); len(r) > 60 {
				summary = string(r[:57]) + "..."
			} else {
				summary = e.Analysis.Summary
			}
		}
		if err := table.Append(strconv.Itoa(i+1), e.CandidateName, e.CandidateID,
			strconv.FormatFloat(e.Score, 'f', 1, 64), summary); err != nil {
			return err
		}
	}
	return table.Render()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
