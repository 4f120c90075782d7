// Command seed loads a demo job with applicants and parsed resumes so a
// ranking run can be tried end to end against local Postgres and Redis.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"hirehub-ranking/internal/config"
	pg "hirehub-ranking/internal/infra/db/postgres"
	red "hirehub-ranking/internal/infra/redis"
)

const demoJobID = "demo-job-backend"

type demoCandidate struct {
	id, name, resume string
}

var demoCandidates = []demoCandidate{
	{"demo-cand-1", "Ada Okafor", "# Ada Okafor\nSenior backend engineer, 7 years of Go and PostgreSQL.\n- Built payment services handling 2k rps\n- Kubernetes, Redis, RabbitMQ\nBSc Computer Science"},
	{"demo-cand-2", "Linus Berg", "# Linus Berg\nFull-stack developer, 3 years.\n- Node.js, React, some Go\n- Wrote internal REST APIs\nBootcamp graduate"},
	{"demo-cand-3", "Mei Tanaka", "# Mei Tanaka\nSite reliability engineer, 5 years.\n- Go tooling, Terraform, AWS\n- On-call lead for a 40-service platform\nMSc Distributed Systems"},
	{"demo-cand-4", "Omar Haddad", "# Omar Haddad\nData analyst, 4 years.\n- SQL, Python, dashboards\nBA Economics"},
}

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	reset := flag.Bool("reset", false, "remove earlier demo rows and cached status first")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	if *reset {
		rc, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		cache := red.NewStatusCache(rc, cfg.Redis.StatusTTL, cfg.Redis.ResultsTTL)
		if err := cache.DeleteRankingStatus(ctx, demoJobID); err != nil {
			log.Printf("clear cached status: %v", err)
		}
		_ = rc.Close()
		for _, q := range []string{
			`DELETE FROM applicants WHERE job_id = $1`,
			`DELETE FROM jobs WHERE id = $1`,
		} {
			if _, err := pool.Exec(ctx, q, demoJobID); err != nil {
				log.Fatalf("reset: %v", err)
			}
		}
		if _, err := pool.Exec(ctx, `DELETE FROM resumes WHERE id LIKE 'demo-resume-%'`); err != nil {
			log.Fatalf("reset: %v", err)
		}
		fmt.Println("previous demo data removed")
	}

	var exists bool
	if err := pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM jobs WHERE id = $1)`, demoJobID).Scan(&exists); err != nil {
		log.Fatalf("check demo job: %v", err)
	}
	if exists {
		fmt.Printf("demo job %s already present. No changes.\n", demoJobID)
		return
	}

	_, err = pool.Exec(ctx, `
		INSERT INTO jobs (id, recruiter_id, title, description, requirements, skills)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		demoJobID, "demo-recruiter", "Backend Engineer (Go)",
		"Own the services behind our hiring marketplace.",
		[]string{"4+ years building backend services", "Production PostgreSQL experience"},
		[]string{"Go", "PostgreSQL", "Redis", "Kubernetes"},
	)
	if err != nil {
		log.Fatalf("insert job: %v", err)
	}

	applied := time.Now().Add(-72 * time.Hour)
	for i, c := range demoCandidates {
		resumeID := fmt.Sprintf("demo-resume-%d", i+1)
		if _, err := pool.Exec(ctx, `
			INSERT INTO resumes (id, candidate_id, file_name, storage_key, parsed_text, processing_status)
			VALUES ($1, $2, $3, $4, $5, 'completed')`,
			resumeID, c.id, c.id+".pdf", "uploads/"+c.id+".pdf", c.resume); err != nil {
			log.Fatalf("insert resume %s: %v", resumeID, err)
		}
		if _, err := pool.Exec(ctx, `
			INSERT INTO applicants (id, job_id, candidate_id, candidate_name, resume_id, applied_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			fmt.Sprintf("demo-app-%d", i+1), demoJobID, c.id, c.name, resumeID,
			applied.Add(time.Duration(i)*time.Hour)); err != nil {
			log.Fatalf("insert applicant for %s: %v", c.id, err)
		}
		fmt.Printf("seeded: %s (resume=%s)\n", c.name, resumeID)
	}

	fmt.Printf("Seeding complete. Try: rankctl rank --job %s --recruiter demo-recruiter\n", demoJobID)
}
