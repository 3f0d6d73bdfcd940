package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// cmdStats shows attempt statistics for an exercise
func cmdStats(args []string) error {
	if len(args) < 1 {
		fmt.Println(`Stats commands:

  academy stats <exercise-id>           Show attempt statistics
  academy stats attempts <exercise-id>  List recent attempts`)
		return nil
	}

	if !isRunning() {
		return fmt.Errorf("daemon not running (run 'academy start' first)")
	}

	if args[0] == "attempts" {
		if len(args) < 2 {
			return fmt.Errorf("exercise ID required")
		}
		return cmdStatsAttempts(args[1])
	}
	return cmdStatsOverview(args[0])
}

func cmdStatsOverview(exerciseID string) error {
	resp, err := http.Get(daemonAddr + "/v1/exercises/" + exerciseID + "/stats")
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeDaemonError(resp)
	}

	var stats struct {
		ExerciseID  int64 `json:"ExerciseID"`
		Runs        int   `json:"Runs"`
		Submissions int   `json:"Submissions"`
		Succeeded   int   `json:"Succeeded"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}

	fmt.Printf("Exercise %d\n", stats.ExerciseID)
	fmt.Println("==========")
	fmt.Printf("Runs:        %d\n", stats.Runs)
	fmt.Printf("Submissions: %d\n", stats.Submissions)
	fmt.Printf("Succeeded:   %d\n", stats.Succeeded)
	if stats.Submissions > 0 {
		rate := float64(stats.Succeeded) / float64(stats.Submissions)
		fmt.Printf("Success:     %.0f%%\n", rate*100)
	}

	return nil
}

func cmdStatsAttempts(exerciseID string) error {
	resp, err := http.Get(daemonAddr + "/v1/exercises/" + exerciseID + "/attempts")
	if err != nil {
		return fmt.Errorf("get attempts: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeDaemonError(resp)
	}

	var result struct {
		Attempts []struct {
			Kind      string    `json:"Kind"`
			Success   bool      `json:"Success"`
			Message   string    `json:"Message"`
			ElapsedMS int64     `json:"ElapsedMS"`
			CreatedAt time.Time `json:"CreatedAt"`
		} `json:"attempts"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}

	if len(result.Attempts) == 0 {
		fmt.Println("No attempts recorded yet.")
		return nil
	}

	fmt.Println("Recent Attempts")
	fmt.Println("===============")
	for _, a := range result.Attempts {
		mark := "✗"
		if a.Success {
			mark = "✓"
		}
		fmt.Printf("%s  %-10s  %s  %dms", mark, a.Kind, a.CreatedAt.Local().Format("2006-01-02 15:04"), a.ElapsedMS)
		if a.Message != "" {
			fmt.Printf("  %s", a.Message)
		}
		fmt.Println()
	}

	return nil
}
